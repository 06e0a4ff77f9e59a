// Package migrations holds the embedded schema for the game database.
// The whole schema ships in the binary so a fresh deployment boots from
// an empty file.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Run brings db up to the latest schema version. Safe to call on every
// start; goose skips migrations already applied.
func Run(db *sql.DB) error {
	goose.SetBaseFS(fs)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
