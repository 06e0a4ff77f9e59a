package migrations_test

import (
	"context"
	"testing"

	"github.com/cluehunt/cluehunt/internal/database"
	"github.com/cluehunt/cluehunt/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := []string{"players", "questions", "game_sessions", "answer_locks", "admins", "admin_sessions"}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}

	// The partial unique index is the launch-race guard; without it two
	// near-simultaneous launches could both create a session.
	var idx string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='game_sessions_one_active'",
	).Scan(&idx)
	if err != nil {
		t.Errorf("index game_sessions_one_active not found: %v", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}
