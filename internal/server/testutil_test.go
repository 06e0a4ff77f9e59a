package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cluehunt/cluehunt/internal/database"
	"github.com/cluehunt/cluehunt/internal/migrations"
)

const testQuestionTime = 30 * time.Second

func setupStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Every pooled connection to :memory: is its own database; keep the
	// pool at one so concurrent tests share state.
	db.SetMaxOpenConns(1)

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewSQLiteStore(db, testQuestionTime, 0), db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(t *testing.T) (*chi.Mux, *SQLiteStore, *sql.DB) {
	t.Helper()
	store, db := setupStore(t)

	logger := testLogger()
	ctx := context.Background()
	if err := SeedAdmin(ctx, logger, store, "admin@test.local", "secret"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := SeedDemoQuestions(ctx, logger, store); err != nil {
		t.Fatalf("seed questions: %v", err)
	}

	r := chi.NewRouter()
	addRoutes(r, logger, db, store, Options{TotalQuestions: 5, QuestionTime: testQuestionTime})
	return r, store, db
}

// doJSON fires a request at the router and decodes the JSON reply into
// out when out is non-nil.
func doJSON(t *testing.T, r http.Handler, method, path string, body any, out any, opts ...func(*http.Request)) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 && rec.Body.Len() > 0 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec.Code
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(raw)
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withAdminCookie(sessionID string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: adminCookieName, Value: sessionID})
	}
}

// adminSessionID logs the seeded admin in through the store and hands
// back a session cookie value.
func adminSessionID(t *testing.T, store *SQLiteStore) string {
	t.Helper()
	ctx := context.Background()

	id, _, err := store.AdminByEmail(ctx, "admin@test.local")
	if err != nil {
		t.Fatalf("admin lookup: %v", err)
	}
	sessionID, err := store.CreateAdminSession(ctx, id)
	if err != nil {
		t.Fatalf("create admin session: %v", err)
	}
	return sessionID
}

// claimRole joins a player through the HTTP surface and returns the
// player with their bearer token.
func claimRole(t *testing.T, r http.Handler, roleName string) (Player, string) {
	t.Helper()

	var resp ClaimResponse
	code := doJSON(t, r, http.MethodPost, "/api/roles/claim", ClaimRequest{RoleName: roleName}, &resp)
	if code != http.StatusOK {
		t.Fatalf("claim %s: status %d", roleName, code)
	}
	return resp.Player, resp.Token
}

// startedGame walks the happy path up to IN_PROGRESS and returns the
// session id plus one joined player's token.
func startedGame(t *testing.T, r http.Handler, store *SQLiteStore) (sessionID, playerToken string) {
	t.Helper()

	_, token := claimRole(t, r, "DETECTIVE")
	admin := adminSessionID(t, store)

	var resp StartGameResponse
	code := doJSON(t, r, http.MethodPost, "/api/admin/game/start", nil, &resp, withAdminCookie(admin))
	if code != http.StatusOK {
		t.Fatalf("start game: status %d", code)
	}
	return resp.SessionID, token
}
