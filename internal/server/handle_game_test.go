package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cluehunt/cluehunt/internal/game"
)

func TestStartGameRequiresAuthority(t *testing.T) {
	r, _, _ := testRouter(t)
	claimRole(t, r, "DETECTIVE")

	// A racing launch attempt without the admin cookie is rejected
	// before it can touch the session table.
	code := doJSON(t, r, http.MethodPost, "/api/admin/game/start", nil, nil)
	if code != http.StatusForbidden {
		t.Fatalf("anonymous start: status %d, want 403", code)
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Status != game.StatusLobby {
		t.Fatalf("rejected launch still transitioned state to %q", state.Status)
	}
}

func TestStartGameLaunchesSession(t *testing.T) {
	r, store, _ := testRouter(t)

	sessionID, _ := startedGame(t, r, store)
	if sessionID == "" {
		t.Fatal("start returned empty session id")
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Status != game.StatusInProgress {
		t.Fatalf("status = %q, want IN_PROGRESS", state.Status)
	}
	if state.Session == nil {
		t.Fatal("no session in state response")
	}
	if state.Session.CurrentQuestionIndex != 0 {
		t.Fatalf("currentQuestionIndex = %d, want 0", state.Session.CurrentQuestionIndex)
	}
	if state.Session.TotalQuestions != 5 {
		t.Fatalf("totalQuestions = %d, want 5", state.Session.TotalQuestions)
	}
	for _, p := range state.Players {
		if p.CurrentScore != game.BaseScore || p.PenaltyCount != 0 {
			t.Fatalf("player %s not reset: score=%d penalties=%d", p.RoleName, p.CurrentScore, p.PenaltyCount)
		}
	}

	// Starting again while a session runs is refused.
	admin := adminSessionID(t, store)
	code := doJSON(t, r, http.MethodPost, "/api/admin/game/start", nil, nil, withAdminCookie(admin))
	if code != http.StatusConflict {
		t.Fatalf("second start: status %d, want 409", code)
	}
}

func TestAdvanceSession(t *testing.T) {
	r, store, _ := testRouter(t)

	sessionID, _ := startedGame(t, r, store)
	admin := adminSessionID(t, store)

	var sess Session
	code := doJSON(t, r, http.MethodPost, "/api/admin/game/advance",
		AdvanceRequest{SessionID: sessionID, ExpectedIndex: 0}, &sess, withAdminCookie(admin))
	if code != http.StatusOK {
		t.Fatalf("advance: status %d", code)
	}
	if sess.CurrentQuestionIndex != 1 {
		t.Fatalf("index after advance = %d, want 1", sess.CurrentQuestionIndex)
	}

	// A duplicate of the same transition carries a stale expected index
	// and must change nothing.
	code = doJSON(t, r, http.MethodPost, "/api/admin/game/advance",
		AdvanceRequest{SessionID: sessionID, ExpectedIndex: 0}, nil, withAdminCookie(admin))
	if code != http.StatusConflict {
		t.Fatalf("stale advance: status %d, want 409", code)
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Session.CurrentQuestionIndex != 1 {
		t.Fatalf("stale advance moved index to %d", state.Session.CurrentQuestionIndex)
	}
}

func TestAdvancePastLastQuestionFinishes(t *testing.T) {
	r, store, _ := testRouter(t)

	sessionID, _ := startedGame(t, r, store)
	admin := adminSessionID(t, store)

	for i := 0; i < 5; i++ {
		code := doJSON(t, r, http.MethodPost, "/api/admin/game/advance",
			AdvanceRequest{SessionID: sessionID, ExpectedIndex: i}, nil, withAdminCookie(admin))
		if code != http.StatusOK {
			t.Fatalf("advance from %d: status %d", i, code)
		}
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Status != game.StatusFinished {
		t.Fatalf("status after final advance = %q, want FINISHED", state.Status)
	}
	if state.Session.CurrentQuestionIndex != 5 {
		t.Fatalf("terminal index = %d, want 5", state.Session.CurrentQuestionIndex)
	}

	// No further transitions out of FINISHED.
	code := doJSON(t, r, http.MethodPost, "/api/admin/game/advance",
		AdvanceRequest{SessionID: sessionID, ExpectedIndex: 5}, nil, withAdminCookie(admin))
	if code != http.StatusConflict {
		t.Fatalf("advance after finish: status %d, want 409", code)
	}
}

func TestResetClearsGameData(t *testing.T) {
	r, store, _ := testRouter(t)

	startedGame(t, r, store)
	admin := adminSessionID(t, store)

	code := doJSON(t, r, http.MethodPost, "/api/admin/game/reset", nil, nil, withAdminCookie(admin))
	if code != http.StatusNoContent {
		t.Fatalf("reset: status %d, want 204", code)
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Status != game.StatusLobby {
		t.Fatalf("status after reset = %q, want LOBBY", state.Status)
	}
	if len(state.Players) != 0 {
		t.Fatalf("players after reset = %d, want 0", len(state.Players))
	}

	// The roster is open again.
	claimRole(t, r, "DETECTIVE")
}

func TestStartGameWithoutQuestionsConflicts(t *testing.T) {
	store, db := setupStore(t)
	logger := testLogger()
	if err := SeedAdmin(context.Background(), logger, store, "admin@test.local", "secret"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	// Question bank left empty and the per-game count misconfigured to
	// zero: the launch must still refuse, not create an unplayable
	// session.
	r := chi.NewRouter()
	addRoutes(r, logger, db, store, Options{TotalQuestions: 0, QuestionTime: testQuestionTime})

	claimRole(t, r, "DETECTIVE")
	admin := adminSessionID(t, store)

	code := doJSON(t, r, http.MethodPost, "/api/admin/game/start", nil, nil, withAdminCookie(admin))
	if code != http.StatusConflict {
		t.Fatalf("start with empty question set: status %d, want 409", code)
	}

	var state StateResponse
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.Status != game.StatusLobby {
		t.Fatalf("refused launch still created a session: status %q", state.Status)
	}
}
