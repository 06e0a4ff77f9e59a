package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/cluehunt/cluehunt/internal/game"
)

// SessionView is the public slice of the session row: enough for every
// screen to render progress and the countdown, nothing more.
type SessionView struct {
	ID                   string    `json:"id"`
	Status               string    `json:"status"`
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	TotalQuestions       int       `json:"totalQuestions"`
	StartTime            time.Time `json:"startTime"`
	Deadline             time.Time `json:"deadline"`
}

// StateResponse is the reconciliation payload: clients re-fetch it on
// every change notification and rebuild their view from it.
type StateResponse struct {
	Status     string       `json:"status"`
	Session    *SessionView `json:"session,omitempty"`
	Players    []Player     `json:"players"`
	MaxPlayers int          `json:"maxPlayers"`
	ReadyCount int          `json:"readyCount"`
}

// QuestionResponse is the active question for an authenticated player.
// The answer key ships to the client because penalty detection runs on
// the local buffer; scoring authority still lives server-side.
type QuestionResponse struct {
	Question Question    `json:"question"`
	Session  SessionView `json:"session"`
}

func sessionView(sess Session, questionTime time.Duration) SessionView {
	return SessionView{
		ID:                   sess.ID,
		Status:               sess.Status,
		CurrentQuestionIndex: sess.CurrentQuestionIndex,
		TotalQuestions:       sess.TotalQuestions,
		StartTime:            sess.StartTime,
		Deadline:             sess.StartTime.Add(questionTime),
	}
}

func handleState(store Store, questionTime time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if players == nil {
			players = []Player{}
		}

		readyCount := 0
		for _, p := range players {
			if p.IsReady {
				readyCount++
			}
		}

		resp := StateResponse{
			Status:     game.StatusLobby,
			Players:    players,
			MaxPlayers: game.MaxPlayers,
			ReadyCount: readyCount,
		}

		sess, err := store.CurrentSession(r.Context())
		switch {
		case errors.Is(err, ErrNotFound):
			// No session yet: pre-lobby.
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		default:
			view := sessionView(sess, questionTime)
			resp.Status = sess.Status
			resp.Session = &view
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleCurrentQuestion(store Store, questionTime time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := playerFromRequest(r, store); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		sess, err := store.CurrentSession(r.Context())
		if errors.Is(err, ErrNotFound) || (err == nil && sess.Status != game.StatusInProgress) {
			writeError(w, http.StatusConflict, "no question in play")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		questionID := sess.QuestionOrderIDs[sess.CurrentQuestionIndex]
		q, err := store.GetQuestion(r.Context(), questionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, QuestionResponse{
			Question: q,
			Session:  sessionView(sess, questionTime),
		})
	}
}
