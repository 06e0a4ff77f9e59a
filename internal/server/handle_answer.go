package server

import (
	"errors"
	"net/http"

	"github.com/cluehunt/cluehunt/internal/game"
)

// AnswerRequest is the body for POST /api/game/answer. The player
// identity comes from the bearer token, never from the body; sessionId
// scopes the call to the game the client believes is current.
type AnswerRequest struct {
	SessionID     string `json:"sessionId"`
	Action        string `json:"action"`
	TimeRemaining int    `json:"timeRemaining,omitempty"`
	PenaltyCount  int    `json:"penaltyCount,omitempty"`
}

func handleAnswer(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}
		if req.Action != game.ActionApplyPenalty && req.Action != game.ActionSubmitCorrect {
			writeError(w, http.StatusBadRequest, "unknown action")
			return
		}
		if req.PenaltyCount < 0 || req.TimeRemaining < 0 {
			writeError(w, http.StatusBadRequest, "counts must not be negative")
			return
		}

		err = store.SubmitPlayerAnswer(r.Context(), p.ID, req.SessionID, req.Action,
			req.TimeRemaining, req.PenaltyCount)
		switch {
		case errors.Is(err, ErrStaleSession):
			// Scoring attempt against a stale game: no score moves; the
			// client must resynchronize from authoritative state.
			writeError(w, http.StatusConflict, "session is not current")
			return
		case errors.Is(err, ErrQuestionExpired):
			writeError(w, http.StatusConflict, "question time is over")
			return
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusConflict, "player is not part of this game")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(CollectionPlayers, "scored")
		w.WriteHeader(http.StatusNoContent)
	}
}
