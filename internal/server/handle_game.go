package server

import (
	"errors"
	"log/slog"
	"net/http"
)

// StartGameResponse is returned by the launch procedure.
type StartGameResponse struct {
	SessionID string `json:"sessionId"`
}

// AdvanceRequest carries the caller's view of the session for the
// optimistic concurrency check: the advance only applies if the stored
// index still matches.
type AdvanceRequest struct {
	SessionID     string `json:"sessionId"`
	ExpectedIndex int    `json:"expectedIndex"`
}

// handleStartGame is the launch procedure behind the race: several
// clients may observe "registry full, all ready" and attempt it, but
// only the authority reaches this handler (admin middleware) and only
// one launch can ever commit (store-side active-session guard).
func handleStartGame(logger *slog.Logger, store Store, broker *Broker, totalQuestions int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		questionIDs, err := store.RandomQuestionIDs(ctx, totalQuestions)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(questionIDs) < totalQuestions {
			writeError(w, http.StatusConflict, "not enough questions available")
			return
		}

		players, err := store.ListPlayers(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		playerIDs := make([]string, 0, len(players))
		for _, p := range players {
			playerIDs = append(playerIDs, p.ID)
		}

		sessionID, err := store.StartNewGame(ctx, questionIDs, playerIDs)
		switch {
		case errors.Is(err, ErrSessionActive):
			writeError(w, http.StatusConflict, "a game session is already in progress")
			return
		case errors.Is(err, ErrNotEnoughQuestions):
			writeError(w, http.StatusConflict, "not enough questions available")
			return
		case errors.Is(err, ErrNoPlayers):
			writeError(w, http.StatusConflict, "no players registered")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("game launched",
			"session_id", sessionID,
			"players", len(playerIDs),
			"admin", adminFrom(r).Email,
		)

		broker.Publish(CollectionSessions, "launched")
		broker.Publish(CollectionPlayers, "scores_reset")
		writeJSON(w, http.StatusOK, StartGameResponse{SessionID: sessionID})
	}
}

func handleAdvance(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdvanceRequest
		if err := readJSON(r, &req); err != nil || req.SessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId and expectedIndex are required")
			return
		}

		sess, err := store.AdvanceSession(r.Context(), req.SessionID, req.ExpectedIndex)
		switch {
		case errors.Is(err, ErrStaleAdvance):
			// A racing caller advanced first; this call had no effect.
			writeError(w, http.StatusConflict, "session already advanced")
			return
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(CollectionSessions, "advanced")
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleReset(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ResetGameData(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("game data reset", "admin", adminFrom(r).Email)

		broker.Publish(CollectionSessions, "reset")
		broker.Publish(CollectionPlayers, "reset")
		w.WriteHeader(http.StatusNoContent)
	}
}
