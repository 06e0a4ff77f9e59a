package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cluehunt/cluehunt/internal/game"
)

// QuestionRequest is the authoring body for create/update. The letter
// pool check runs here: gameplay assumes every key is spellable from
// its pool and never re-validates.
type QuestionRequest struct {
	ThemeTag   string   `json:"themeTag"`
	AnswerKey  string   `json:"answerKey"`
	LetterPool string   `json:"letterPool"`
	ImageRefs  []string `json:"imageRefs"`
}

func (req *QuestionRequest) validate() string {
	req.AnswerKey = strings.ToUpper(strings.TrimSpace(req.AnswerKey))
	req.LetterPool = strings.ToUpper(strings.TrimSpace(req.LetterPool))
	if req.AnswerKey == "" || req.LetterPool == "" {
		return "answerKey and letterPool are required"
	}
	if !game.ValidateLetterPool(req.AnswerKey, req.LetterPool) {
		return "letterPool cannot spell answerKey"
	}
	if req.ImageRefs == nil {
		req.ImageRefs = []string{}
	}
	return ""
}

func handleListQuestions(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := store.ListQuestions(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if questions == nil {
			questions = []Question{}
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

func handleCreateQuestion(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuestionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		q, err := store.CreateQuestion(r.Context(), Question{
			ThemeTag:   req.ThemeTag,
			AnswerKey:  req.AnswerKey,
			LetterPool: req.LetterPool,
			ImageRefs:  req.ImageRefs,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

func handleUpdateQuestion(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuestionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		q, err := store.UpdateQuestion(r.Context(), Question{
			ID:         chi.URLParam(r, "id"),
			ThemeTag:   req.ThemeTag,
			AnswerKey:  req.AnswerKey,
			LetterPool: req.LetterPool,
			ImageRefs:  req.ImageRefs,
		})
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func handleDeleteQuestion(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
