package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, store Store, opts Options) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Clue Hunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Spectator surface: authoritative state plus the change feed, both
	// unauthenticated. The public screen renders from these alone.
	r.Get("/api/state", handleState(store, opts.QuestionTime))
	r.Get("/api/events", handleEvents(broker))

	// Player surface: identity issued on claim, bearer token after.
	r.Get("/api/roles", handleListRoles(store))
	r.Post("/api/roles/claim", handleClaimRole(store, broker))
	r.Post("/api/roles/release", handleReleaseRole(store, broker))
	r.Post("/api/player/ready", handleReady(store, broker))
	r.Get("/api/game/question", handleCurrentQuestion(store, opts.QuestionTime))
	r.Post("/api/game/answer", handleAnswer(store, broker))

	// Authority surface. Session transitions and content authoring only
	// commit for the authenticated admin; everyone else's racing attempts
	// die in the middleware.
	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.Get("/api/admin/me", handleAdminMe(store))

	r.Route("/api/admin/game", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))
		r.Post("/start", handleStartGame(logger, store, broker, opts.TotalQuestions))
		r.Post("/advance", handleAdvance(store, broker))
		r.Post("/reset", handleReset(logger, store, broker))
	})

	r.Route("/api/admin/questions", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))
		r.Get("/", handleListQuestions(store))
		r.Post("/", handleCreateQuestion(store))
		r.Put("/{id}", handleUpdateQuestion(store))
		r.Delete("/{id}", handleDeleteQuestion(store))
	})
}
