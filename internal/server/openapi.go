package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Clue Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Clue Hunt trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Authoritative session and player state. Public: drives the spectator screen and every client's reconciliation loop.")
	getState.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE change feed")
	getEvents.SetDescription("Server-Sent Events stream of change notifications for the players and game_sessions collections. Events carry no row data; re-fetch /api/state on receipt.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/roles
	getRoles, _ := r.NewOperationContext(http.MethodGet, "/api/roles")
	getRoles.SetSummary("List roles")
	getRoles.SetDescription("The fixed role catalog with claim state.")
	getRoles.AddRespStructure([]RoleStatus{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getRoles)

	// POST /api/roles/claim
	postClaim, _ := r.NewOperationContext(http.MethodPost, "/api/roles/claim")
	postClaim.SetSummary("Claim a role")
	postClaim.SetDescription("Issues an anonymous identity and claims the role. Uniqueness is enforced by the store; a taken role returns 409.")
	postClaim.AddReqStructure(ClaimRequest{})
	postClaim.AddRespStructure(ClaimResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postClaim)

	// POST /api/roles/release
	postRelease, _ := r.NewOperationContext(http.MethodPost, "/api/roles/release")
	postRelease.SetSummary("Release the held role")
	postRelease.SetDescription("Deletes the caller's player row. Idempotent. Requires Bearer token.")
	postRelease.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(postRelease)

	// POST /api/player/ready
	postReady, _ := r.NewOperationContext(http.MethodPost, "/api/player/ready")
	postReady.SetSummary("Set readiness")
	postReady.SetDescription("Toggles the caller's ready flag. Requires Bearer token.")
	postReady.AddReqStructure(ReadyRequest{})
	postReady.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postReady.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postReady)

	// GET /api/game/question
	getQuestion, _ := r.NewOperationContext(http.MethodGet, "/api/game/question")
	getQuestion.SetSummary("Get the active question")
	getQuestion.SetDescription("The question currently in play, including answer key and letter pool for local buffer validation. Requires Bearer token.")
	getQuestion.AddRespStructure(QuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getQuestion)

	// POST /api/game/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/game/answer")
	postAnswer.SetSummary("Submit a scoring action")
	postAnswer.SetDescription("APPLY_PENALTY for a completed wrong answer, SUBMIT_CORRECT to lock in the right one. Scoped to the current session; rejected past the authoritative deadline. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// POST /api/admin/game/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/admin/game/start")
	postStart.SetSummary("Launch a game")
	postStart.SetDescription("Creates the session and resets player scores atomically. Fails with 409 while a session is in progress; only one concurrent launch can ever win.")
	postStart.AddRespStructure(StartGameResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/admin/game/advance
	postAdvance, _ := r.NewOperationContext(http.MethodPost, "/api/admin/game/advance")
	postAdvance.SetSummary("Advance the session")
	postAdvance.SetDescription("Moves to the next question or finishes the game. The expectedIndex optimistic check makes stale or duplicate calls harmless.")
	postAdvance.AddReqStructure(AdvanceRequest{})
	postAdvance.AddRespStructure(Session{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdvance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAdvance)

	// POST /api/admin/game/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/admin/game/reset")
	postReset.SetSummary("Reset all game data")
	postReset.SetDescription("Deletes all players and sessions, returning to the pre-lobby state.")
	postReset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	postReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postReset)

	// GET /api/admin/questions
	listQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/admin/questions")
	listQuestions.SetSummary("List questions")
	listQuestions.SetDescription("All authored questions, including answer keys. Requires admin_session cookie.")
	listQuestions.AddRespStructure([]Question{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listQuestions)

	// POST /api/admin/questions
	createQuestion, _ := r.NewOperationContext(http.MethodPost, "/api/admin/questions")
	createQuestion.SetSummary("Create question")
	createQuestion.SetDescription("Authors a question. The letter pool must be able to spell the answer key.")
	createQuestion.AddReqStructure(QuestionRequest{})
	createQuestion.AddRespStructure(Question{}, openapi.WithHTTPStatus(http.StatusCreated))
	createQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createQuestion)

	// PUT /api/admin/questions/{id}
	updateQuestion, _ := r.NewOperationContext(http.MethodPut, "/api/admin/questions/{id}")
	updateQuestion.SetSummary("Update question")
	updateQuestion.AddReqStructure(QuestionRequest{})
	updateQuestion.AddRespStructure(Question{}, openapi.WithHTTPStatus(http.StatusOK))
	updateQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateQuestion)

	// DELETE /api/admin/questions/{id}
	deleteQuestion, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/questions/{id}")
	deleteQuestion.SetSummary("Delete question")
	deleteQuestion.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteQuestion.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteQuestion)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
