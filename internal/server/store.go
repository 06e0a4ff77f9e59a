package server

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrRoleTaken: another live player already holds the role. The
	// uniqueness check lives in the store's constraint, never in a
	// read-then-write, so racing claimants cannot both win.
	ErrRoleTaken = errors.New("role already taken")

	// ErrSessionActive: a launch was attempted while an IN_PROGRESS
	// session exists. Racing launchers see this instead of a second game.
	ErrSessionActive = errors.New("a game session is already in progress")

	// ErrStaleAdvance: the session index moved on since the caller read
	// it. The call had no effect.
	ErrStaleAdvance = errors.New("session already advanced")

	// ErrStaleSession: a scoring call referenced a session that is no
	// longer current. Treated as a no-op scoring attempt by callers.
	ErrStaleSession = errors.New("session is not current")

	// ErrQuestionExpired: the authoritative deadline passed, whatever the
	// client-side timer believed.
	ErrQuestionExpired = errors.New("question time is over")

	ErrNotEnoughQuestions = errors.New("not enough questions available")
	ErrNoPlayers          = errors.New("no players registered")
)

// Player is a live registry row: one per claimed role.
type Player struct {
	ID           string `json:"id"`
	RoleName     string `json:"roleName"`
	IsReady      bool   `json:"isReady"`
	CurrentScore int    `json:"currentScore"`
	PenaltyCount int    `json:"penaltyCount"`
	// Locked reports whether the player has locked in the answer to the
	// question currently in play. Only populated by ListPlayers.
	Locked   bool   `json:"locked"`
	JoinedAt string `json:"joinedAt"`
}

// Question is game content. Gameplay only ever reads it.
type Question struct {
	ID         string   `json:"id"`
	ThemeTag   string   `json:"themeTag"`
	AnswerKey  string   `json:"answerKey"`
	LetterPool string   `json:"letterPool"`
	ImageRefs  []string `json:"imageRefs"`
	CreatedAt  string   `json:"createdAt"`
}

// Session is the authoritative game state. StartTime anchors the
// per-question deadline and is refreshed on every advance.
type Session struct {
	ID                   string    `json:"id"`
	Status               string    `json:"status"`
	QuestionOrderIDs     []string  `json:"questionOrderIds"`
	CurrentQuestionIndex int       `json:"currentQuestionIndex"`
	TotalQuestions       int       `json:"totalQuestions"`
	StartTime            time.Time `json:"startTime"`
	CreatedAt            string    `json:"createdAt"`
}

type adminSession struct {
	AdminID string
	Email   string
}

// Store is the record store contract. Every cross-client invariant is
// enforced inside these calls; handlers never compose multi-step
// read-then-write sequences on top of it.
type Store interface {
	// Role registry.
	ClaimRole(ctx context.Context, roleName string) (Player, string, error)
	ReleaseRole(ctx context.Context, playerID string) error
	SetReady(ctx context.Context, playerID string, ready bool) error
	ListPlayers(ctx context.Context) ([]Player, error)
	PlayerFromToken(ctx context.Context, token string) (Player, error)

	// Question content.
	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	RandomQuestionIDs(ctx context.Context, n int) ([]string, error)

	// Session state machine. These are the authoritative procedures; each
	// runs as one transaction.
	CurrentSession(ctx context.Context) (Session, error)
	StartNewGame(ctx context.Context, questionIDs []string, playerIDs []string) (string, error)
	AdvanceSession(ctx context.Context, sessionID string, expectedIndex int) (Session, error)
	SubmitPlayerAnswer(ctx context.Context, playerID, sessionID, action string, timeRemaining, penaltyCount int) error
	ResetGameData(ctx context.Context) error

	// Authority identity.
	AdminByEmail(ctx context.Context, email string) (string, string, error)
	CreateAdmin(ctx context.Context, email, passwordHash string) error
	HasAdmin(ctx context.Context) (bool, error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
}
