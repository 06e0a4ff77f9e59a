package game

// Session lifecycle states. A session is created directly in progress;
// LOBBY describes the absence of an active session.
const (
	StatusLobby      = "LOBBY"
	StatusInProgress = "IN_PROGRESS"
	StatusFinished   = "FINISHED"
)

// Answer actions accepted by the submit procedure.
const (
	ActionApplyPenalty  = "APPLY_PENALTY"
	ActionSubmitCorrect = "SUBMIT_CORRECT"
)
