// Package ui is the terminal frontend for players and spectators. It is
// a thin event loop over the API client: every change notification
// triggers a re-fetch of authoritative state, and all scoring decisions
// happen server-side.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cluehunt/cluehunt/internal/client"
	"github.com/cluehunt/cluehunt/internal/game"
	"github.com/cluehunt/cluehunt/internal/server"
)

type phase int

const (
	phaseRoles phase = iota
	phaseLobby
	phasePlaying
	phaseFinished
	phaseSpectate
)

// --- Tea messages ---

type stateMsg server.StateResponse

type questionMsg server.QuestionResponse

type eventMsg struct {
	ev server.ChangeEvent
	ok bool
}

type claimedMsg server.Player

type claimFailedMsg string

type errMsg struct{ err error }

type tickMsg time.Time

type ackMsg struct{}

// Model is the single bubbletea model for all screens.
type Model struct {
	api      *client.Client
	ctx      context.Context
	spectate bool

	phase  phase
	roles  []server.RoleStatus
	cursor int
	me     server.Player

	state    server.StateResponse
	question server.QuestionResponse
	box      *game.AnswerBox

	events <-chan server.ChangeEvent

	// launchTried suppresses repeated auto-launch attempts for one
	// observed ready-state; it resets when the lobby empties out again.
	launchTried bool

	now    time.Time
	status string
}

func New(api *client.Client, spectate bool) Model {
	p := phaseRoles
	if spectate {
		p = phaseSpectate
	}
	return Model{
		api:      api,
		ctx:      context.Background(),
		spectate: spectate,
		phase:    p,
		now:      time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchRoles, m.fetchState, m.subscribe, tick())
}

// --- Commands ---

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchRoles() tea.Msg {
	roles, err := m.api.Roles(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return roles
}

func (m Model) fetchState() tea.Msg {
	state, err := m.api.State(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return stateMsg(state)
}

func (m Model) fetchQuestion() tea.Msg {
	q, err := m.api.CurrentQuestion(m.ctx)
	if err != nil {
		if client.IsConflict(err) {
			// Nothing in play yet; the next notification re-syncs us.
			return nil
		}
		return errMsg{err}
	}
	return questionMsg(q)
}

func (m Model) subscribe() tea.Msg {
	events, err := m.api.Events(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return waitEventMsg{events}
}

type waitEventMsg struct{ events <-chan server.ChangeEvent }

func waitEvent(events <-chan server.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{ev, ok}
	}
}

func (m Model) claimRole(name string) tea.Cmd {
	return func() tea.Msg {
		player, err := m.api.ClaimRole(m.ctx, name)
		if client.IsConflict(err) {
			// Someone else won the race; re-present the fresh list.
			return claimFailedMsg("role just taken, pick another")
		}
		if err != nil {
			return errMsg{err}
		}
		return claimedMsg(player)
	}
}

func (m Model) release() tea.Cmd {
	return func() tea.Msg {
		m.api.ReleaseRole(m.ctx)
		return tea.Quit()
	}
}

func (m Model) applyPenalty(sessionID string) tea.Cmd {
	return func() tea.Msg {
		if err := m.api.ApplyPenalty(m.ctx, sessionID); err != nil && !client.IsConflict(err) {
			return errMsg{err}
		}
		return ackMsg{}
	}
}

func (m Model) submitCorrect(sessionID string, remaining, penalties int) tea.Cmd {
	return func() tea.Msg {
		if err := m.api.SubmitCorrect(m.ctx, sessionID, remaining, penalties); err != nil && !client.IsConflict(err) {
			return errMsg{err}
		}
		return ackMsg{}
	}
}

// attemptLaunch races the other ready clients. A rejection is the
// expected outcome for everyone but the authority.
func (m Model) attemptLaunch() tea.Cmd {
	return func() tea.Msg {
		err := m.api.AttemptLaunch(m.ctx)
		if err != nil && !client.IsRejected(err) && !client.IsConflict(err) {
			return errMsg{err}
		}
		return ackMsg{}
	}
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case []server.RoleStatus:
		m.roles = msg
		if m.cursor >= len(m.roles) {
			m.cursor = 0
		}
		return m, nil

	case waitEventMsg:
		m.events = msg.events
		return m, waitEvent(m.events)

	case eventMsg:
		if !msg.ok {
			// Stream dropped; reconnect and resync.
			return m, tea.Batch(m.subscribe, m.fetchState)
		}
		cmds := []tea.Cmd{waitEvent(m.events), m.fetchState}
		if msg.ev.Collection == server.CollectionSessions && !m.spectate && m.phase != phaseRoles {
			cmds = append(cmds, m.fetchQuestion)
		}
		if m.phase == phaseRoles {
			cmds = append(cmds, m.fetchRoles)
		}
		return m, tea.Batch(cmds...)

	case stateMsg:
		return m.reconcile(server.StateResponse(msg))

	case questionMsg:
		return m.applyQuestion(server.QuestionResponse(msg))

	case claimedMsg:
		m.me = server.Player(msg)
		m.phase = phaseLobby
		m.status = ""
		return m, m.fetchState

	case claimFailedMsg:
		m.status = string(msg)
		return m, m.fetchRoles

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case errMsg:
		m.status = msg.err.Error()
		return m, nil
	}

	return m, nil
}

// reconcile rebuilds the local view from an authoritative snapshot. The
// snapshot always wins over whatever the client believed.
func (m Model) reconcile(state server.StateResponse) (tea.Model, tea.Cmd) {
	m.state = state

	var cmds []tea.Cmd

	switch {
	case m.spectate:
		// View-only; nothing to drive.

	case m.phase == phaseRoles:
		// Not joined yet.

	case state.Status == game.StatusInProgress:
		if m.phase != phasePlaying {
			m.phase = phasePlaying
			cmds = append(cmds, m.fetchQuestion)
		}

	case state.Status == game.StatusFinished:
		m.phase = phaseFinished

	default:
		m.phase = phaseLobby
	}

	// The launch race: every client that observes a full, ready lobby
	// may attempt the transition. The server-side authority check makes
	// all but one attempt a harmless rejection.
	if !m.spectate && m.phase == phaseLobby {
		full := state.ReadyCount == state.MaxPlayers && state.MaxPlayers > 0
		if full && !m.launchTried {
			m.launchTried = true
			cmds = append(cmds, m.attemptLaunch())
		}
		if !full {
			m.launchTried = false
		}
	}

	return m, tea.Batch(cmds...)
}

// applyQuestion resets the edit buffer when a different question enters
// play. A notification about the same question leaves local edit state
// alone.
func (m Model) applyQuestion(q server.QuestionResponse) (tea.Model, tea.Cmd) {
	sameQuestion := m.question.Question.ID == q.Question.ID &&
		m.question.Session.ID == q.Session.ID
	m.question = q
	if !sameQuestion || m.box == nil {
		m.box = game.NewAnswerBox(q.Question.AnswerKey)
		m.status = ""
	}
	m.phase = phasePlaying
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.phase == phaseLobby || m.phase == phasePlaying {
			return m, m.release()
		}
		return m, tea.Quit
	}

	switch m.phase {
	case phaseRoles:
		return m.handleRolesKey(msg)
	case phaseLobby:
		return m.handleLobbyKey(msg)
	case phasePlaying:
		return m.handlePlayKey(msg)
	default:
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleRolesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.roles)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.roles) && !m.roles[m.cursor].Taken {
			return m, m.claimRole(m.roles[m.cursor].RoleName)
		}
	}
	return m, nil
}

func (m Model) handleLobbyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, m.release()
	case "r":
		ready := !m.me.IsReady
		m.me.IsReady = ready
		return m, func() tea.Msg {
			if err := m.api.SetReady(m.ctx, ready); err != nil {
				return errMsg{err}
			}
			return ackMsg{}
		}
	}
	return m, nil
}

func (m Model) handlePlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.box == nil || m.box.Locked() || m.remainingSeconds() <= 0 {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyLeft:
		m.box.MoveCursor(-1)
	case tea.KeyRight:
		m.box.MoveCursor(1)
	case tea.KeyBackspace:
		m.box.Delete()
	case tea.KeyEnter:
		if m.box.Submit() == game.EventLocked {
			return m, m.submitCorrect(m.question.Session.ID, m.remainingSeconds(), m.box.Penalties())
		}
		m.status = "fill in the complete answer first"
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if m.box.Insert(r) == game.EventPenalty {
				// The buffer filled up wrong: report it and let the
				// player retry on a cleared buffer.
				return m, m.applyPenalty(m.question.Session.ID)
			}
		}
	}
	return m, nil
}

func (m Model) remainingSeconds() int {
	if m.question.Session.ID == "" {
		return 0
	}
	left := int(m.question.Session.Deadline.Sub(m.now).Seconds())
	if left < 0 {
		return 0
	}
	return left
}
