package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cluehunt/cluehunt/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	takenStyle = lipgloss.NewStyle().
			Faint(true).
			Strikethrough(true)

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	slotCursorStyle = slotStyle.
			BorderForeground(lipgloss.Color("212")).
			Bold(true)

	slotLockedStyle = slotStyle.
			BorderForeground(lipgloss.Color("42"))

	readyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	poolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	docStyle = lipgloss.NewStyle().Margin(1, 2)
)

func (m Model) View() string {
	var body string
	switch m.phase {
	case phaseRoles:
		body = m.viewRoles()
	case phaseLobby:
		body = m.viewLobby()
	case phasePlaying:
		body = m.viewPlaying()
	case phaseFinished:
		body = m.viewFinished()
	case phaseSpectate:
		body = m.viewSpectate()
	}
	if m.status != "" {
		body += "\n" + warnStyle.Render(m.status)
	}
	return docStyle.Render(body)
}

func (m Model) viewRoles() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Clue Hunt — pick your station"))
	b.WriteString("\n")

	for i, role := range m.roles {
		line := fmt.Sprintf("  %s", role.DisplayName)
		switch {
		case role.Taken:
			line = takenStyle.Render(line) + subtleStyle.Render("  taken")
		case i == m.cursor:
			line = selectedStyle.Render("> " + role.DisplayName)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + subtleStyle.Render("↑/↓ move · enter claim · q quit"))
	return b.String()
}

func (m Model) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Lobby — " + m.roleDisplay(m.me.RoleName)))
	b.WriteString("\n")

	for _, p := range m.state.Players {
		mark := subtleStyle.Render("waiting")
		if p.IsReady {
			mark = readyStyle.Render("ready")
		}
		you := ""
		if p.ID == m.me.ID {
			you = " (you)"
		}
		b.WriteString(fmt.Sprintf("  %-14s %s%s\n", m.roleDisplay(p.RoleName), mark, you))
	}

	b.WriteString(fmt.Sprintf("\n%d/%d stations ready\n", m.state.ReadyCount, m.state.MaxPlayers))
	b.WriteString(subtleStyle.Render("r toggle ready · q leave"))
	return b.String()
}

func (m Model) viewPlaying() string {
	var b strings.Builder

	q := m.question
	progress := ""
	if q.Session.ID != "" {
		progress = fmt.Sprintf("question %d/%d", q.Session.CurrentQuestionIndex+1, q.Session.TotalQuestions)
	}
	b.WriteString(titleStyle.Render("Clue Hunt — " + progress))
	b.WriteString("\n")

	if q.Question.ThemeTag != "" {
		b.WriteString("Theme: " + poolStyle.Render(q.Question.ThemeTag) + "\n")
	}
	for _, ref := range q.Question.ImageRefs {
		b.WriteString(subtleStyle.Render("  clue: "+ref) + "\n")
	}

	left := m.remainingSeconds()
	timer := fmt.Sprintf("⏱ %02d:%02d", left/60, left%60)
	if left <= 5 {
		timer = warnStyle.Render(timer)
	}
	b.WriteString("\n" + timer + "\n\n")

	if m.box != nil {
		b.WriteString(m.viewSlots() + "\n\n")
		b.WriteString("Letters: " + poolStyle.Render(spaced(q.Question.LetterPool)) + "\n")
		b.WriteString(fmt.Sprintf("Penalties this question: %d\n", m.box.Penalties()))
	}

	b.WriteString("\n" + m.viewScores())

	switch {
	case m.box != nil && m.box.Locked():
		b.WriteString("\n" + readyStyle.Render("Locked in! Waiting for the next question."))
	case left <= 0:
		b.WriteString("\n" + warnStyle.Render("Time is up for this question."))
	default:
		b.WriteString("\n" + subtleStyle.Render("type letters · ←/→ move · backspace erase · enter submit"))
	}
	return b.String()
}

func (m Model) viewSlots() string {
	letters := m.box.Letters()
	cells := make([]string, len(letters))
	for i, r := range letters {
		ch := " "
		if r != 0 {
			ch = string(r)
		}
		style := slotStyle
		if m.box.Locked() {
			style = slotLockedStyle
		} else if i == m.box.Cursor() {
			style = slotCursorStyle
		}
		cells[i] = style.Render(ch)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewFinished() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Game over — final scores"))
	b.WriteString("\n")
	b.WriteString(m.viewScores())
	b.WriteString("\n" + subtleStyle.Render("q quit"))
	return b.String()
}

func (m Model) viewSpectate() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Clue Hunt — spectator"))
	b.WriteString("\n")

	switch m.state.Status {
	case game.StatusInProgress:
		if m.state.Session != nil {
			b.WriteString(fmt.Sprintf("Question %d/%d in play\n\n",
				m.state.Session.CurrentQuestionIndex+1, m.state.Session.TotalQuestions))
		}
	case game.StatusFinished:
		b.WriteString("Game finished\n\n")
	default:
		b.WriteString(fmt.Sprintf("Lobby — %d/%d stations ready\n\n",
			m.state.ReadyCount, m.state.MaxPlayers))
	}

	b.WriteString(m.viewScores())
	b.WriteString("\n" + subtleStyle.Render("q quit"))
	return b.String()
}

func (m Model) viewScores() string {
	players := make([]struct {
		role   string
		score  int
		locked bool
	}, 0, len(m.state.Players))
	for _, p := range m.state.Players {
		players = append(players, struct {
			role   string
			score  int
			locked bool
		}{m.roleDisplay(p.RoleName), p.CurrentScore, p.Locked})
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].score != players[j].score {
			return players[i].score > players[j].score
		}
		return players[i].role < players[j].role
	})

	var b strings.Builder
	for _, p := range players {
		mark := ""
		if p.locked {
			mark = readyStyle.Render("  ✓")
		}
		b.WriteString(fmt.Sprintf("  %-14s %4d%s\n", p.role, p.score, mark))
	}
	return b.String()
}

func (m Model) roleDisplay(name string) string {
	if role, ok := game.RoleByName(name); ok {
		return role.DisplayName
	}
	return name
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}
