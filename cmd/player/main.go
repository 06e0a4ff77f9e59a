package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cluehunt/cluehunt/internal/client"
	"github.com/cluehunt/cluehunt/internal/ui"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "game server base URL")
	spectate := flag.Bool("spectate", false, "watch the scoreboard without claiming a role")
	flag.Parse()

	api := client.New(*serverURL)
	model := ui.New(api, *spectate)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("client error: %v", err)
	}
}
