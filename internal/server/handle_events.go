package server

import (
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams change notifications for the players and
// game_sessions collections over SSE. The stream is public: it carries
// no row data, only wake-up signals for the reconciliation loop.
func handleEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		playerCh := broker.Subscribe(CollectionPlayers)
		defer broker.Unsubscribe(CollectionPlayers, playerCh)
		sessionCh := broker.Subscribe(CollectionSessions)
		defer broker.Unsubscribe(CollectionSessions, sessionCh)

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-playerCh:
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				flusher.Flush()
			case data := <-sessionCh:
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
