package server

import (
	"encoding/json"
	"sync"
)

// Collections clients can watch. Notifications carry no row data; they
// only tell subscribers that something in the collection changed.
const (
	CollectionPlayers  = "players"
	CollectionSessions = "game_sessions"
)

// ChangeEvent is the payload published to change-feed subscribers.
// Subscribers must re-fetch authoritative state on receipt rather than
// patch from the event: delivery is at-least-once per open stream and
// carries no ordering guarantee across collections.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Change     string `json:"change,omitempty"`
}

// Broker is an in-process pub/sub for SSE change notifications, keyed
// by collection name.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for the
// given collection.
func (b *Broker) Subscribe(collection string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[collection] == nil {
		b.subs[collection] = make(map[chan []byte]struct{})
	}
	b.subs[collection][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the collection's subscribers.
func (b *Broker) Unsubscribe(collection string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[collection], ch)
	if len(b.subs[collection]) == 0 {
		delete(b.subs, collection)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given collection.
func (b *Broker) Publish(collection, change string) {
	data, _ := json.Marshal(ChangeEvent{Collection: collection, Change: change})
	b.mu.RLock()
	for ch := range b.subs[collection] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow; the next re-fetch catches up.
		}
	}
	b.mu.RUnlock()
}
