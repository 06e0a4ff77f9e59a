package server

import (
	"testing"
	"time"
)

func TestBrokerDeliversToSubscribers(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe(CollectionPlayers)
	defer b.Unsubscribe(CollectionPlayers, ch)

	b.Publish(CollectionPlayers, "scores_reset")

	select {
	case raw := <-ch:
		if string(raw) == "" {
			t.Fatal("empty event payload")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestBrokerIsolatesCollections(t *testing.T) {
	b := NewBroker()

	players := b.Subscribe(CollectionPlayers)
	defer b.Unsubscribe(CollectionPlayers, players)

	b.Publish(CollectionSessions, "launched")

	select {
	case <-players:
		t.Fatal("players subscriber received a sessions event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDropsOnSlowSubscriber(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe(CollectionSessions)
	defer b.Unsubscribe(CollectionSessions, ch)

	// Nobody drains; publishing past the buffer must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(CollectionSessions, "advanced")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
