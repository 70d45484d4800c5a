package arena

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names what happened in an arena.
type EventKind string

const (
	EventJoin   EventKind = "join"
	EventStart  EventKind = "start"
	EventAttack EventKind = "attack"
	EventDeath  EventKind = "death"
	EventFinish EventKind = "finish"
)

// Event is what spectators receive. Report carries the stats report after
// the event was applied.
type Event struct {
	ID      string    `json:"id"`
	Battle  string    `json:"battle"`
	Kind    EventKind `json:"kind"`
	Turn    int       `json:"turn"`
	Actor   string    `json:"actor,omitempty"`
	Target  string    `json:"target,omitempty"`
	Damage  float64   `json:"damage,omitempty"`
	Message string    `json:"message,omitempty"`
	Report  string    `json:"report"`
	At      time.Time `json:"at"`
}

func newEvent(battleName string, kind EventKind, turn int) Event {
	return Event{
		ID:     "e_" + uuid.NewString(),
		Battle: battleName,
		Kind:   kind,
		Turn:   turn,
		At:     time.Now().UTC(),
	}
}

// Publisher receives every arena event.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
