// Package messaging fans tournament events out to websocket viewers and an AMQP exchange.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	EventTeamRegistered      = "team.registered"
	EventTournamentCreated   = "tournament.created"
	EventMatchCompleted      = "match.completed"
	EventRoundCreated        = "round.created"
	EventTournamentCompleted = "tournament.completed"
	EventTournamentReset     = "tournament.reset"
)

type Event struct {
	Type       string      `json:"type"`
	RunID      string      `json:"run_id,omitempty"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewEvent(eventType, runID string, payload interface{}) Event {
	return Event{Type: eventType, RunID: runID, Payload: payload, OccurredAt: time.Now().UTC()}
}

// WireType converts "match.completed" into the websocket message type "MATCH_COMPLETED".
func (e Event) WireType() string {
	return strings.ToUpper(strings.ReplaceAll(e.Type, ".", "_"))
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

// FanOut delivers each event to every publisher and joins their errors.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
