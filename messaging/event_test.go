package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/cup-simulator/brackets"
)

type recordingBroadcaster struct {
	room     string
	messages []interface{}
}

func (r *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	r.room = roomID
	r.messages = append(r.messages, message)
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestHubPublisherWrapsEvent(t *testing.T) {
	b := &recordingBroadcaster{}
	p := NewHubPublisher(b)

	if err := p.Publish(context.Background(), NewEvent(EventMatchCompleted, "run-1", map[string]int{"match_id": 4})); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if b.room != brackets.TournamentRoom || len(b.messages) != 1 {
		t.Fatalf("room = %q, messages = %d", b.room, len(b.messages))
	}
	msg, ok := b.messages[0].(brackets.WebSocketMessage)
	if !ok {
		t.Fatalf("message type %T", b.messages[0])
	}
	if msg.Type != "MATCH_COMPLETED" {
		t.Fatalf("Type = %q, want MATCH_COMPLETED", msg.Type)
	}
}

func TestFanOutDeliversToAllAndJoinsErrors(t *testing.T) {
	b := &recordingBroadcaster{}
	boom := errors.New("broker down")
	fan := FanOut{failingPublisher{boom}, nil, NewHubPublisher(b), Nop()}

	err := fan.Publish(context.Background(), NewEvent(EventTournamentReset, "", nil))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want broker error", err)
	}
	if len(b.messages) != 1 {
		t.Fatalf("hub got %d messages after a failing sibling, want 1", len(b.messages))
	}
	if err := (FanOut{Nop()}).Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("nop fan-out err = %v", err)
	}
}
