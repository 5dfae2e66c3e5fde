package messaging

import (
	"context"

	"github.com/Dosada05/cup-simulator/brackets"
)

type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// HubPublisher forwards events to the websocket room every bracket viewer joins.
type HubPublisher struct {
	hub  Broadcaster
	room string
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub, room: brackets.TournamentRoom}
}

func (p *HubPublisher) Publish(_ context.Context, event Event) error {
	p.hub.BroadcastToRoom(p.room, brackets.WebSocketMessage{
		Type:    event.WireType(),
		Payload: event.Payload,
		RoomID:  p.room,
	})
	return nil
}
