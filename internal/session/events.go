// internal/session/events.go
package session

import "github.com/arenalab/arena/internal/models"

// Inbound event types. The set is closed: anything else gets an error event
// back and mutates nothing.
const (
	EventPlayerJoin  = "player:join"
	EventPlayerMove  = "player:move"
	EventQueueJoin   = "queue:join"
	EventQueueLeave  = "queue:leave"
	EventLobbyCreate = "lobby:create"
	EventLobbyJoin   = "lobby:join"
	EventLobbyLeave  = "lobby:leave"
)

// Outbound event types.
const (
	EventGameState          = "game:state"
	EventPlayerJoined       = "player:joined"
	EventPlayerMoved        = "player:moved"
	EventPlayerDisconnected = "player:disconnected"
	EventMatchFound         = "match:found"
	EventMatchJoined        = "match:joined"
	EventError              = "error"
)

// InboundEvent is the decoded wire form of a client message. Optional fields
// default per the protocol table: username falls back to a derived name,
// position to the origin, score to zero, movement deltas to zero.
type InboundEvent struct {
	Type string `json:"type"`

	// player:join fields.
	Username string           `json:"username,omitempty"`
	Position *models.Position `json:"position,omitempty"`
	Score    *int             `json:"score,omitempty"`
	Room     string           `json:"room,omitempty"`

	// player:move deltas.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// lobby:join target.
	GameID string `json:"gameId,omitempty"`
}

// OutEvent is the wire form of a server message.
type OutEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// MovedPayload is the body of a player:moved event.
type MovedPayload struct {
	ID       string          `json:"id"`
	Position models.Position `json:"position"`
}

func errorEvent(msg string) OutEvent {
	return OutEvent{Type: EventError, Data: map[string]string{"message": msg}}
}
