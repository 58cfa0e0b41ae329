// internal/session/router.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arenalab/arena/internal/lobby"
	"github.com/arenalab/arena/internal/models"
	"github.com/arenalab/arena/internal/persist"
	"github.com/sirupsen/logrus"
)

// ErrNotConnected is returned by the administrative queue operations when the
// identity does not correspond to a live connection.
var ErrNotConnected = errors.New("connection not found")

// HandleMessage decodes one raw client frame and routes it. Malformed JSON
// and unknown event types get an error event back and mutate nothing.
func (s *Server) HandleMessage(ctx context.Context, c *Conn, raw []byte) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"conn":  c.ID,
			"error": err,
		}).Warn("invalid JSON from client")
		c.send(errorEvent("invalid JSON format"))
		return
	}
	s.HandleEvent(ctx, c, ev)
}

// HandleEvent runs one inbound protocol event to completion. Events from a
// single connection arrive in order because each connection has exactly one
// read pump; cross-connection interleaving is handled by the stores' locks.
func (s *Server) HandleEvent(ctx context.Context, c *Conn, ev InboundEvent) {
	switch ev.Type {
	case EventPlayerJoin:
		s.handleJoin(ctx, c, ev)
	case EventPlayerMove:
		s.handleMove(c, ev)
	case EventQueueJoin:
		s.handleQueueJoin(c.ID)
	case EventQueueLeave:
		s.handleQueueLeave(c.ID)
	case EventLobbyCreate:
		s.handleLobbyCreate(c)
	case EventLobbyJoin:
		s.handleLobbyJoin(c, ev.GameID)
	case EventLobbyLeave:
		s.handleLobbyLeave(c)
	default:
		s.Logger.WithFields(logrus.Fields{
			"conn": c.ID,
			"type": ev.Type,
		}).Warn("unknown event type")
		c.send(errorEvent(fmt.Sprintf("unknown event type: %s", ev.Type)))
	}
}

// handleJoin creates the player record with protocol defaults, mirrors it
// durably, answers the sender with a full snapshot, and announces the join
// to everyone.
func (s *Server) handleJoin(ctx context.Context, c *Conn, ev InboundEvent) {
	p := &models.Player{
		ID:       c.ID,
		Username: ev.Username,
		Score:    0,
		Room:     ev.Room,
	}
	if p.Username == "" {
		p.Username = "player-" + shortID(c.ID)
	}
	if ev.Position != nil {
		p.Position = *ev.Position
	}
	if ev.Score != nil {
		p.Score = *ev.Score
	}

	s.State.Upsert(p)
	s.journalEvent(EventPlayerJoin, c.ID, "", p)

	c.send(OutEvent{Type: EventGameState, Data: s.State.Snapshot(ctx)})

	joined := OutEvent{Type: EventPlayerJoined, Data: p}
	c.send(joined)
	s.Broadcast(c.ID, joined)
}

// handleMove applies the delta and routes the update: room-scoped once the
// player is matched, all-but-sender before that. A move for an identity that
// already disconnected is a silent no-op, not an error.
func (s *Server) handleMove(c *Conn, ev InboundEvent) {
	p, ok := s.State.ApplyMovement(c.ID, models.Movement{X: ev.X, Y: ev.Y})
	if !ok {
		return
	}

	moved := OutEvent{Type: EventPlayerMoved, Data: MovedPayload{ID: c.ID, Position: p.Position}}
	if p.Room != "" {
		s.BroadcastRoom(p.Room, moved)
	} else {
		s.Broadcast(c.ID, moved)
	}
}

// handleQueueJoin enqueues the identity and immediately attempts a pairing.
// Matching is only ever triggered here, never by a timer, so a lone queuer
// waits indefinitely.
func (s *Server) handleQueueJoin(id string) {
	// An identity inside an active match never re-enters the queue until it
	// leaves its room context.
	if p, ok := s.State.Get(id); ok && p.Room != "" {
		s.Logger.WithField("conn", id).Debug("queue:join ignored, player already in a room")
		return
	}
	s.Queue.Enqueue(id)
	s.journalEvent(EventQueueJoin, id, "", nil)

	if m := s.Queue.TryMatch(); m != nil {
		s.finalizeMatch(m)
	}
}

// handleQueueLeave dequeues the identity. No outbound event.
func (s *Server) handleQueueLeave(id string) {
	s.Queue.Dequeue(id)
	s.journalEvent(EventQueueLeave, id, "", nil)
}

// finalizeMatch records a freshly minted match, mirrors it durably, moves
// both players into the routing group, and announces the pairing to the room.
func (s *Server) finalizeMatch(m *models.Match) {
	s.Matches.Add(m)

	match := *m
	s.Worker.Submit(persist.Task{
		Op: "create_match",
		ID: m.GameID,
		Fn: func(ctx context.Context) error {
			_, err := s.DB.CreateOrUpdateMatch(ctx, &match)
			return err
		},
	})
	s.journalEvent(EventMatchFound, "", m.GameID, m)

	// Re-read each player from the store when assigning the room; a capture
	// taken before the pairing could be stale if a disconnect interleaved.
	updated := make([]*models.Player, 0, len(m.Players))
	for _, id := range m.Players {
		s.JoinRoom(m.Room, id)
		if p, ok := s.State.SetRoom(id, m.Room); ok {
			updated = append(updated, p)
		}
	}

	s.BroadcastRoom(m.Room, OutEvent{Type: EventMatchFound, Data: m})
	s.BroadcastRoom(m.Room, OutEvent{Type: EventPlayerJoined, Data: updated})

	s.Logger.WithFields(logrus.Fields{
		"game":    m.GameID,
		"players": m.Players,
	}).Info("match created")
}

// handleLobbyCreate opens a lobby hosted by the sender and places them in
// its routing group.
func (s *Server) handleLobbyCreate(c *Conn) {
	l := s.Lobbies.Create(c.ID)
	s.JoinRoom(l.Room, c.ID)
	s.journalEvent(EventLobbyCreate, c.ID, l.GameID, l)
	c.send(OutEvent{Type: EventMatchJoined, Data: l})
	s.Logger.WithFields(logrus.Fields{
		"game": l.GameID,
		"host": c.ID,
	}).Info("lobby created")
}

// handleLobbyJoin adds the sender to an existing lobby and announces the
// updated roster to the lobby's room.
func (s *Server) handleLobbyJoin(c *Conn, gameID string) {
	l, err := s.Lobbies.Join(gameID, c.ID)
	if err != nil {
		if errors.Is(err, lobby.ErrLobbyNotFound) {
			c.send(errorEvent("lobby not found"))
		}
		return
	}
	s.JoinRoom(l.Room, c.ID)
	s.journalEvent(EventLobbyJoin, c.ID, gameID, nil)
	s.BroadcastRoom(l.Room, OutEvent{Type: EventMatchJoined, Data: l})
}

// handleLobbyLeave removes the sender from whichever lobby holds them,
// migrating the host if needed, and tells the surviving room. The sender
// leaves the routing group even when their departure deleted the lobby.
func (s *Server) handleLobbyLeave(c *Conn) {
	res := s.Lobbies.LeaveByPlayer(c.ID)
	if !res.Removed {
		return
	}
	s.journalEvent(EventLobbyLeave, c.ID, "", nil)
	s.LeaveRoom(res.Room, c.ID)
	if res.Lobby != nil {
		s.BroadcastRoom(res.Lobby.Room, OutEvent{Type: EventMatchJoined, Data: res.Lobby})
	}
}

// Disconnect is the single cleanup path for a connection, run on every
// read-loop exit. It guarantees: absence from the queue, absence from every
// lobby (with host migration), deletion from the state store and the durable
// mirror, exactly one disconnected broadcast, and removal from all routing
// groups.
func (s *Server) Disconnect(c *Conn) {
	s.Queue.Dequeue(c.ID)

	if res := s.Lobbies.LeaveByPlayer(c.ID); res.Removed && res.Lobby != nil {
		s.BroadcastRoom(res.Lobby.Room, OutEvent{Type: EventMatchJoined, Data: res.Lobby})
	}

	p, _ := s.State.Get(c.ID)
	s.State.Remove(c.ID)
	s.journalEvent(EventPlayerDisconnected, c.ID, "", nil)

	gone := OutEvent{Type: EventPlayerDisconnected, Data: c.ID}
	if p != nil && p.Room != "" {
		s.BroadcastRoom(p.Room, gone)
	} else {
		s.Broadcast(c.ID, gone)
	}

	s.unregister(c.ID)
	s.Logger.WithField("conn", c.ID).Info("connection cleaned up")
}

// JoinQueue is the administrative pass-through for queue entry. The identity
// must belong to a live connection.
func (s *Server) JoinQueue(id string) error {
	if !s.Connected(id) {
		return ErrNotConnected
	}
	s.handleQueueJoin(id)
	return nil
}

// LeaveQueue is the administrative pass-through for queue exit.
func (s *Server) LeaveQueue(id string) {
	s.handleQueueLeave(id)
}

// CreateLobby is the administrative pass-through for lobby creation. The host
// must belong to a live connection.
func (s *Server) CreateLobby(hostID string) (*models.Lobby, error) {
	s.mu.Lock()
	c, ok := s.conns[hostID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotConnected
	}
	l := s.Lobbies.Create(c.ID)
	s.JoinRoom(l.Room, c.ID)
	return l, nil
}

// EndMatch transitions a match to ended in memory and mirrors the transition
// durably. Returns matchmaking.ErrMatchNotFound for an unknown id.
func (s *Server) EndMatch(gameID string) (*models.Match, error) {
	m, err := s.Matches.End(gameID)
	if err != nil {
		return nil, err
	}
	s.Worker.Submit(persist.Task{
		Op: "end_match",
		ID: gameID,
		Fn: func(ctx context.Context) error {
			_, dbErr := s.DB.EndMatch(ctx, gameID)
			return dbErr
		},
	})
	return m, nil
}

// shortID truncates a connection identity for display names.
func shortID(id string) string {
	if len(id) > 5 {
		return id[:5]
	}
	return id
}
