// internal/session/server.go
package session

import (
	"context"
	"sync"

	"github.com/arenalab/arena/internal/database"
	"github.com/arenalab/arena/internal/journal"
	"github.com/arenalab/arena/internal/lobby"
	"github.com/arenalab/arena/internal/matchmaking"
	"github.com/arenalab/arena/internal/persist"
	"github.com/arenalab/arena/internal/state"
	"github.com/sirupsen/logrus"
)

// Server owns the connection registry and the routing groups, and routes
// every inbound protocol event into the state store, matchmaking queue, and
// lobby registry. One Server instance is authoritative for the whole process.
type Server struct {
	mu    sync.Mutex
	conns map[string]*Conn
	rooms map[string]map[string]*Conn

	State   *state.Store
	Queue   *matchmaking.Queue
	Matches *matchmaking.MatchTable
	Lobbies *lobby.Registry

	DB      database.Store
	Worker  *persist.Worker
	Journal *journal.Journal
	Logger  *logrus.Logger
}

// NewServer wires the router to its collaborators. Journal may be nil when
// event journaling is not configured.
func NewServer(st *state.Store, db database.Store, worker *persist.Worker, jrnl *journal.Journal, logger *logrus.Logger) *Server {
	return &Server{
		conns:   make(map[string]*Conn),
		rooms:   make(map[string]map[string]*Conn),
		State:   st,
		Queue:   matchmaking.NewQueue(),
		Matches: matchmaking.NewMatchTable(),
		Lobbies: lobby.NewRegistry(),
		DB:      db,
		Worker:  worker,
		Journal: jrnl,
		Logger:  logger,
	}
}

// Register binds a transport connection to the server. The connection is in
// the "connected, no player" state until its first player:join.
func (s *Server) Register(c *Conn) {
	s.mu.Lock()
	s.conns[c.ID] = c
	s.mu.Unlock()
	s.Logger.WithField("conn", c.ID).Info("connection registered")
}

// Connected reports whether the identity belongs to a live connection.
func (s *Server) Connected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conns[id]
	return ok
}

// unregister drops the connection from the registry and every routing group.
func (s *Server) unregister(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	for room, members := range s.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
	s.mu.Unlock()
}

// JoinRoom adds the connection to a routing group. Unknown identities are
// ignored; the connection may already be gone by the time a match lands.
func (s *Server) JoinRoom(room, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[id]
	if !ok {
		return
	}
	members, ok := s.rooms[room]
	if !ok {
		members = make(map[string]*Conn)
		s.rooms[room] = members
	}
	members[id] = c
}

// LeaveRoom removes the connection from a routing group, deleting the group
// when it empties.
func (s *Server) LeaveRoom(room, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(s.rooms, room)
	}
}

// EmitTo sends one event to one connection.
func (s *Server) EmitTo(id string, ev OutEvent) {
	s.mu.Lock()
	c, ok := s.conns[id]
	s.mu.Unlock()
	if ok {
		c.send(ev)
	}
}

// Broadcast sends the event to every connection except the one named by
// except (pass "" to reach everyone).
func (s *Server) Broadcast(except string, ev OutEvent) {
	s.mu.Lock()
	targets := make([]*Conn, 0, len(s.conns))
	for id, c := range s.conns {
		if id != except {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()
	for _, c := range targets {
		c.send(ev)
	}
}

// BroadcastRoom sends the event to every current member of a routing group.
func (s *Server) BroadcastRoom(room string, ev OutEvent) {
	s.mu.Lock()
	members := s.rooms[room]
	targets := make([]*Conn, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	s.mu.Unlock()
	for _, c := range targets {
		c.send(ev)
	}
}

// journalEvent queues a fire-and-forget journal publish through the persist
// worker so protocol handlers never wait on Redis.
func (s *Server) journalEvent(event, connID, gameID string, payload interface{}) {
	if s.Journal == nil {
		return
	}
	rec := journal.Record{
		Event:        event,
		ConnectionID: connID,
		GameID:       gameID,
		Payload:      payload,
	}
	s.Worker.Submit(persist.Task{
		Op: "journal_" + event,
		ID: connID,
		Fn: func(ctx context.Context) error {
			return s.Journal.Publish(ctx, rec)
		},
	})
}
