// internal/state/state.go
package state

import (
	"context"
	"sync"

	"github.com/arenalab/arena/internal/database"
	"github.com/arenalab/arena/internal/models"
	"github.com/arenalab/arena/internal/persist"
	"github.com/sirupsen/logrus"
)

// Store is the authoritative in-memory registry of connected players. Memory
// is the source of truth while a session is live; the durable store is a
// write-behind mirror updated through the persist worker and consulted only
// on the snapshot hydration path.
type Store struct {
	mu      sync.RWMutex
	players map[string]*models.Player

	db     database.Store
	worker *persist.Worker
	logger *logrus.Logger
}

// NewStore builds an empty store bound to a durable mirror and a write-behind
// worker.
func NewStore(db database.Store, worker *persist.Worker, logger *logrus.Logger) *Store {
	return &Store{
		players: make(map[string]*models.Player),
		db:      db,
		worker:  worker,
		logger:  logger,
	}
}

// Upsert inserts or fully replaces the player keyed by connection identity
// and queues the durable mirror write. The store keeps its own copy, so the
// caller's pointer never aliases store state; the copy-out discipline of Get
// and Players holds on the way in too. It always succeeds: a persistence
// failure is logged by the worker and never rolled back.
func (s *Store) Upsert(p *models.Player) {
	cp := *p
	s.mu.Lock()
	s.players[cp.ID] = &cp
	s.mu.Unlock()

	snapshot := *p
	s.worker.Submit(persist.Task{
		Op: "upsert_player",
		ID: p.ID,
		Fn: func(ctx context.Context) error {
			_, err := s.db.UpsertPlayer(ctx, &snapshot)
			return err
		},
	})
}

// ApplyMovement adds the delta to the player's position with no bounds
// clamping and queues the position write. A missing id is a legitimate race
// with disconnect cleanup, not an error: the call is a silent no-op and
// returns (nil, false).
func (s *Store) ApplyMovement(id string, delta models.Movement) (*models.Player, bool) {
	s.mu.Lock()
	p, ok := s.players[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	p.Position.X += delta.X
	p.Position.Y += delta.Y
	pos := p.Position
	updated := *p
	s.mu.Unlock()

	// Position writes are not serialized per player; under high-frequency
	// movement they may reach the durable store out of order. Known gap.
	s.worker.Submit(persist.Task{
		Op: "update_position",
		ID: id,
		Fn: func(ctx context.Context) error {
			_, err := s.db.UpdatePlayerPosition(ctx, id, pos)
			return err
		},
	})
	return &updated, true
}

// SetRoom assigns the routing group on a connected player and mirrors the
// full record durably. Returns the updated record, or (nil, false) if the
// player already disconnected.
func (s *Store) SetRoom(id, room string) (*models.Player, bool) {
	s.mu.Lock()
	p, ok := s.players[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	p.Room = room
	updated := *p
	s.mu.Unlock()

	s.worker.Submit(persist.Task{
		Op: "upsert_player",
		ID: id,
		Fn: func(ctx context.Context) error {
			_, err := s.db.UpsertPlayer(ctx, &updated)
			return err
		},
	})
	return &updated, true
}

// Remove deletes the player from memory and queues the durable delete.
// Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	_, existed := s.players[id]
	delete(s.players, id)
	s.mu.Unlock()

	if !existed {
		return
	}
	s.worker.Submit(persist.Task{
		Op: "remove_player",
		ID: id,
		Fn: func(ctx context.Context) error {
			return s.db.RemovePlayer(ctx, id)
		},
	})
}

// Get returns a copy of the player record, so callers never hold a pointer
// into the store that another connection's handler can mutate.
func (s *Store) Get(id string) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// Players returns a copied map of all connected players.
func (s *Store) Players() map[string]*models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Player, len(s.players))
	for id, p := range s.players {
		cp := *p
		out[id] = &cp
	}
	return out
}

// Snapshot builds the full projection, reading matches and players from the
// durable store. Durable players missing from memory are lazily hydrated back
// in (and logged); if the durable store is unreachable the snapshot degrades
// to memory-only rather than failing.
func (s *Store) Snapshot(ctx context.Context) *models.GameStateSnapshot {
	snap := &models.GameStateSnapshot{
		Players: s.Players(),
		Matches: []*models.Match{},
	}

	matches, err := s.db.ListMatches(ctx)
	if err != nil {
		s.logger.WithField("error", err).Warn("snapshot: durable match list unavailable")
	} else {
		snap.Matches = matches
	}
	for _, m := range snap.Matches {
		if m.Status == models.MatchStatusActive {
			snap.IsGameActive = true
			break
		}
	}

	durable, err := s.db.ListPlayers(ctx)
	if err != nil {
		s.logger.WithField("error", err).Warn("snapshot: durable player list unavailable")
		return snap
	}
	for _, p := range durable {
		if _, ok := snap.Players[p.ID]; ok {
			continue
		}
		cp := *p
		s.mu.Lock()
		if _, inMem := s.players[p.ID]; !inMem {
			s.players[p.ID] = &cp
		}
		s.mu.Unlock()
		snap.Players[p.ID] = p
		s.logger.WithField("player", p.ID).Info("hydrated player from durable store")
	}
	return snap
}
