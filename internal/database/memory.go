// internal/database/memory.go
package database

import (
	"context"
	"sync"

	"github.com/arenalab/arena/internal/models"
)

// Memory is an in-process Store used by tests and local development runs
// that have no Postgres. It mirrors the Postgres semantics, including
// (nil, nil) lookups for absent rows.
type Memory struct {
	mu      sync.Mutex
	players map[string]*models.Player
	matches map[string]*models.Match
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		players: make(map[string]*models.Player),
		matches: make(map[string]*models.Match),
	}
}

func (m *Memory) UpsertPlayer(ctx context.Context, p *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.players[p.ID] = &cp
	out := cp
	return &out, nil
}

func (m *Memory) UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	p.Position = pos
	cp := *p
	return &cp, nil
}

func (m *Memory) RemovePlayer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, id)
	return nil
}

func (m *Memory) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Player, 0, len(m.players))
	for _, p := range m.players {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) CreateOrUpdateMatch(ctx context.Context, match *models.Match) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *match
	cp.Players = append([]string(nil), match.Players...)
	if cp.Status == "" {
		cp.Status = models.MatchStatusActive
	}
	m.matches[match.GameID] = &cp
	out := cp
	return &out, nil
}

func (m *Memory) EndMatch(ctx context.Context, gameID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[gameID]
	if !ok {
		return nil, nil
	}
	match.Status = models.MatchStatusEnded
	cp := *match
	return &cp, nil
}

func (m *Memory) ListMatches(ctx context.Context) ([]*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Match, 0, len(m.matches))
	for _, match := range m.matches {
		cp := *match
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) GetMatch(ctx context.Context, gameID string) (*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[gameID]
	if !ok {
		return nil, nil
	}
	cp := *match
	return &cp, nil
}
