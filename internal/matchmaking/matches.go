// internal/matchmaking/matches.go
package matchmaking

import (
	"errors"
	"sync"

	"github.com/arenalab/arena/internal/models"
)

// ErrMatchNotFound is returned when an operation references an unknown game id.
var ErrMatchNotFound = errors.New("match not found")

// MatchTable tracks matches minted by the queue for the lifetime of the
// process. Ended matches stay in the table so the admin surface can still
// fetch them; the durable store keeps the long-term record.
type MatchTable struct {
	mu      sync.Mutex
	matches map[string]*models.Match
}

// NewMatchTable returns an empty table.
func NewMatchTable() *MatchTable {
	return &MatchTable{matches: make(map[string]*models.Match)}
}

// Add records a freshly minted match. The table keeps its own copy so the
// caller's pointer never aliases table state that End later mutates.
func (t *MatchTable) Add(m *models.Match) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.matches[m.GameID] = t.copyMatch(m)
}

// Get returns a copy of one match.
func (t *MatchTable) Get(gameID string) (*models.Match, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.matches[gameID]
	if !ok {
		return nil, false
	}
	cp := t.copyMatch(m)
	return cp, true
}

// List returns copies of all known matches.
func (t *MatchTable) List() []*models.Match {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*models.Match, 0, len(t.matches))
	for _, m := range t.matches {
		out = append(out, t.copyMatch(m))
	}
	return out
}

// End transitions a match from active to ended. The transition is one-way:
// ending an already-ended match leaves it ended. Returns ErrMatchNotFound
// for an unknown id.
func (t *MatchTable) End(gameID string) (*models.Match, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.matches[gameID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	m.Status = models.MatchStatusEnded
	return t.copyMatch(m), nil
}

func (t *MatchTable) copyMatch(m *models.Match) *models.Match {
	cp := *m
	cp.Players = append([]string(nil), m.Players...)
	return &cp
}
