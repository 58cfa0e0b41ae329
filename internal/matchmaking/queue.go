// internal/matchmaking/queue.go
package matchmaking

import (
	"fmt"
	"sync"
	"time"

	"github.com/arenalab/arena/internal/models"
	"github.com/google/uuid"
)

// Queue pairs waiting connections strictly first-in-first-out, two at a time.
// There is no timer, skill weighting, or fallback: a lone entry waits until
// it leaves or disconnects.
type Queue struct {
	mu      sync.Mutex
	waiting []string
}

// NewQueue returns an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends the identity unless it is already queued. Re-adding never
// duplicates the entry or changes its position.
func (q *Queue) Enqueue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, w := range q.waiting {
		if w == id {
			return
		}
	}
	q.waiting = append(q.waiting, id)
}

// Dequeue removes the identity from any position. Removing an absent
// identity is a no-op.
func (q *Queue) Dequeue(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiting {
		if w == id {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// TryMatch removes the two oldest entries and mints a match for them. The
// length check and the removal happen under one lock so two concurrent
// callers can never win the same pair or interleave a leave between check
// and removal. Returns nil when fewer than two identities are waiting.
func (q *Queue) TryMatch() *models.Match {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiting) < 2 {
		return nil
	}
	p1, p2 := q.waiting[0], q.waiting[1]
	q.waiting = q.waiting[2:]

	gameID := NewGameID()
	return &models.Match{
		GameID:  gameID,
		Players: []string{p1, p2},
		Room:    RoomFor(gameID),
		Status:  models.MatchStatusActive,
	}
}

// Len reports the number of waiting identities.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Waiting returns a copy of the queue in arrival order.
func (q *Queue) Waiting() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.waiting))
	copy(out, q.waiting)
	return out
}

// RoomFor derives the routing group label for a game id.
func RoomFor(gameID string) string {
	return "room:" + gameID
}

// NewGameID mints an identifier from wall-clock time plus a random suffix.
// No uniqueness check is made against existing ids; the collision risk is
// accepted, and callers must not read ordering out of the id. Lobbies share
// the same id space.
func NewGameID() string {
	return fmt.Sprintf("game_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
