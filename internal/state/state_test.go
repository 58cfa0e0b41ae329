// internal/state/state_test.go
package state

import (
	"context"
	"io"
	"testing"

	"github.com/arenalab/arena/internal/database"
	"github.com/arenalab/arena/internal/models"
	"github.com/arenalab/arena/internal/persist"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *database.Memory, *persist.Worker) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	db := database.NewMemory()
	worker := persist.NewWorker(logger, 1, 64)
	return NewStore(db, worker, logger), db, worker
}

func TestMovementAccumulatesWithoutClamping(t *testing.T) {
	s, _, worker := newTestStore()
	defer worker.Close()

	s.Upsert(&models.Player{ID: "c1", Username: "alice"})

	s.ApplyMovement("c1", models.Movement{X: 5, Y: -2})
	s.ApplyMovement("c1", models.Movement{X: -100, Y: -100})
	p, ok := s.Get("c1")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: -95, Y: -102}, p.Position)
}

func TestMovementForUnknownIDIsSilentNoop(t *testing.T) {
	s, _, worker := newTestStore()
	defer worker.Close()

	p, ok := s.ApplyMovement("ghost", models.Movement{X: 1, Y: 1})
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s, db, worker := newTestStore()

	s.Upsert(&models.Player{ID: "c1", Username: "alice"})
	s.Remove("c1")
	s.Remove("c1")

	_, ok := s.Get("c1")
	assert.False(t, ok)

	// drain the write-behind queue, then the durable row must be gone too
	worker.Close()
	durable, err := db.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, durable)
}

func TestUpsertMirrorsDurably(t *testing.T) {
	s, db, worker := newTestStore()

	s.Upsert(&models.Player{ID: "c1", Username: "alice", Score: 3})
	worker.Close()

	durable, err := db.ListPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, durable, 1)
	assert.Equal(t, "alice", durable[0].Username)
	assert.Equal(t, 3, durable[0].Score)
}

func TestSnapshotHydratesDurablePlayers(t *testing.T) {
	s, db, worker := newTestStore()
	defer worker.Close()

	ctx := context.Background()
	// A player known only durably, as if a previous process wrote it.
	_, err := db.UpsertPlayer(ctx, &models.Player{ID: "cold", Username: "bob"})
	require.NoError(t, err)
	_, err = db.CreateOrUpdateMatch(ctx, &models.Match{
		GameID: "game_1", Players: []string{"x", "y"}, Room: "room:game_1", Status: models.MatchStatusActive,
	})
	require.NoError(t, err)

	s.Upsert(&models.Player{ID: "hot", Username: "alice"})

	snap := s.Snapshot(ctx)
	assert.Contains(t, snap.Players, "hot")
	assert.Contains(t, snap.Players, "cold")
	assert.True(t, snap.IsGameActive)
	require.Len(t, snap.Matches, 1)

	// hydration reinserted the cold player into memory
	p, ok := s.Get("cold")
	require.True(t, ok)
	assert.Equal(t, "bob", p.Username)
}

// Upsert must detach from the caller's pointer: after the upsert, store
// mutations stay invisible to the record the caller kept (and may be
// marshaling on another goroutine), and caller mutations stay out of the
// store.
func TestUpsertDetachesCallerPointer(t *testing.T) {
	s, _, worker := newTestStore()
	defer worker.Close()

	mine := &models.Player{ID: "c1", Username: "alice"}
	s.Upsert(mine)

	s.ApplyMovement("c1", models.Movement{X: 3, Y: 4})
	assert.Equal(t, models.Position{}, mine.Position)

	mine.Username = "mutated"
	p, ok := s.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", p.Username)
}

func TestSetRoom(t *testing.T) {
	s, _, worker := newTestStore()
	defer worker.Close()

	s.Upsert(&models.Player{ID: "c1", Username: "alice"})
	p, ok := s.SetRoom("c1", "room:game_9")
	require.True(t, ok)
	assert.Equal(t, "room:game_9", p.Room)

	_, ok = s.SetRoom("ghost", "room:game_9")
	assert.False(t, ok)
}
