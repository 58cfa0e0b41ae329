// internal/lobby/registry_test.go
package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndJoin(t *testing.T) {
	r := NewRegistry()
	l := r.Create("host")
	assert.Equal(t, "host", l.HostID)
	assert.Equal(t, []string{"host"}, l.Players)
	assert.Equal(t, "room:"+l.GameID, l.Room)

	joined, err := r.Join(l.GameID, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "p2"}, joined.Players)

	// joining twice is a no-op
	joined, err = r.Join(l.GameID, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "p2"}, joined.Players)

	_, err = r.Join("missing", "p3")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestHostMigrationFollowsJoinOrder(t *testing.T) {
	r := NewRegistry()
	l := r.Create("host")
	_, err := r.Join(l.GameID, "second")
	require.NoError(t, err)
	_, err = r.Join(l.GameID, "third")
	require.NoError(t, err)

	res := r.LeaveByPlayer("host")
	assert.True(t, res.Removed)
	assert.False(t, res.Deleted)
	assert.Equal(t, l.Room, res.Room)
	assert.Equal(t, "second", res.NewHostID)
	require.NotNil(t, res.Lobby)
	assert.Equal(t, "second", res.Lobby.HostID)
	assert.Equal(t, []string{"second", "third"}, res.Lobby.Players)
}

func TestNonHostLeaveKeepsHost(t *testing.T) {
	r := NewRegistry()
	l := r.Create("host")
	_, err := r.Join(l.GameID, "second")
	require.NoError(t, err)

	res := r.LeaveByPlayer("second")
	assert.True(t, res.Removed)
	assert.Empty(t, res.NewHostID)
	assert.Equal(t, "host", res.Lobby.HostID)
}

func TestSoleMemberLeaveDeletesLobby(t *testing.T) {
	r := NewRegistry()
	l := r.Create("host")

	res := r.LeaveByPlayer("host")
	assert.True(t, res.Removed)
	assert.True(t, res.Deleted)
	assert.Nil(t, res.Lobby)
	// the room survives the deletion so callers can drop their membership
	assert.Equal(t, l.Room, res.Room)

	_, ok := r.Get(l.GameID)
	assert.False(t, ok)
	assert.Empty(t, r.List())
}

func TestLeaveByNonMemberIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Create("host")

	res := r.LeaveByPlayer("stranger")
	assert.False(t, res.Removed)
	assert.Len(t, r.List(), 1)
}
