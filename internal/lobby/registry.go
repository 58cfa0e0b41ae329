// internal/lobby/registry.go
package lobby

import (
	"errors"
	"sync"

	"github.com/arenalab/arena/internal/matchmaking"
	"github.com/arenalab/arena/internal/models"
)

// ErrLobbyNotFound is returned when a join references an unknown game id.
var ErrLobbyNotFound = errors.New("lobby not found")

// Registry manages host-created pre-match lobbies, independent of the FIFO
// matchmaking queue. Membership is not indexed by player; removal scans all
// lobbies, which is fine at single-process scale.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*models.Lobby
}

// NewRegistry returns an empty lobby registry.
func NewRegistry() *Registry {
	return &Registry{lobbies: make(map[string]*models.Lobby)}
}

// Create allocates a new open lobby hosted (and solely populated) by hostID.
// It always succeeds; there is no cap on how many lobbies one host opens.
func (r *Registry) Create(hostID string) *models.Lobby {
	gameID := matchmaking.NewGameID()
	l := &models.Lobby{
		GameID:  gameID,
		Room:    matchmaking.RoomFor(gameID),
		HostID:  hostID,
		Players: []string{hostID},
		Status:  models.LobbyStatusOpen,
	}
	r.mu.Lock()
	r.lobbies[gameID] = l
	r.mu.Unlock()
	return r.copyLobby(l)
}

// Join appends the player to the lobby's member list, preserving insertion
// order. Joining a lobby you are already in is a no-op. There is no maximum
// size; callers needing a cap must enforce one.
func (r *Registry) Join(gameID, playerID string) (*models.Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[gameID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if !l.HasPlayer(playerID) {
		l.Players = append(l.Players, playerID)
	}
	return r.copyLobby(l), nil
}

// LeaveResult reports what LeaveByPlayer did.
type LeaveResult struct {
	// Removed is false when the player was not a member of any lobby.
	Removed bool
	// Deleted is true when the player was the lobby's last member and the
	// lobby was torn down.
	Deleted bool
	// Room is the routing group of the lobby left, set whenever Removed is
	// true, so callers can drop the membership even after a deletion.
	Room string
	// Lobby is the surviving lobby after removal, nil when Deleted or when
	// nothing was removed.
	Lobby *models.Lobby
	// NewHostID is set when removing the host promoted the next remaining
	// member in insertion order.
	NewHostID string
}

// LeaveByPlayer scans all lobbies and removes the player from the first one
// containing them. Removing the host migrates hosting to the earliest
// remaining joiner; removing the sole member deletes the lobby.
func (r *Registry) LeaveByPlayer(playerID string) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	for gameID, l := range r.lobbies {
		idx := -1
		for i, p := range l.Players {
			if p == playerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		l.Players = append(l.Players[:idx], l.Players[idx+1:]...)
		if len(l.Players) == 0 {
			delete(r.lobbies, gameID)
			return LeaveResult{Removed: true, Deleted: true, Room: l.Room}
		}
		res := LeaveResult{Removed: true, Room: l.Room}
		if l.HostID == playerID {
			l.HostID = l.Players[0]
			res.NewHostID = l.HostID
		}
		res.Lobby = r.copyLobby(l)
		return res
	}
	return LeaveResult{}
}

// Get returns a copy of one lobby.
func (r *Registry) Get(gameID string) (*models.Lobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[gameID]
	if !ok {
		return nil, false
	}
	return r.copyLobby(l), true
}

// List returns copies of all open lobbies, unpaginated.
func (r *Registry) List() []*models.Lobby {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		if l.Status == models.LobbyStatusOpen {
			out = append(out, r.copyLobby(l))
		}
	}
	return out
}

func (r *Registry) copyLobby(l *models.Lobby) *models.Lobby {
	cp := *l
	cp.Players = append([]string(nil), l.Players...)
	return &cp
}
