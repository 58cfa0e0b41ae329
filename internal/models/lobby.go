// internal/models/lobby.go
package models

// LobbyStatusOpen is the only lobby status currently minted; the field exists
// so the registry can grow closed/in-game states without a schema change.
const LobbyStatusOpen = "open"

// Lobby is a host-created pre-match group, distinct from the FIFO matchmaking
// path. Players keeps insertion order; the host is always a member or the
// lobby is deleted.
type Lobby struct {
	GameID  string   `json:"gameId"`
	Room    string   `json:"room"`
	HostID  string   `json:"hostId"`
	Players []string `json:"players"`
	Status  string   `json:"status"`
}

// HasPlayer reports membership.
func (l *Lobby) HasPlayer(id string) bool {
	for _, p := range l.Players {
		if p == id {
			return true
		}
	}
	return false
}
