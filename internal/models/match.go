// internal/models/match.go
package models

// Match status values. The transition is one-way: active -> ended.
const (
	MatchStatusActive = "active"
	MatchStatusEnded  = "ended"
)

// Match pairs two connection identities into a routing group. Players are
// stored in enqueue order.
type Match struct {
	GameID  string   `json:"gameId"`
	Players []string `json:"players"`
	Room    string   `json:"room"`
	Status  string   `json:"status"`
}
