// internal/models/snapshot.go
package models

// GameStateSnapshot is a read-only projection of the full world, computed on
// demand and never stored.
type GameStateSnapshot struct {
	Players      map[string]*Player `json:"players"`
	Matches      []*Match           `json:"matches"`
	IsGameActive bool               `json:"isGameActive"`
}
