// internal/models/player.go
package models

// Position is a player's coordinate in the shared world. Coordinates are
// unbounded: movement deltas accumulate with no clamping.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Player is the authoritative record for one connected session. The ID is the
// server-assigned connection identity and is never reused across reconnects.
type Player struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Position Position `json:"position"`
	Score    int      `json:"score"`

	// Room is the routing group the player was matched into, empty until a
	// match or lobby assigns one.
	Room string `json:"room,omitempty"`
}

// Movement is a relative position delta carried by a move event. Absent
// fields decode to zero.
type Movement struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
