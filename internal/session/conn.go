// internal/session/conn.go
package session

import "github.com/sirupsen/logrus"

// Conn is one registered transport connection. The ID is server-assigned,
// opaque, and lives exactly as long as the connection; it is the join key
// for the player record, queue entry, and lobby membership.
type Conn struct {
	ID string

	// Out feeds the transport's write pump. Writes never block the router.
	Out chan OutEvent

	// Cancel tears down the transport goroutines; wired by the WS handler.
	Cancel func()

	logger *logrus.Logger
}

// NewConn allocates a connection with a buffered outbound channel.
func NewConn(id string, logger *logrus.Logger) *Conn {
	return &Conn{
		ID:     id,
		Out:    make(chan OutEvent, 16),
		logger: logger,
	}
}

// send pushes an event onto the out channel non-blockingly. A full channel
// drops the event rather than stalling the router. Out is never closed; the
// write pump exits through context cancellation instead.
func (c *Conn) send(ev OutEvent) {
	select {
	case c.Out <- ev:
	default:
		c.logger.WithFields(logrus.Fields{
			"conn": c.ID,
			"type": ev.Type,
		}).Warn("out channel full, dropped event")
	}
}
