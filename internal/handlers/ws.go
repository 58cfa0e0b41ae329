// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/arenalab/arena/internal/session"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// WSHandler upgrades the HTTP connection, assigns a fresh connection
// identity, registers it with the session server, and runs the read loop.
// Cleanup goes through session.Server.Disconnect on every exit path.
func WSHandler(logger *logrus.Logger, srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"arena"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "arena" {
			c.Close(websocket.StatusPolicyViolation, "client must speak the arena subprotocol")
			return
		}

		// The identity lives for exactly one transport connection and is
		// never reused across reconnects.
		connID := uuid.NewString()
		logger.WithFields(logrus.Fields{
			"conn":   connID,
			"remote": r.RemoteAddr,
		}).Info("client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := session.NewConn(connID, logger)
		conn.Cancel = cancel
		srv.Register(conn)

		go writePump(ctx, c, conn, logger)

		readPump(ctx, c, srv, conn, logger)

		srv.Disconnect(conn)
		logger.WithField("conn", connID).Info("client disconnected")
	}
}

// readPump blocks reading client frames and feeding them to the router until
// the connection closes or the context is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, srv *session.Server, conn *session.Conn, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for %s", conn.ID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("websocket context canceled for %s", conn.ID)
			} else {
				logger.Warnf("read error for %s: %v (status: %d)", conn.ID, err, status)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("non-text message type %d from %s, ignoring", typ, conn.ID)
			continue
		}
		srv.HandleMessage(ctx, conn, data)
	}
}

// writePump drains the connection's out channel onto the wire and keeps the
// transport alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *session.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-conn.Out:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal outgoing %q for %s: %v", ev.Type, conn.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for %s: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for %s, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
