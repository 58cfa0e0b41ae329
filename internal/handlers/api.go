// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arenalab/arena/internal/matchmaking"
	"github.com/arenalab/arena/internal/session"
)

// The administrative surface is a thin read/write pass-through to the session
// core, consumed by dashboards and ops tooling. Failures surface as JSON
// error payloads, unlike the protocol path where failures stay invisible to
// the triggering client.

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StateHandler returns the full hydrated game state snapshot.
func StateHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, srv.State.Snapshot(r.Context()))
	}
}

// PlayersHandler lists currently connected players.
func PlayersHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players := srv.State.Players()
		out := make([]interface{}, 0, len(players))
		for _, p := range players {
			out = append(out, p)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"players": out})
	}
}

// MatchesHandler lists matches minted this process lifetime, or fetches /
// ends a single match when the path carries a game id:
//
//	GET  /api/matches
//	GET  /api/matches/{gameId}
//	POST /api/matches/{gameId}/end
func MatchesHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/matches"), "/")
		if rest == "" {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"games": srv.Matches.List()})
			return
		}

		parts := strings.Split(rest, "/")
		gameID := parts[0]

		if len(parts) == 2 && parts[1] == "end" {
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			m, err := srv.EndMatch(gameID)
			if errors.Is(err, matchmaking.ErrMatchNotFound) {
				writeError(w, http.StatusNotFound, "match not found")
				return
			}
			writeJSON(w, http.StatusOK, m)
			return
		}

		if len(parts) != 1 || r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		m, ok := srv.Matches.Get(gameID)
		if !ok {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

type queueRequest struct {
	ConnectionID string `json:"connectionId"`
}

// QueueJoinHandler enters a connected identity into the matchmaking queue.
// The identity must belong to a live session; a pairing is attempted
// immediately, exactly as if the client had sent queue:join itself.
func QueueJoinHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
			writeError(w, http.StatusBadRequest, "connectionId is required")
			return
		}
		if err := srv.JoinQueue(req.ConnectionID); err != nil {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// QueueLeaveHandler removes an identity from the matchmaking queue.
func QueueLeaveHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req queueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
			writeError(w, http.StatusBadRequest, "connectionId is required")
			return
		}
		srv.LeaveQueue(req.ConnectionID)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type createLobbyRequest struct {
	HostID string `json:"hostId"`
}

// LobbiesHandler lists open lobbies (GET) or creates one for a connected
// host (POST).
func LobbiesHandler(srv *session.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]interface{}{"lobbies": srv.Lobbies.List()})
		case http.MethodPost:
			var req createLobbyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HostID == "" {
				writeError(w, http.StatusBadRequest, "hostId is required")
				return
			}
			l, err := srv.CreateLobby(req.HostID)
			if err != nil {
				writeError(w, http.StatusNotFound, "connection not found")
				return
			}
			writeJSON(w, http.StatusCreated, l)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}
