// internal/handlers/api_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arenalab/arena/internal/database"
	"github.com/arenalab/arena/internal/models"
	"github.com/arenalab/arena/internal/persist"
	"github.com/arenalab/arena/internal/session"
	"github.com/arenalab/arena/internal/state"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*session.Server, *persist.Worker) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	db := database.NewMemory()
	worker := persist.NewWorker(logger, 1, 256)
	st := state.NewStore(db, worker, logger)
	return session.NewServer(st, db, worker, nil, logger), worker
}

func connectPlayer(srv *session.Server, id string) *session.Conn {
	c := session.NewConn(id, srv.Logger)
	srv.Register(c)
	srv.HandleEvent(context.Background(), c, session.InboundEvent{Type: session.EventPlayerJoin})
	return c
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestQueueJoinValidation(t *testing.T) {
	srv, worker := newTestServer()
	defer worker.Close()
	h := QueueJoinHandler(srv)

	// missing identity
	req := httptest.NewRequest("POST", "/api/queue/join", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// identity not connected
	req = httptest.NewRequest("POST", "/api/queue/join", bytes.NewBufferString(`{"connectionId":"ghost"}`))
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// connected identity enters the queue
	connectPlayer(srv, "conn-a")
	req = httptest.NewRequest("POST", "/api/queue/join", bytes.NewBufferString(`{"connectionId":"conn-a"}`))
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"conn-a"}, srv.Queue.Waiting())
}

func TestQueueLeaveHandler(t *testing.T) {
	srv, worker := newTestServer()
	defer worker.Close()

	connectPlayer(srv, "conn-a")
	require.NoError(t, srv.JoinQueue("conn-a"))

	req := httptest.NewRequest("POST", "/api/queue/leave", bytes.NewBufferString(`{"connectionId":"conn-a"}`))
	w := httptest.NewRecorder()
	QueueLeaveHandler(srv)(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, srv.Queue.Len())
}

func TestMatchesEndpoints(t *testing.T) {
	srv, worker := newTestServer()
	defer worker.Close()
	h := MatchesHandler(srv)

	connectPlayer(srv, "conn-a")
	connectPlayer(srv, "conn-b")
	require.NoError(t, srv.JoinQueue("conn-a"))
	require.NoError(t, srv.JoinQueue("conn-b"))

	matches := srv.Matches.List()
	require.Len(t, matches, 1)
	gameID := matches[0].GameID

	// list
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/matches", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// fetch one
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/matches/"+gameID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Match
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"conn-a", "conn-b"}, got.Players)

	// unknown id
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/matches/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// administrative end
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/matches/"+gameID+"/end", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	m, ok := srv.Matches.Get(gameID)
	require.True(t, ok)
	assert.Equal(t, models.MatchStatusEnded, m.Status)

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/matches/nope/end", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLobbiesEndpoints(t *testing.T) {
	srv, worker := newTestServer()
	defer worker.Close()
	h := LobbiesHandler(srv)

	// creating for a disconnected host is rejected
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/lobbies", bytes.NewBufferString(`{"hostId":"ghost"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	connectPlayer(srv, "conn-a")
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("POST", "/api/lobbies", bytes.NewBufferString(`{"hostId":"conn-a"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	var l models.Lobby
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	assert.Equal(t, "conn-a", l.HostID)

	w = httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/lobbies", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Lobbies []*models.Lobby `json:"lobbies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Lobbies, 1)
}

func TestStateAndPlayersEndpoints(t *testing.T) {
	srv, worker := newTestServer()
	defer worker.Close()

	connectPlayer(srv, "conn-a")

	w := httptest.NewRecorder()
	StateHandler(srv)(w, httptest.NewRequest("GET", "/api/state", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var snap models.GameStateSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Contains(t, snap.Players, "conn-a")
	assert.False(t, snap.IsGameActive)

	w = httptest.NewRecorder()
	PlayersHandler(srv)(w, httptest.NewRequest("GET", "/api/players", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
