// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/arenalab/arena/internal/database"
	"github.com/arenalab/arena/internal/handlers"
	"github.com/arenalab/arena/internal/journal"
	"github.com/arenalab/arena/internal/middleware"
	"github.com/arenalab/arena/internal/persist"
	"github.com/arenalab/arena/internal/session"
	"github.com/arenalab/arena/internal/state"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	ctx := context.Background()

	// The durable store is a boot dependency: refusing to serve beats
	// serving sessions we cannot mirror.
	pool := database.Connect(ctx)
	defer pool.Close()
	db := database.NewPostgres(pool)

	// The journal is a mirror of a mirror; run without it if Redis is down.
	jrnl, err := journal.Connect(ctx)
	if err != nil {
		logger.Warnf("event journal unavailable, continuing without it: %v", err)
		jrnl = nil
	} else {
		defer jrnl.Close()
	}

	worker := persist.NewWorker(logger, 4, getEnvInt("PERSIST_QUEUE_DEPTH", 1024))
	defer worker.Close()

	st := state.NewStore(db, worker, logger)
	srv := session.NewServer(st, db, worker, jrnl, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", handlers.HealthHandler)

	// session websocket; mounted bare so the upgrade can hijack the
	// connection, the handler logs its own lifecycle
	mux.HandleFunc("/ws", handlers.WSHandler(logger, srv))

	// admin endpoints
	mux.Handle("/api/state", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.StateHandler(srv),
	)))
	mux.Handle("/api/players", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.PlayersHandler(srv),
	)))
	mux.Handle("/api/matches", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.MatchesHandler(srv),
	)))
	mux.Handle("/api/matches/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.MatchesHandler(srv),
	)))
	mux.Handle("/api/queue/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.QueueJoinHandler(srv),
	)))
	mux.Handle("/api/queue/leave", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.QueueLeaveHandler(srv),
	)))
	mux.Handle("/api/lobbies", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.LobbiesHandler(srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
