// internal/database/store.go
package database

import (
	"context"

	"github.com/arenalab/arena/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the durable mirror of the in-memory session state. Every call may
// fail; callers on the protocol path treat failures as log-and-continue, so
// implementations never need to guarantee more than best-effort durability.
//
// Lookup-style calls return (nil, nil) when the row does not exist.
type Store interface {
	UpsertPlayer(ctx context.Context, p *models.Player) (*models.Player, error)
	UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) (*models.Player, error)
	RemovePlayer(ctx context.Context, id string) error
	ListPlayers(ctx context.Context) ([]*models.Player, error)

	CreateOrUpdateMatch(ctx context.Context, m *models.Match) (*models.Match, error)
	EndMatch(ctx context.Context, gameID string) (*models.Match, error)
	ListMatches(ctx context.Context) ([]*models.Match, error)
	GetMatch(ctx context.Context, gameID string) (*models.Match, error)
}

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-connected pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}
