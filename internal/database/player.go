// internal/database/player.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenalab/arena/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertPlayer inserts or fully replaces the durable player row keyed by
// connection identity.
func (s *Postgres) UpsertPlayer(ctx context.Context, p *models.Player) (*models.Player, error) {
	q := `
		INSERT INTO players (connection_id, username, pos_x, pos_y, score, room)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (connection_id)
		DO UPDATE SET username=$2, pos_x=$3, pos_y=$4, score=$5, room=NULLIF($6, '')
		RETURNING connection_id, username, pos_x, pos_y, score, COALESCE(room, '')
	`
	row := s.pool.QueryRow(ctx, q, p.ID, p.Username, p.Position.X, p.Position.Y, p.Score, p.Room)
	saved, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("upsert player %s: %w", p.ID, err)
	}
	return saved, nil
}

// UpdatePlayerPosition writes only the position columns. Returns (nil, nil)
// if the player row no longer exists, which is normal after a disconnect
// raced the write-behind queue.
func (s *Postgres) UpdatePlayerPosition(ctx context.Context, id string, pos models.Position) (*models.Player, error) {
	q := `
		UPDATE players SET pos_x=$2, pos_y=$3
		WHERE connection_id=$1
		RETURNING connection_id, username, pos_x, pos_y, score, COALESCE(room, '')
	`
	row := s.pool.QueryRow(ctx, q, id, pos.X, pos.Y)
	saved, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update position for %s: %w", id, err)
	}
	return saved, nil
}

// RemovePlayer deletes the durable row. Deleting an absent row is a no-op.
func (s *Postgres) RemovePlayer(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM players WHERE connection_id=$1`, id); err != nil {
		return fmt.Errorf("remove player %s: %w", id, err)
	}
	return nil
}

// ListPlayers returns every durable player row.
func (s *Postgres) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	q := `SELECT connection_id, username, pos_x, pos_y, score, COALESCE(room, '') FROM players`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	if err := row.Scan(&p.ID, &p.Username, &p.Position.X, &p.Position.Y, &p.Score, &p.Room); err != nil {
		return nil, err
	}
	return &p, nil
}
