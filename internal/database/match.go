// internal/database/match.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenalab/arena/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreateOrUpdateMatch upserts the durable match row keyed by game id.
func (s *Postgres) CreateOrUpdateMatch(ctx context.Context, m *models.Match) (*models.Match, error) {
	status := m.Status
	if status == "" {
		status = models.MatchStatusActive
	}
	q := `
		INSERT INTO matches (game_id, players, room, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id)
		DO UPDATE SET players=$2, room=$3, status=$4
		RETURNING game_id, players, room, status
	`
	row := s.pool.QueryRow(ctx, q, m.GameID, m.Players, m.Room, status)
	saved, err := scanMatch(row)
	if err != nil {
		return nil, fmt.Errorf("upsert match %s: %w", m.GameID, err)
	}
	return saved, nil
}

// EndMatch flips the durable match to ended. Returns (nil, nil) for an
// unknown game id.
func (s *Postgres) EndMatch(ctx context.Context, gameID string) (*models.Match, error) {
	q := `
		UPDATE matches SET status=$2
		WHERE game_id=$1
		RETURNING game_id, players, room, status
	`
	row := s.pool.QueryRow(ctx, q, gameID, models.MatchStatusEnded)
	saved, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("end match %s: %w", gameID, err)
	}
	return saved, nil
}

// ListMatches returns every durable match row, active and ended.
func (s *Postgres) ListMatches(ctx context.Context) ([]*models.Match, error) {
	rows, err := s.pool.Query(ctx, `SELECT game_id, players, room, status FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch fetches one durable match, (nil, nil) if unknown.
func (s *Postgres) GetMatch(ctx context.Context, gameID string) (*models.Match, error) {
	row := s.pool.QueryRow(ctx, `SELECT game_id, players, room, status FROM matches WHERE game_id=$1`, gameID)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", gameID, err)
	}
	return m, nil
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	if err := row.Scan(&m.GameID, &m.Players, &m.Room, &m.Status); err != nil {
		return nil, err
	}
	return &m, nil
}
