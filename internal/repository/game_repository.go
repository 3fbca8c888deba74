package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

const errScanGame = "failed to scan game: %w"

const gameColumns = `
	id, game_date, season, home_team, away_team, home_conference, away_conference,
	home_stats, away_stats,
	home_points, away_points, total_points, margin, home_win,
	home_covered, went_over, spread_push, total_push
`

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// GetByID retrieves a game with its boxscore stat maps
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE id = $1", gameColumns)

	game, err := scanGame(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// Find retrieves games matching the filter, ordered by game date ascending.
// Ascending date order is load-bearing: rolling features and walk-forward
// slicing assume it.
func (r *PostgresGameRepository) Find(ctx context.Context, filter GameFilter) ([]*models.Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE 1=1", gameColumns)
	args := []any{}

	if filter.Season != "" {
		args = append(args, filter.Season)
		query += fmt.Sprintf(" AND season = $%d", len(args))
	}
	if filter.Team != "" {
		args = append(args, filter.Team)
		query += fmt.Sprintf(" AND (home_team = $%d OR away_team = $%d)", len(args), len(args))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND game_date >= $%d", len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND game_date <= $%d", len(args))
	}
	if filter.CompletedOnly {
		query += " AND home_points IS NOT NULL AND away_points IS NOT NULL"
	}
	query += " ORDER BY game_date ASC, id ASC"

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID, &game.GameDate, &game.Season, &game.HomeTeam, &game.AwayTeam,
		&game.HomeConference, &game.AwayConference,
		&game.HomeStats, &game.AwayStats,
		&game.Derived.HomePoints, &game.Derived.AwayPoints, &game.Derived.TotalPoints,
		&game.Derived.Margin, &game.Derived.HomeWin,
		&game.Derived.HomeCovered, &game.Derived.WentOver,
		&game.Derived.SpreadPush, &game.Derived.TotalPush,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}
