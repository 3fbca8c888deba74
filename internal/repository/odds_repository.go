package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

const oddsColumns = `
	game_id, market_type, line, price_home, price_away, price_over, price_under, recorded_at
`

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// GetByGameIDs retrieves the closing row per (game, market) for a cohort. The
// DISTINCT ON keeps only the last recorded row per market.
func (r *PostgresOddsRepository) GetByGameIDs(ctx context.Context, gameIDs []uuid.UUID) ([]*models.OddsRecord, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT ON (game_id, market_type) %s
		FROM odds
		WHERE game_id = ANY($1)
		ORDER BY game_id, market_type, recorded_at DESC
	`, oddsColumns)

	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds: %w", err)
	}
	defer rows.Close()

	var records []*models.OddsRecord
	for rows.Next() {
		record, err := scanOdds(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanOdds(row pgx.Row) (*models.OddsRecord, error) {
	record := &models.OddsRecord{}
	err := row.Scan(
		&record.GameID, &record.MarketType, &record.Line,
		&record.PriceHome, &record.PriceAway, &record.PriceOver, &record.PriceUnder,
		&record.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}
