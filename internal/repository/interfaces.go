package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/theory-engine/internal/models"
)

// GameFilter narrows the game cohort loaded for an evaluation run.
type GameFilter struct {
	Season        string
	Team          string
	StartDate     time.Time
	EndDate       time.Time
	CompletedOnly bool
}

// GameRepository defines read access to materialized game facts. The
// evaluation core never writes game data.
type GameRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	Find(ctx context.Context, filter GameFilter) ([]*models.Game, error)
}

// OddsRepository defines read access to closing-market rows.
type OddsRepository interface {
	GetByGameIDs(ctx context.Context, gameIDs []uuid.UUID) ([]*models.OddsRecord, error)
}
