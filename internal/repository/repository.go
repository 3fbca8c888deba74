package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game GameRepository
	Odds OddsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game: NewPostgresGameRepository(db),
		Odds: NewPostgresOddsRepository(db),
	}, nil
}

// LoadGames fetches the game cohort for a filter with closing odds already
// overlaid on each game's derived metrics. Games without odds rows keep their
// market fields absent.
func (r *Repositories) LoadGames(ctx context.Context, filter GameFilter) ([]*models.Game, error) {
	games, err := r.Game.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return games, nil
	}

	ids := make([]uuid.UUID, len(games))
	byID := make(map[uuid.UUID]*models.Game, len(games))
	for i, game := range games {
		ids[i] = game.ID
		byID[game.ID] = game
	}

	odds, err := r.Odds.GetByGameIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, record := range odds {
		if game, ok := byID[record.GameID]; ok {
			record.ApplyTo(&game.Derived)
		}
	}
	return games, nil
}
