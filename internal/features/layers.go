package features

import "github.com/yourusername/theory-engine/internal/models"

// LayerResult is the successful output of an optional layer builder.
type LayerResult struct {
	Values map[string]float64
}

// LayerBuilder contributes extra derived values (ratings, market-derived
// edges, post-game diagnostics) to feature rows. Builders return an error
// value instead of panicking; a failing layer never aborts the primary
// computation.
//
// Layer outputs are only admitted when the name was explicitly requested or
// pre-approved; unsolicited new signals are discarded so a layer can never
// introduce silent leakage.
type LayerBuilder interface {
	Name() string
	Build(game *models.Game) (LayerResult, error)
}
