package models

import "github.com/google/uuid"

// FeatureCategory is the closed set of feature derivations. The computation
// engine switches exhaustively over these values.
type FeatureCategory string

const (
	CategoryRaw          FeatureCategory = "raw"
	CategoryDifferential FeatureCategory = "differential"
	CategoryCombined     FeatureCategory = "combined"
	CategorySituational  FeatureCategory = "situational"
	CategoryRolling      FeatureCategory = "rolling"
	CategoryEngineered   FeatureCategory = "engineered"
)

// FeatureTiming classifies when a feature's inputs become available.
type FeatureTiming string

const (
	TimingPreGame       FeatureTiming = "pre_game"
	TimingMarketDerived FeatureTiming = "market_derived"
	TimingPostGame      FeatureTiming = "post_game"
)

// FeatureSource names where a feature's inputs come from.
type FeatureSource string

const (
	SourceSchedule       FeatureSource = "schedule"
	SourceRollingHistory FeatureSource = "rolling_history"
	SourceMarket         FeatureSource = "market"
	SourceBoxscore       FeatureSource = "boxscore"
	SourceProjection     FeatureSource = "projection"
	SourceResult         FeatureSource = "result"
	SourceUnknown        FeatureSource = "unknown"
)

// FeatureMetadata is the registry classification of a feature name.
// Heuristic is true when the classification came from a prefix rule or the
// conservative default rather than the override table.
type FeatureMetadata struct {
	Timing    FeatureTiming `json:"timing"`
	Source    FeatureSource `json:"source"`
	Group     string        `json:"group"`
	Heuristic bool          `json:"heuristic"`
}

// FeatureDescriptor describes one requested feature. Immutable once
// classified.
type FeatureDescriptor struct {
	Name     string          `json:"name" validate:"required"`
	Formula  string          `json:"formula"`
	Category FeatureCategory `json:"category" validate:"required,oneof=raw differential combined situational rolling engineered"`
	Requires []string        `json:"requires,omitempty"`
	Timing   FeatureTiming   `json:"timing"`
	Source   FeatureSource   `json:"source"`
	Group    string          `json:"group"`
}

// FeatureRow is one game's computed feature values. Values that could not be
// computed are absent, never zero-filled.
type FeatureRow struct {
	GameID uuid.UUID      `json:"game_id"`
	Values map[string]any `json:"values"`
}
