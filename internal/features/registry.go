// Package features expands, classifies, and computes the feature surface a
// theory evaluation runs on. The metadata registry is the single source of
// truth for leakage policy.
package features

import (
	"strings"

	"github.com/yourusername/theory-engine/internal/models"
)

// overrides is the exact-name classification table. It always wins over the
// prefix heuristics below.
var overrides = map[string]models.FeatureMetadata{
	"is_conference_game": {Timing: models.TimingPreGame, Source: models.SourceSchedule, Group: "schedule"},
	"home_rest_days":     {Timing: models.TimingPreGame, Source: models.SourceSchedule, Group: "schedule"},
	"away_rest_days":     {Timing: models.TimingPreGame, Source: models.SourceSchedule, Group: "schedule"},
	"rest_diff":          {Timing: models.TimingPreGame, Source: models.SourceSchedule, Group: "schedule"},

	"rating_diff":      {Timing: models.TimingPreGame, Source: models.SourceProjection, Group: "projection"},
	"projection_diff":  {Timing: models.TimingPreGame, Source: models.SourceProjection, Group: "projection"},
	"top_minutes_diff": {Timing: models.TimingPreGame, Source: models.SourceProjection, Group: "projection"},

	"closing_spread":       {Timing: models.TimingMarketDerived, Source: models.SourceMarket, Group: "market"},
	"closing_total":        {Timing: models.TimingMarketDerived, Source: models.SourceMarket, Group: "market"},
	"spread_implied_prob":  {Timing: models.TimingMarketDerived, Source: models.SourceMarket, Group: "market"},
	"market_edge":          {Timing: models.TimingMarketDerived, Source: models.SourceMarket, Group: "market"},

	"home_points":  {Timing: models.TimingPostGame, Source: models.SourceResult, Group: "result"},
	"away_points":  {Timing: models.TimingPostGame, Source: models.SourceResult, Group: "result"},
	"total_points": {Timing: models.TimingPostGame, Source: models.SourceResult, Group: "result"},
	"margin":       {Timing: models.TimingPostGame, Source: models.SourceResult, Group: "result"},
}

// Classify returns the metadata for a feature name. Lookup order: override
// table, prefix heuristics, conservative default. The default for unknown
// names is pre_game/unknown; it does not block deployment, so names that
// actually leak must be added to the override table.
func Classify(name string, category models.FeatureCategory) models.FeatureMetadata {
	if meta, ok := overrides[name]; ok {
		return meta
	}
	return heuristicClassify(name, category)
}

func heuristicClassify(name string, category models.FeatureCategory) models.FeatureMetadata {
	meta := models.FeatureMetadata{Heuristic: true}

	switch {
	case category == models.CategoryRolling || strings.HasPrefix(name, "rolling_"):
		meta.Timing = models.TimingPreGame
		meta.Source = models.SourceRollingHistory
		meta.Group = "rolling"
	case strings.HasPrefix(name, "pace_") || name == "pace":
		// Pace is computed from the same game's box score.
		meta.Timing = models.TimingPostGame
		meta.Source = models.SourceBoxscore
		meta.Group = "pace"
	case strings.HasPrefix(name, "home_"), strings.HasPrefix(name, "away_"),
		strings.HasPrefix(name, "total_"), strings.HasSuffix(name, "_diff"):
		meta.Timing = models.TimingPostGame
		meta.Source = models.SourceBoxscore
		meta.Group = "boxscore"
	default:
		meta.Timing = models.TimingPreGame
		meta.Source = models.SourceUnknown
		meta.Group = "other"
	}

	return meta
}

// Describe classifies a descriptor in place and returns it.
func Describe(d models.FeatureDescriptor) models.FeatureDescriptor {
	meta := Classify(d.Name, d.Category)
	d.Timing = meta.Timing
	d.Source = meta.Source
	d.Group = meta.Group
	return d
}
