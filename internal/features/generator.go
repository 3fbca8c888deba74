package features

import (
	"fmt"

	"github.com/yourusername/theory-engine/internal/models"
)

// GeneratorOptions control feature expansion from base stats.
type GeneratorOptions struct {
	IncludeRestDays bool
	IncludeRolling  bool
	RollingWindow   int
}

// Generate expands base stats into classified feature descriptors. Base stats
// are deduplicated preserving order. A fixed builtin set is always emitted in
// addition to the stat-derived descriptors.
func Generate(baseStats []string, opts GeneratorOptions) []models.FeatureDescriptor {
	stats := dedupe(baseStats)
	descriptors := builtinDescriptors()

	for _, stat := range stats {
		descriptors = append(descriptors,
			Describe(models.FeatureDescriptor{
				Name:     "home_" + stat,
				Formula:  fmt.Sprintf("home team %s from the game box score", stat),
				Category: models.CategoryRaw,
				Requires: []string{stat},
			}),
			Describe(models.FeatureDescriptor{
				Name:     "away_" + stat,
				Formula:  fmt.Sprintf("away team %s from the game box score", stat),
				Category: models.CategoryRaw,
				Requires: []string{stat},
			}),
			Describe(models.FeatureDescriptor{
				Name:     stat + "_diff",
				Formula:  fmt.Sprintf("home %s minus away %s", stat, stat),
				Category: models.CategoryDifferential,
				Requires: []string{stat},
			}),
			Describe(models.FeatureDescriptor{
				Name:     "total_" + stat,
				Formula:  fmt.Sprintf("home %s plus away %s", stat, stat),
				Category: models.CategoryCombined,
				Requires: []string{stat},
			}),
		)
	}

	if opts.IncludeRestDays {
		descriptors = append(descriptors,
			Describe(models.FeatureDescriptor{
				Name:     "home_rest_days",
				Formula:  "days since the home team's prior completed game",
				Category: models.CategorySituational,
			}),
			Describe(models.FeatureDescriptor{
				Name:     "away_rest_days",
				Formula:  "days since the away team's prior completed game",
				Category: models.CategorySituational,
			}),
			Describe(models.FeatureDescriptor{
				Name:     "rest_diff",
				Formula:  "home rest days minus away rest days",
				Category: models.CategorySituational,
			}),
		)
	}

	if opts.IncludeRolling {
		window := opts.RollingWindow
		if window <= 0 {
			window = 5
		}
		for _, stat := range stats {
			descriptors = append(descriptors, rollingDescriptors(stat, window)...)
		}
	}

	return descriptors
}

func rollingDescriptors(stat string, window int) []models.FeatureDescriptor {
	sides := []string{"home", "away", "diff"}
	out := make([]models.FeatureDescriptor, 0, len(sides))
	for _, side := range sides {
		out = append(out, Describe(models.FeatureDescriptor{
			Name:     fmt.Sprintf("rolling_%s_%d_%s", stat, window, side),
			Formula:  fmt.Sprintf("%s average of %s over the team's last %d prior games", side, stat, window),
			Category: models.CategoryRolling,
			Requires: []string{stat},
		}))
	}
	return out
}

func builtinDescriptors() []models.FeatureDescriptor {
	builtins := []models.FeatureDescriptor{
		{Name: "is_conference_game", Formula: "1 when both teams share a conference", Category: models.CategorySituational},
		{Name: "pace_estimate", Formula: "FGA - OREB + TOV + 0.475*FTA averaged across sides", Category: models.CategorySituational, Requires: []string{"fga", "oreb", "tov", "fta"}},
		{Name: "rating_diff", Formula: "home rating minus away rating", Category: models.CategoryEngineered, Requires: []string{"rating"}},
		{Name: "projection_diff", Formula: "home projection minus away projection", Category: models.CategoryEngineered, Requires: []string{"projection"}},
		{Name: "top_minutes_diff", Formula: "home top-player minutes minus away top-player minutes", Category: models.CategoryEngineered, Requires: []string{"top_minutes"}},
		{Name: "home_points", Formula: "final home score", Category: models.CategoryRaw, Requires: []string{"points"}},
		{Name: "away_points", Formula: "final away score", Category: models.CategoryRaw, Requires: []string{"points"}},
		{Name: "total_points", Formula: "final combined score", Category: models.CategoryCombined, Requires: []string{"points"}},
		{Name: "margin", Formula: "final home score minus away score", Category: models.CategoryDifferential, Requires: []string{"points"}},
	}
	out := make([]models.FeatureDescriptor, 0, len(builtins))
	for _, d := range builtins {
		out = append(out, Describe(d))
	}
	return out
}

func dedupe(stats []string) []string {
	seen := make(map[string]struct{}, len(stats))
	out := make([]string, 0, len(stats))
	for _, s := range stats {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
