// Package theory turns resolved game facts into evaluation rows and
// aggregate verdicts for a single theory.
package theory

import (
	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

// ResolveTarget converts a game's derived metrics into the label for the
// given target definition. Any missing underlying fact yields nil, never a
// fabricated default.
func ResolveTarget(derived models.DerivedMetrics, def models.TargetDefinition) *float64 {
	if def.IsMarket() {
		return resolveMarketTarget(derived, def)
	}
	return resolveStatTarget(derived, def)
}

func resolveStatTarget(derived models.DerivedMetrics, def models.TargetDefinition) *float64 {
	switch def.TargetName {
	case "home_points":
		return copyFloat(derived.HomePoints)
	case "away_points":
		return copyFloat(derived.AwayPoints)
	case "total_points":
		return copyFloat(derived.TotalPoints)
	case "margin":
		return copyFloat(derived.Margin)
	case "home_win":
		return boolLabel(derived.HomeWin)
	}
	return nil
}

func resolveMarketTarget(derived models.DerivedMetrics, def models.TargetDefinition) *float64 {
	switch def.MarketType {
	case models.MarketSpread:
		if derived.HomeCovered == nil {
			return nil
		}
		covered := *derived.HomeCovered
		if def.Side == models.SideAway {
			covered = !covered
		}
		return binary(covered)
	case models.MarketMoneyline:
		if derived.HomeWin == nil {
			return nil
		}
		won := *derived.HomeWin
		if def.Side == models.SideAway {
			won = !won
		}
		return binary(won)
	case models.MarketTotal:
		if derived.WentOver == nil {
			return nil
		}
		over := *derived.WentOver
		if def.Side == models.SideUnder {
			over = !over
		}
		return binary(over)
	}
	return nil
}

// ResolveTargets builds the game-id → label map for a cohort, skipping games
// whose target cannot be resolved.
func ResolveTargets(games []*models.Game, def models.TargetDefinition) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(games))
	for _, g := range games {
		if v := ResolveTarget(g.Derived, def); v != nil {
			out[g.ID] = *v
		}
	}
	return out
}

func binary(b bool) *float64 {
	v := 0.0
	if b {
		v = 1.0
	}
	return &v
}

func boolLabel(b *bool) *float64 {
	if b == nil {
		return nil
	}
	return binary(*b)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
