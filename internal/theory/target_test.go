package theory

import (
	"testing"

	"github.com/yourusername/theory-engine/internal/models"
)

func TestResolveStatTarget(t *testing.T) {
	derived := models.DerivedMetrics{
		HomePoints:  fp(80),
		AwayPoints:  fp(72),
		TotalPoints: fp(152),
		Margin:      fp(8),
		HomeWin:     bp(true),
	}

	tests := []struct {
		name string
		want float64
	}{
		{"home_points", 80},
		{"away_points", 72},
		{"total_points", 152},
		{"margin", 8},
		{"home_win", 1},
	}
	for _, tt := range tests {
		def := models.TargetDefinition{TargetClass: models.TargetClassStat, TargetName: tt.name}
		got := ResolveTarget(derived, def)
		if got == nil || *got != tt.want {
			t.Fatalf("%s: got %v, want %.0f", tt.name, got, tt.want)
		}
	}

	unknown := models.TargetDefinition{TargetClass: models.TargetClassStat, TargetName: "rebounds"}
	if ResolveTarget(derived, unknown) != nil {
		t.Fatal("unknown stat target must resolve to nil")
	}
}

func TestResolveMarketTargetSideFlip(t *testing.T) {
	derived := models.DerivedMetrics{HomeCovered: bp(true), HomeWin: bp(false), WentOver: bp(true)}

	home := models.TargetDefinition{TargetClass: models.TargetClassMarket, MarketType: models.MarketSpread, Side: models.SideHome}
	away := home
	away.Side = models.SideAway
	if *ResolveTarget(derived, home) != 1 || *ResolveTarget(derived, away) != 0 {
		t.Fatal("spread label must flip with the side")
	}

	mlHome := models.TargetDefinition{TargetClass: models.TargetClassMarket, MarketType: models.MarketMoneyline, Side: models.SideHome}
	mlAway := mlHome
	mlAway.Side = models.SideAway
	if *ResolveTarget(derived, mlHome) != 0 || *ResolveTarget(derived, mlAway) != 1 {
		t.Fatal("moneyline label must flip with the side")
	}

	under := models.TargetDefinition{TargetClass: models.TargetClassMarket, MarketType: models.MarketTotal, Side: models.SideUnder}
	if *ResolveTarget(derived, under) != 0 {
		t.Fatal("an over result is a loss for the under")
	}
}

func TestResolveMarketTargetMissingFact(t *testing.T) {
	def := models.TargetDefinition{TargetClass: models.TargetClassMarket, MarketType: models.MarketSpread, Side: models.SideHome}
	if ResolveTarget(models.DerivedMetrics{}, def) != nil {
		t.Fatal("missing cover fact must resolve to nil, never a default")
	}
}

func TestResolveTargetsSkipsUnresolvable(t *testing.T) {
	resolved := spreadGame(true)
	unresolved := spreadGame(true)
	unresolved.Derived.HomeCovered = nil

	targets := ResolveTargets([]*models.Game{resolved, unresolved}, spreadDef())
	if len(targets) != 1 {
		t.Fatalf("expected 1 resolved target, got %d", len(targets))
	}
	if _, ok := targets[resolved.ID]; !ok {
		t.Fatal("resolved game missing from the map")
	}
}
