package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

func settledRow(implied, odds, pnl float64) *models.MicroRow {
	return &models.MicroRow{
		GameID:      uuid.New(),
		ImpliedProb: &implied,
		ClosingOdds: &odds,
		PnLUnits:    &pnl,
		Meta:        models.RowMeta{GameDate: time.Date(2024, 1, 5, 19, 0, 0, 0, time.UTC)},
	}
}

func TestRunMonteCarloSeedReproducible(t *testing.T) {
	rows := []*models.MicroRow{
		settledRow(0.5238, -110, 0.909),
		settledRow(0.5238, -110, -1),
		settledRow(0.60, -150, 0.667),
	}
	cfg := MonteCarloConfig{Runs: 100, Seed: 7}

	first, err := RunMonteCarlo(rows, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RunMonteCarlo(rows, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.SimulatedMean != second.SimulatedMean || first.P5 != second.P5 || first.P95 != second.P95 {
		t.Fatal("identical seeds must produce identical simulations")
	}
}

func TestRunMonteCarloActualPnLIsLiteralSum(t *testing.T) {
	rows := []*models.MicroRow{
		settledRow(0.5238, -110, 0.909),
		settledRow(0.5238, -110, -1),
		settledRow(0.5238, -110, 0.909),
	}

	summary, err := RunMonteCarlo(rows, MonteCarloConfig{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 0.909 - 1 + 0.909
	if math.Abs(summary.ActualPnL-want) > 1e-9 {
		t.Fatalf("actual pnl %.4f, want %.4f", summary.ActualPnL, want)
	}
	if math.Abs(summary.LuckScore-(summary.ActualPnL-summary.SimulatedMean)) > 1e-9 {
		t.Fatal("luck score must be actual minus simulated mean")
	}
}

func TestRunMonteCarloDefaultsRuns(t *testing.T) {
	rows := []*models.MicroRow{settledRow(0.5238, -110, 0.909)}

	summary, err := RunMonteCarlo(rows, MonteCarloConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Runs != defaultMonteCarloRuns {
		t.Fatalf("expected %d default runs, got %d", defaultMonteCarloRuns, summary.Runs)
	}
	if summary.Assumptions == "" {
		t.Fatal("summary must state its assumptions")
	}
}

func TestRunMonteCarloExposesDistribution(t *testing.T) {
	rows := []*models.MicroRow{
		settledRow(0.5238, -110, 0.909),
		settledRow(0.60, -150, -1),
	}

	summary, err := RunMonteCarlo(rows, MonteCarloConfig{Runs: 250, Seed: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Distribution) != 250 {
		t.Fatalf("expected one total per run, got %d", len(summary.Distribution))
	}
	for i := 1; i < len(summary.Distribution); i++ {
		if summary.Distribution[i] < summary.Distribution[i-1] {
			t.Fatalf("distribution must sort ascending, broke at index %d", i)
		}
	}
	if summary.Distribution[0] > summary.P5 || summary.Distribution[len(summary.Distribution)-1] < summary.P95 {
		t.Fatal("distribution must bracket the reported percentiles")
	}
}

func TestRunMonteCarloFairCoinDistribution(t *testing.T) {
	// 100 even-money coin flips: simulated mean should hover near zero and
	// the percentile band should bracket it.
	rows := make([]*models.MicroRow, 0, 100)
	for i := 0; i < 100; i++ {
		pnl := 1.0
		if i%2 == 0 {
			pnl = -1.0
		}
		row := &models.MicroRow{GameID: uuid.New(), PnLUnits: &pnl}
		rows = append(rows, row)
	}

	summary, err := RunMonteCarlo(rows, MonteCarloConfig{Runs: 500, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(summary.SimulatedMean) > 3 {
		t.Fatalf("fair coin mean drifted: %.2f", summary.SimulatedMean)
	}
	if summary.P5 >= summary.P50 || summary.P50 >= summary.P95 {
		t.Fatalf("percentiles out of order: %.2f %.2f %.2f", summary.P5, summary.P50, summary.P95)
	}
	// Alternating wins and losses over an even count sum to zero, so the
	// luck score equals the negated simulated mean.
	if math.Abs(summary.ActualPnL) > 1e-9 {
		t.Fatalf("expected zero actual pnl, got %.4f", summary.ActualPnL)
	}
}

func TestWinProbabilityFallbackChain(t *testing.T) {
	implied := 0.6
	withOdds := &models.MicroRow{GameID: uuid.New(), ImpliedProb: &implied}
	withoutOdds := &models.MicroRow{GameID: uuid.New()}

	probs := winProbabilities([]*models.MicroRow{withOdds, withoutOdds})
	if probs[0] != 0.6 {
		t.Fatalf("row with implied must use it, got %.2f", probs[0])
	}
	if probs[1] != 0.6 {
		t.Fatalf("row without implied must fall back to the dataset mean, got %.2f", probs[1])
	}

	probs = winProbabilities([]*models.MicroRow{withoutOdds})
	if probs[0] != 0.5 {
		t.Fatalf("with no implied anywhere the fallback is 0.5, got %.2f", probs[0])
	}
}

func TestWinPayoutsEvenMoneyWithoutOdds(t *testing.T) {
	odds := -110.0
	priced := &models.MicroRow{GameID: uuid.New(), ClosingOdds: &odds}
	unpriced := &models.MicroRow{GameID: uuid.New()}

	payouts := winPayouts([]*models.MicroRow{priced, unpriced})
	if math.Abs(payouts[0]-0.9091) > 0.001 {
		t.Fatalf("-110 should pay about 0.909 units, got %.4f", payouts[0])
	}
	if payouts[1] != 1.0 {
		t.Fatalf("unpriced rows pay even money, got %.4f", payouts[1])
	}
}
