package backtest

import (
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/theory"
)

const defaultMonteCarloRuns = 200

// MonteCarloConfig configures the simulation. Runs defaults to 200; a fixed
// Seed makes the simulation reproducible.
type MonteCarloConfig struct {
	Runs int   `json:"runs"`
	Seed int64 `json:"seed"`
}

// MonteCarloSummary compares the realized P&L of a row set against the
// distribution of simulated P&L under an odds-implied probability model.
// Distribution holds one total per simulated run, sorted ascending.
type MonteCarloSummary struct {
	Runs          int       `json:"runs"`
	SimulatedMean float64   `json:"simulated_mean"`
	P5            float64   `json:"p5"`
	P50           float64   `json:"p50"`
	P95           float64   `json:"p95"`
	ActualPnL     float64   `json:"actual_pnl"`
	LuckScore     float64   `json:"luck_score"`
	Distribution  []float64 `json:"distribution"`
	Assumptions   string    `json:"assumptions"`
}

const monteCarloAssumptions = "flat 1-unit stakes; win probability taken from closing implied probability " +
	"(dataset mean implied, then 0.5, when missing); trials drawn independently, so correlation " +
	"across same-day bets is not modeled"

// RunMonteCarlo resamples each row's outcome as a Bernoulli trial at its
// implied win probability and accumulates flat 1-unit P&L per run. ActualPnL
// is always the literal sum of the rows' settled pnl_units.
func RunMonteCarlo(rows []*models.MicroRow, cfg MonteCarloConfig) (MonteCarloSummary, error) {
	runs := cfg.Runs
	if runs <= 0 {
		runs = defaultMonteCarloRuns
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	probs := winProbabilities(rows)
	payouts := winPayouts(rows)

	totals := make([]float64, runs)
	for r := 0; r < runs; r++ {
		total := 0.0
		for i := range rows {
			if rng.Float64() < probs[i] {
				total += payouts[i]
			} else {
				total -= 1
			}
		}
		totals[r] = total
	}

	mean, err := stats.Mean(totals)
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p5, err := stats.Percentile(totals, 5)
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p50, err := stats.Median(totals)
	if err != nil {
		return MonteCarloSummary{}, err
	}
	p95, err := stats.Percentile(totals, 95)
	if err != nil {
		return MonteCarloSummary{}, err
	}

	actual := 0.0
	for _, row := range rows {
		if row.PnLUnits != nil {
			actual += *row.PnLUnits
		}
	}

	sort.Float64s(totals)

	return MonteCarloSummary{
		Runs:          runs,
		SimulatedMean: mean,
		P5:            p5,
		P50:           p50,
		P95:           p95,
		ActualPnL:     actual,
		LuckScore:     actual - mean,
		Distribution:  totals,
		Assumptions:   monteCarloAssumptions,
	}, nil
}

// winProbabilities resolves each row's trial probability: its own implied
// probability, then the dataset's mean implied probability, then 0.5.
func winProbabilities(rows []*models.MicroRow) []float64 {
	impliedSum, impliedN := 0.0, 0
	for _, row := range rows {
		if row.ImpliedProb != nil {
			impliedSum += *row.ImpliedProb
			impliedN++
		}
	}
	fallback := 0.5
	if impliedN > 0 {
		fallback = impliedSum / float64(impliedN)
	}

	probs := make([]float64, len(rows))
	for i, row := range rows {
		if row.ImpliedProb != nil {
			probs[i] = *row.ImpliedProb
		} else {
			probs[i] = fallback
		}
	}
	return probs
}

// winPayouts returns the per-row win payout in units. Rows without odds pay
// even money.
func winPayouts(rows []*models.MicroRow) []float64 {
	payouts := make([]float64, len(rows))
	for i, row := range rows {
		payouts[i] = 1.0
		if row.ClosingOdds != nil {
			payouts[i] = theory.DecimalOdds(*row.ClosingOdds) - 1
		}
	}
	return payouts
}
