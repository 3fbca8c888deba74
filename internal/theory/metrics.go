package theory

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/yourusername/theory-engine/internal/models"
)

// ReasonMissingOdds marks metrics unavailable because no row carried a
// market snapshot.
const ReasonMissingOdds = "missing_odds"

// Metrics are market-only betting statistics over a micro-row cohort. Stat
// targets have no betting semantics, so they get no Metrics at all.
type Metrics struct {
	SampleSize        int     `json:"sample_size"`
	CoverRate         float64 `json:"cover_rate"`
	BaselineCoverRate float64 `json:"baseline_cover_rate"`
	AvgImpliedProb    float64 `json:"avg_implied_prob"`
	EVvsImplied       float64 `json:"ev_vs_implied"`
	TotalPnLUnits     float64 `json:"total_pnl_units"`
	ROIUnits          float64 `json:"roi_units"`
	MaxDrawdownUnits  float64 `json:"max_drawdown_units"`
	SharpeLike        float64 `json:"sharpe_like"`
}

// ComputeMetrics aggregates betting statistics over the rows that carry
// odds. Returns nil with a reason when the target is a stat target or no row
// has a market snapshot.
func ComputeMetrics(rows []*models.MicroRow, def models.TargetDefinition, baselineCoverRate float64) (*Metrics, string) {
	if !def.IsMarket() {
		return nil, "stat target: betting metrics not defined"
	}

	pnls := []float64{}
	implieds := []float64{}
	wins := 0
	settled := 0
	for _, row := range rows {
		if row.ImpliedProb == nil {
			continue
		}
		implieds = append(implieds, *row.ImpliedProb)
		if row.Outcome == nil || *row.Outcome == models.OutcomePush {
			continue
		}
		settled++
		if *row.Outcome == models.OutcomeWin {
			wins++
		}
		if row.PnLUnits != nil {
			pnls = append(pnls, *row.PnLUnits)
		}
	}

	if len(implieds) == 0 {
		return nil, ReasonMissingOdds
	}

	m := &Metrics{
		SampleSize:        settled,
		BaselineCoverRate: baselineCoverRate,
	}
	if settled > 0 {
		m.CoverRate = float64(wins) / float64(settled)
	}
	m.AvgImpliedProb, _ = stats.Mean(implieds)
	m.EVvsImplied = m.CoverRate - m.AvgImpliedProb

	if len(pnls) > 0 {
		m.TotalPnLUnits, _ = stats.Sum(pnls)
		m.ROIUnits = m.TotalPnLUnits / float64(len(pnls))
		m.MaxDrawdownUnits = maxDrawdown(pnls)
		m.SharpeLike = sharpeLike(pnls)
	}
	return m, ""
}

// maxDrawdown is the largest peak-to-trough fall of the running P&L.
func maxDrawdown(pnls []float64) float64 {
	running := 0.0
	peak := 0.0
	maxDD := 0.0
	for _, p := range pnls {
		running += p
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// sharpeLike is mean over std of per-bet P&L; no annualization since bets
// are not periodic returns.
func sharpeLike(pnls []float64) float64 {
	mean, err := stats.Mean(pnls)
	if err != nil {
		return 0
	}
	std, err := stats.StandardDeviationPopulation(pnls)
	if err != nil || std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std
}
