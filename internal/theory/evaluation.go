package theory

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/yourusername/theory-engine/internal/models"
)

// Verdict classifies the observed delta against fixed absolute thresholds.
type Verdict string

const (
	VerdictNoise       Verdict = "noise"
	VerdictWeak        Verdict = "weak"
	VerdictInteresting Verdict = "interesting"
)

// Verdict thresholds on |delta|. Stat targets are measured in the target's
// units; market targets in probability points.
const (
	statNoiseBelow         = 0.5
	statInterestingAbove   = 2.0
	marketNoiseBelow       = 0.02
	marketInterestingAbove = 0.05
)

// Dispersion summarizes the spread of a numeric cohort. Only populated for
// stat targets.
type Dispersion struct {
	Std float64 `json:"std"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Q25 float64 `json:"q25"`
	Q50 float64 `json:"q50"`
	Q75 float64 `json:"q75"`
}

// StabilityCell is one season's or month's aggregate.
type StabilityCell struct {
	Label      string  `json:"label"`
	SampleSize int     `json:"sample_size"`
	Aggregate  float64 `json:"aggregate"`
}

// Evaluation compares a cohort aggregate against a baseline and reports
// stability across seasons and months. Recomputed fresh per request.
type Evaluation struct {
	TargetName string           `json:"target_name"`
	SampleSize int              `json:"sample_size"`
	Aggregate  float64          `json:"aggregate"` // mean for stat, hit-rate for market
	Baseline   float64          `json:"baseline"`
	Delta      float64          `json:"delta"`
	Dispersion *Dispersion      `json:"dispersion,omitempty"`
	BySeason   []StabilityCell  `json:"by_season"`
	ByMonth    []StabilityCell  `json:"by_month"`
	Verdict    Verdict          `json:"verdict"`
	Insight    string           `json:"insight,omitempty"`
}

// Evaluate aggregates a micro-row cohort. An empty cohort is a valid,
// explained result, never an error.
func Evaluate(rows []*models.MicroRow, def models.TargetDefinition) Evaluation {
	eval := Evaluation{TargetName: def.TargetName, Verdict: VerdictNoise}
	if len(rows) == 0 {
		eval.Insight = "no games matched the theory's population; nothing to evaluate"
		return eval
	}

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.TargetValue)
	}
	eval.SampleSize = len(values)

	if def.IsMarket() {
		eval.Aggregate = hitRate(values)
		eval.Baseline = meanImplied(rows)
	} else {
		eval.Aggregate, _ = stats.Mean(values)
		// The cohort mean is reused as its own baseline: an
		// internal-consistency check rather than an external comparison.
		eval.Baseline = eval.Aggregate
		eval.Dispersion = dispersion(values)
	}
	eval.Delta = eval.Aggregate - eval.Baseline
	eval.Verdict = classify(eval.Delta, def)
	eval.BySeason = stability(rows, def, func(r *models.MicroRow) string { return r.Meta.Season })
	eval.ByMonth = stability(rows, def, func(r *models.MicroRow) string { return r.Meta.Month })
	eval.Insight = insightFor(eval, def)
	return eval
}

func classify(delta float64, def models.TargetDefinition) Verdict {
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	noise, interesting := statNoiseBelow, statInterestingAbove
	if def.IsMarket() {
		noise, interesting = marketNoiseBelow, marketInterestingAbove
	}
	switch {
	case abs < noise:
		return VerdictNoise
	case abs > interesting:
		return VerdictInteresting
	}
	return VerdictWeak
}

func hitRate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	hits := 0
	for _, v := range values {
		if v == 1.0 {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}

// meanImplied averages implied probability over rows that carry one; rows
// without a market snapshot do not contribute a fabricated probability.
func meanImplied(rows []*models.MicroRow) float64 {
	implieds := []float64{}
	for _, row := range rows {
		if row.ImpliedProb != nil {
			implieds = append(implieds, *row.ImpliedProb)
		}
	}
	if len(implieds) == 0 {
		return 0
	}
	mean, _ := stats.Mean(implieds)
	return mean
}

func dispersion(values []float64) *Dispersion {
	d := &Dispersion{}
	d.Std, _ = stats.StandardDeviationPopulation(values)
	d.Min, _ = stats.Min(values)
	d.Max, _ = stats.Max(values)
	d.Q25, _ = stats.Percentile(values, 25)
	d.Q50, _ = stats.Median(values)
	d.Q75, _ = stats.Percentile(values, 75)
	return d
}

func stability(rows []*models.MicroRow, def models.TargetDefinition, key func(*models.MicroRow) string) []StabilityCell {
	groups := map[string][]float64{}
	for _, row := range rows {
		k := key(row)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], row.TargetValue)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	cells := make([]StabilityCell, 0, len(labels))
	for _, label := range labels {
		values := groups[label]
		agg := 0.0
		if def.IsMarket() {
			agg = hitRate(values)
		} else {
			agg, _ = stats.Mean(values)
		}
		cells = append(cells, StabilityCell{Label: label, SampleSize: len(values), Aggregate: agg})
	}
	return cells
}

func insightFor(eval Evaluation, def models.TargetDefinition) string {
	kind := "mean"
	if def.IsMarket() {
		kind = "hit rate"
	}
	return fmt.Sprintf("%s %.4f vs baseline %.4f over %d games (%s)",
		kind, eval.Aggregate, eval.Baseline, eval.SampleSize, eval.Verdict)
}
