package theory

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/yourusername/theory-engine/internal/dataset"
	"github.com/yourusername/theory-engine/internal/models"
)

const (
	candidateFeatureCap = 25
	candidateResultCap  = 10
	defaultMinSample    = 150
	defaultMinLift      = 0.02
)

// CandidateOptions bound the quantile-bucket search.
type CandidateOptions struct {
	MinSampleSize int
	MinLift       float64
}

// Candidate is an unverified draft hypothesis surfaced by the quantile
// search. It is a statistical observation, never a claim of causality.
type Candidate struct {
	Feature    string  `json:"feature"`
	Condition  string  `json:"condition"`
	SampleSize int     `json:"sample_size"`
	HitRate    float64 `json:"hit_rate"`
	Lift       float64 `json:"lift"`
	Framing    string  `json:"framing"`
}

// GenerateCandidates scans up to the first 25 features for quartile
// sub-populations whose hit rate lifts meaningfully over the baseline.
// Results are sorted by |lift| descending and capped at 10.
func GenerateCandidates(aligned dataset.Aligned, names []string, baselineRate float64, def models.TargetDefinition, opts CandidateOptions) []Candidate {
	if opts.MinSampleSize <= 0 {
		opts.MinSampleSize = defaultMinSample
	}
	if opts.MinLift <= 0 {
		opts.MinLift = defaultMinLift
	}

	limit := len(names)
	if limit > candidateFeatureCap {
		limit = candidateFeatureCap
	}

	candidates := []Candidate{}
	for _, name := range names[:limit] {
		if c, ok := scanFeature(aligned, name, baselineRate, def, opts); ok {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return math.Abs(candidates[i].Lift) > math.Abs(candidates[j].Lift)
	})
	if len(candidates) > candidateResultCap {
		candidates = candidates[:candidateResultCap]
	}
	return candidates
}

func scanFeature(aligned dataset.Aligned, name string, baselineRate float64, def models.TargetDefinition, opts CandidateOptions) (Candidate, bool) {
	col, ok := aligned.Columns[name]
	if !ok {
		return Candidate{}, false
	}

	// Direction: does the feature run higher when the target hits?
	var hitVals, missVals, all []float64
	type pair struct {
		value  float64
		target float64
	}
	pairs := []pair{}
	for i, v := range col {
		if v == nil || i >= len(aligned.Target) {
			continue
		}
		all = append(all, *v)
		pairs = append(pairs, pair{value: *v, target: aligned.Target[i]})
		if aligned.Target[i] == 1.0 {
			hitVals = append(hitVals, *v)
		} else {
			missVals = append(missVals, *v)
		}
	}
	if len(hitVals) == 0 || len(missVals) == 0 {
		return Candidate{}, false
	}

	hitMean, _ := stats.Mean(hitVals)
	missMean, _ := stats.Mean(missVals)
	topQuartile := hitMean >= missMean

	cut, err := stats.Percentile(all, 75)
	condition := fmt.Sprintf("%s >= %.4f (top quartile)", name, cut)
	if !topQuartile {
		cut, err = stats.Percentile(all, 25)
		condition = fmt.Sprintf("%s <= %.4f (bottom quartile)", name, cut)
	}
	if err != nil {
		return Candidate{}, false
	}

	var subset []float64
	for _, p := range pairs {
		if topQuartile && p.value >= cut {
			subset = append(subset, p.target)
		} else if !topQuartile && p.value <= cut {
			subset = append(subset, p.target)
		}
	}
	if len(subset) < opts.MinSampleSize {
		return Candidate{}, false
	}

	rate := hitRate(subset)
	lift := rate - baselineRate
	if math.Abs(lift) < opts.MinLift {
		return Candidate{}, false
	}

	framing := fmt.Sprintf(
		"When %s, %s hits %.1f%% of the time over %d games (%+.1f points vs the %.1f%% baseline). Draft signal only; not validated.",
		condition, def.TargetName, rate*100, len(subset), lift*100, baselineRate*100,
	)
	return Candidate{
		Feature:    name,
		Condition:  condition,
		SampleSize: len(subset),
		HitRate:    rate,
		Lift:       lift,
		Framing:    framing,
	}, true
}
