package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
)

const (
	minNonNullForModeling = 5
	nearConstantStd       = 1e-9
	duplicateRounding     = 6
	collinearityThreshold = 0.98
	// collinearityCap bounds the pairwise scan for cost control.
	collinearityCap = 50
)

// DroppedColumn records one pruned feature with its reason and, for
// collinearity, the partner and correlation.
type DroppedColumn struct {
	Name        string  `json:"name"`
	Reason      string  `json:"reason"`
	Partner     string  `json:"partner,omitempty"`
	Correlation float64 `json:"correlation,omitempty"`
}

// Prune removes columns that cannot inform a model, in a fixed order:
// missing, sparse, near-constant, exact duplicates (first occurrence kept),
// then highly collinear pairs over a capped subset (later index dropped).
func Prune(aligned Aligned, names []string) ([]string, []DroppedColumn) {
	kept := make([]string, 0, len(names))
	dropped := []DroppedColumn{}

	signatures := make(map[string]string)
	for _, name := range names {
		col, ok := aligned.Columns[name]
		if !ok {
			dropped = append(dropped, DroppedColumn{Name: name, Reason: "missing_column"})
			continue
		}
		values := nonNull(col)
		if len(values) < minNonNullForModeling {
			dropped = append(dropped, DroppedColumn{Name: name, Reason: "too_few_values"})
			continue
		}
		if std, err := stats.StandardDeviationPopulation(values); err != nil || std < nearConstantStd {
			dropped = append(dropped, DroppedColumn{Name: name, Reason: "near_constant"})
			continue
		}
		sig := signature(col)
		if first, ok := signatures[sig]; ok {
			dropped = append(dropped, DroppedColumn{Name: name, Reason: "duplicate_of", Partner: first})
			continue
		}
		signatures[sig] = name
		kept = append(kept, name)
	}

	kept, collinear := pruneCollinear(aligned, kept)
	dropped = append(dropped, collinear...)
	return kept, dropped
}

// pruneCollinear drops the later-indexed column of any pair with Pearson
// correlation at or above the threshold, scanning only a capped prefix.
func pruneCollinear(aligned Aligned, names []string) ([]string, []DroppedColumn) {
	limit := len(names)
	if limit > collinearityCap {
		limit = collinearityCap
	}

	removed := make(map[string]DroppedColumn)
	for i := 0; i < limit; i++ {
		if _, gone := removed[names[i]]; gone {
			continue
		}
		for j := i + 1; j < limit; j++ {
			if _, gone := removed[names[j]]; gone {
				continue
			}
			corr, ok := pairwisePearson(aligned.Columns[names[i]], aligned.Columns[names[j]])
			if !ok {
				continue
			}
			if math.Abs(corr) >= collinearityThreshold {
				removed[names[j]] = DroppedColumn{
					Name:        names[j],
					Reason:      "collinear_with",
					Partner:     names[i],
					Correlation: corr,
				}
			}
		}
	}

	kept := make([]string, 0, len(names))
	dropped := make([]DroppedColumn, 0, len(removed))
	for _, name := range names {
		if d, gone := removed[name]; gone {
			dropped = append(dropped, d)
			continue
		}
		kept = append(kept, name)
	}
	return kept, dropped
}

// pairwisePearson correlates two columns over rows where both are non-null.
func pairwisePearson(a, b []*float64) (float64, bool) {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if i >= len(b) {
			break
		}
		if a[i] == nil || b[i] == nil {
			continue
		}
		xs = append(xs, *a[i])
		ys = append(ys, *b[i])
	}
	if len(xs) < minNonNullForModeling {
		return 0, false
	}
	corr, err := stats.Pearson(xs, ys)
	if err != nil || math.IsNaN(corr) {
		return 0, false
	}
	return corr, true
}

func nonNull(col []*float64) []float64 {
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// signature builds a stable identity for a column's value vector rounded to
// six decimals; nulls are part of the identity.
func signature(col []*float64) string {
	var b strings.Builder
	for _, v := range col {
		if v == nil {
			b.WriteString("_|")
			continue
		}
		fmt.Fprintf(&b, "%.*f|", duplicateRounding, *v)
	}
	return b.String()
}
