// Package dataset aligns computed feature rows with resolved targets and
// prunes columns that cannot carry signal.
package dataset

import (
	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

// CleaningOptions are independent gates evaluated in order; the first
// matching gate drops the row.
type CleaningOptions struct {
	DropIfNonNumeric   bool `json:"drop_if_non_numeric"`
	DropIfAnyNull      bool `json:"drop_if_any_null"`
	DropIfAllNull      bool `json:"drop_if_all_null"`
	MinNonNullCount    int  `json:"min_non_null_count"` // 0 disables the gate
}

// CleaningSummary reconciles exactly: RowsAfter + DroppedNonNumeric +
// DroppedNull == RawRows for every option combination.
type CleaningSummary struct {
	RawRows           int `json:"raw_rows"`
	RowsAfter         int `json:"rows_after_cleaning"`
	DroppedNonNumeric int `json:"dropped_non_numeric"`
	DroppedNull       int `json:"dropped_null"`
}

// Aligned is the cleaned, column-oriented dataset. Columns hold one entry
// per kept row; nil marks a null value.
type Aligned struct {
	Columns map[string][]*float64
	Target  []float64
	GameIDs []uuid.UUID
}

// Prepare aligns feature rows to target labels and applies the cleaning
// gates. Only rows whose game has a resolved target are considered. The
// result is deterministic for identical inputs.
func Prepare(rows []models.FeatureRow, featureNames []string, targets map[uuid.UUID]float64, opts CleaningOptions) (Aligned, CleaningSummary) {
	aligned := Aligned{Columns: make(map[string][]*float64, len(featureNames))}
	summary := CleaningSummary{}

	for _, name := range featureNames {
		aligned.Columns[name] = []*float64{}
	}

	for _, row := range rows {
		target, ok := targets[row.GameID]
		if !ok {
			continue
		}
		summary.RawRows++

		values, hasNonNumeric := coerceRow(row, featureNames)
		if dropped, reason := shouldDrop(values, hasNonNumeric, opts); dropped {
			switch reason {
			case dropNonNumeric:
				summary.DroppedNonNumeric++
			case dropNull:
				summary.DroppedNull++
			}
			continue
		}

		summary.RowsAfter++
		aligned.GameIDs = append(aligned.GameIDs, row.GameID)
		aligned.Target = append(aligned.Target, target)
		for i, name := range featureNames {
			aligned.Columns[name] = append(aligned.Columns[name], values[i])
		}
	}

	return aligned, summary
}

type dropReason int

const (
	dropNone dropReason = iota
	dropNonNumeric
	dropNull
)

// coerceRow converts a row's values to numeric, marking the row when any
// present value refuses coercion. Missing features are null, not non-numeric.
func coerceRow(row models.FeatureRow, featureNames []string) ([]*float64, bool) {
	values := make([]*float64, len(featureNames))
	hasNonNumeric := false
	for i, name := range featureNames {
		raw, ok := row.Values[name]
		if !ok || raw == nil {
			continue
		}
		if f, ok := models.CoerceNumeric(raw); ok {
			v := f
			values[i] = &v
		} else {
			hasNonNumeric = true
		}
	}
	return values, hasNonNumeric
}

func shouldDrop(values []*float64, hasNonNumeric bool, opts CleaningOptions) (bool, dropReason) {
	if opts.DropIfNonNumeric && hasNonNumeric {
		return true, dropNonNumeric
	}

	nonNull := 0
	for _, v := range values {
		if v != nil {
			nonNull++
		}
	}

	if opts.DropIfAnyNull && nonNull < len(values) {
		return true, dropNull
	}
	if opts.DropIfAllNull && nonNull == 0 {
		return true, dropNull
	}
	if opts.MinNonNullCount > 0 && nonNull < opts.MinNonNullCount {
		return true, dropNull
	}
	return false, dropNone
}
