package dataset

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

func fixtureRows() ([]models.FeatureRow, map[uuid.UUID]float64) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	rows := []models.FeatureRow{
		{GameID: ids[0], Values: map[string]any{"pace": 70.0, "efficiency": 1.05}},
		{GameID: ids[1], Values: map[string]any{"pace": 68.0}},                        // efficiency missing
		{GameID: ids[2], Values: map[string]any{"pace": "fast", "efficiency": 0.98}}, // non-numeric pace
		{GameID: ids[3], Values: map[string]any{}},                                   // everything missing
	}
	targets := map[uuid.UUID]float64{}
	for i, id := range ids {
		targets[id] = float64(i % 2)
	}
	return rows, targets
}

func TestPrepareCleaningReconciles(t *testing.T) {
	rows, targets := fixtureRows()
	names := []string{"pace", "efficiency"}

	tests := []struct {
		name string
		opts CleaningOptions
	}{
		{"no gates", CleaningOptions{}},
		{"drop non numeric", CleaningOptions{DropIfNonNumeric: true}},
		{"drop any null", CleaningOptions{DropIfAnyNull: true}},
		{"drop all null", CleaningOptions{DropIfAllNull: true}},
		{"min non null", CleaningOptions{MinNonNullCount: 2}},
		{"everything", CleaningOptions{DropIfNonNumeric: true, DropIfAnyNull: true, DropIfAllNull: true, MinNonNullCount: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, summary := Prepare(rows, names, targets, tt.opts)
			got := summary.RowsAfter + summary.DroppedNonNumeric + summary.DroppedNull
			if got != summary.RawRows {
				t.Fatalf("summary does not reconcile: %d + %d + %d != %d",
					summary.RowsAfter, summary.DroppedNonNumeric, summary.DroppedNull, summary.RawRows)
			}
		})
	}
}

func TestPrepareSkipsUnresolvedTargets(t *testing.T) {
	rows, targets := fixtureRows()
	delete(targets, rows[0].GameID)

	aligned, summary := Prepare(rows, []string{"pace"}, targets, CleaningOptions{})
	if summary.RawRows != 3 {
		t.Fatalf("rows without a target never enter the raw count, got %d", summary.RawRows)
	}
	for _, id := range aligned.GameIDs {
		if id == rows[0].GameID {
			t.Fatal("unresolved game leaked into the dataset")
		}
	}
}

func TestPrepareNonNumericGate(t *testing.T) {
	rows, targets := fixtureRows()

	aligned, summary := Prepare(rows, []string{"pace", "efficiency"}, targets, CleaningOptions{DropIfNonNumeric: true})
	if summary.DroppedNonNumeric != 1 {
		t.Fatalf("exactly one row carries a non-numeric value, got %d", summary.DroppedNonNumeric)
	}
	if summary.RowsAfter != 3 || len(aligned.GameIDs) != 3 {
		t.Fatalf("expected 3 kept rows, got %d", summary.RowsAfter)
	}
}

func TestPrepareAnyNullGate(t *testing.T) {
	rows, targets := fixtureRows()

	_, summary := Prepare(rows, []string{"pace", "efficiency"}, targets, CleaningOptions{DropIfAnyNull: true})
	// The "fast" pace row also drops: a value that refuses coercion is a
	// null in the aligned dataset.
	if summary.RowsAfter != 1 {
		t.Fatalf("only the dense row survives, got %d", summary.RowsAfter)
	}
}

func TestPrepareColumnsAlignWithRows(t *testing.T) {
	rows, targets := fixtureRows()
	names := []string{"pace", "efficiency"}

	aligned, summary := Prepare(rows, names, targets, CleaningOptions{})
	for _, name := range names {
		if len(aligned.Columns[name]) != summary.RowsAfter {
			t.Fatalf("column %s has %d entries for %d rows", name, len(aligned.Columns[name]), summary.RowsAfter)
		}
	}
	if len(aligned.Target) != summary.RowsAfter || len(aligned.GameIDs) != summary.RowsAfter {
		t.Fatal("targets and game ids must align with kept rows")
	}
}
