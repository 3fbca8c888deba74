package dataset

import (
	"testing"

	"github.com/google/uuid"
)

func column(values ...float64) []*float64 {
	col := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		col[i] = &v
	}
	return col
}

func alignedWith(columns map[string][]*float64) Aligned {
	aligned := Aligned{Columns: columns}
	n := 0
	for _, col := range columns {
		if len(col) > n {
			n = len(col)
		}
	}
	for i := 0; i < n; i++ {
		aligned.Target = append(aligned.Target, float64(i%2))
		aligned.GameIDs = append(aligned.GameIDs, uuid.New())
	}
	return aligned
}

func dropReasons(dropped []DroppedColumn) map[string]string {
	out := map[string]string{}
	for _, d := range dropped {
		out[d.Name] = d.Reason
	}
	return out
}

func TestPruneDropsByReason(t *testing.T) {
	one := 1.0
	aligned := alignedWith(map[string][]*float64{
		"good":     column(1, 2, 3, 4, 5, 6, 7, 8),
		"constant": column(5, 5, 5, 5, 5, 5, 5, 5),
		"sparse":   {nil, nil, nil, nil, &one, nil, nil, nil},
	})
	names := []string{"good", "constant", "sparse", "absent"}

	kept, dropped := Prune(aligned, names)
	if len(kept) != 1 || kept[0] != "good" {
		t.Fatalf("expected only the good column kept, got %v", kept)
	}

	reasons := dropReasons(dropped)
	if reasons["constant"] != "near_constant" {
		t.Fatalf("constant column reason %q", reasons["constant"])
	}
	if reasons["sparse"] != "too_few_values" {
		t.Fatalf("sparse column reason %q", reasons["sparse"])
	}
	if reasons["absent"] != "missing_column" {
		t.Fatalf("absent column reason %q", reasons["absent"])
	}
}

func TestPruneDuplicateKeepsFirst(t *testing.T) {
	aligned := alignedWith(map[string][]*float64{
		"original": column(1, 2, 3, 4, 5, 6),
		"copy":     column(1, 2, 3, 4, 5, 6),
	})

	kept, dropped := Prune(aligned, []string{"original", "copy"})
	if len(kept) != 1 || kept[0] != "original" {
		t.Fatalf("first occurrence wins, got %v", kept)
	}
	if len(dropped) != 1 || dropped[0].Reason != "duplicate_of" || dropped[0].Partner != "original" {
		t.Fatalf("duplicate drop must name its partner: %+v", dropped)
	}
}

func TestPruneCollinearDropsLaterColumn(t *testing.T) {
	base := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	scaled := make([]float64, len(base))
	for i, v := range base {
		scaled[i] = v*2 + 1 // perfectly correlated, not a duplicate
	}
	independent := []float64{3, 1, 4, 1, 5, 9, 2, 6}

	aligned := alignedWith(map[string][]*float64{
		"base":        column(base...),
		"scaled":      column(scaled...),
		"independent": column(independent...),
	})

	kept, dropped := Prune(aligned, []string{"base", "scaled", "independent"})
	if len(kept) != 2 {
		t.Fatalf("expected base and independent kept, got %v", kept)
	}
	reasons := dropReasons(dropped)
	if reasons["scaled"] != "collinear_with" {
		t.Fatalf("scaled column reason %q", reasons["scaled"])
	}
	for _, d := range dropped {
		if d.Name == "scaled" && d.Partner != "base" {
			t.Fatalf("collinear drop must name the surviving partner, got %q", d.Partner)
		}
	}
}

func TestPruneNullsExcludedFromPairwise(t *testing.T) {
	a := column(1, 2, 3, 4, 5, 6, 7)
	b := column(1, 2, 3, 4, 5, 6, 7)
	b[3] = nil // pairwise scan must skip the null row, not misalign

	aligned := alignedWith(map[string][]*float64{"a": a, "b": b})
	kept, dropped := Prune(aligned, []string{"a", "b"})
	if len(kept) != 1 {
		t.Fatalf("the null-bearing twin is still collinear, got kept=%v dropped=%+v", kept, dropped)
	}
}
