// Package exposure applies daily and per-side caps to triggered rows and
// produces an auditable selected-bets tape.
package exposure

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/theory-engine/internal/models"
)

// Controls cap how much exposure a theory may take.
type Controls struct {
	MaxBetsPerDay        int      `json:"max_bets_per_day"`
	MaxBetsPerSidePerDay int      `json:"max_bets_per_side_per_day"`
	LineBandMin          *float64 `json:"line_band_min,omitempty"` // absolute spread value
	LineBandMax          *float64 `json:"line_band_max,omitempty"`
}

// DropReason records one row excluded from the tape.
type DropReason struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// Summary reports the shape of the selection and qualitative warnings when
// filtering materially changed the triggered set.
type Summary struct {
	Triggered     int            `json:"triggered"`
	Selected      int            `json:"selected"`
	Dropped       int            `json:"dropped"`
	ActiveDays    int            `json:"active_days"`
	AvgBetsPerDay float64        `json:"avg_bets_per_day"`
	PerSide       map[string]int `json:"per_side"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// Tape surfaces the strongest and weakest selected bets by edge for manual
// audit.
type Tape struct {
	Strongest []*models.MicroRow `json:"strongest"`
	Weakest   []*models.MicroRow `json:"weakest"`
}

const tapeDepth = 5

// Apply selects bets from triggered rows under the exposure controls. Every
// row, selected or not, gets a selected_bet annotation. Ordering is
// deterministic: within a day, edge descending, missing edge last, game id
// as the tie-break.
func Apply(rows []*models.MicroRow, controls Controls, def models.TargetDefinition) ([]*models.MicroRow, Summary, []DropReason) {
	summary := Summary{PerSide: map[string]int{}}
	dropped := []DropReason{}

	candidates := []*models.MicroRow{}
	for _, row := range rows {
		annotate(row, false)
		if !row.TriggerFlag {
			continue
		}
		summary.Triggered++
		if reason, drop := bandDrop(row, controls, def); drop {
			dropped = append(dropped, DropReason{GameID: row.GameID.String(), Reason: reason})
			continue
		}
		candidates = append(candidates, row)
	}

	bandDropped := len(dropped)
	selected := selectPerDay(candidates, controls, &dropped)

	for _, row := range selected {
		annotate(row, true)
		summary.PerSide[string(row.Meta.Side)]++
	}
	summary.Selected = len(selected)
	summary.Dropped = len(dropped)
	days := activeDays(selected)
	summary.ActiveDays = days
	if days > 0 {
		summary.AvgBetsPerDay = float64(len(selected)) / float64(days)
	}
	summary.Warnings = warnings(summary, bandDropped)

	return selected, summary, dropped
}

// BuildTape returns the strongest and up to five weakest selected bets by
// edge.
func BuildTape(selected []*models.MicroRow) Tape {
	sorted := append([]*models.MicroRow{}, selected...)
	sort.SliceStable(sorted, func(i, j int) bool { return edgeOf(sorted[i]) > edgeOf(sorted[j]) })

	tape := Tape{}
	for i := 0; i < len(sorted) && i < tapeDepth; i++ {
		tape.Strongest = append(tape.Strongest, sorted[i])
	}
	for i := len(sorted) - 1; i >= 0 && len(tape.Weakest) < tapeDepth; i-- {
		if i < len(tape.Strongest) {
			break
		}
		tape.Weakest = append(tape.Weakest, sorted[i])
	}
	return tape
}

// bandDrop applies the spread line-band filter: rows missing a line or with
// an absolute line outside the band are dropped with reasons.
func bandDrop(row *models.MicroRow, controls Controls, def models.TargetDefinition) (string, bool) {
	if def.MarketType != models.MarketSpread {
		return "", false
	}
	if controls.LineBandMin == nil && controls.LineBandMax == nil {
		return "", false
	}
	if row.ClosingLine == nil {
		return "line band set but closing line missing", true
	}
	line := math.Abs(*row.ClosingLine)
	if controls.LineBandMin != nil && line < *controls.LineBandMin {
		return fmt.Sprintf("line %.1f below band minimum %.1f", line, *controls.LineBandMin), true
	}
	if controls.LineBandMax != nil && line > *controls.LineBandMax {
		return fmt.Sprintf("line %.1f above band maximum %.1f", line, *controls.LineBandMax), true
	}
	return "", false
}

func selectPerDay(candidates []*models.MicroRow, controls Controls, dropped *[]DropReason) []*models.MicroRow {
	byDay := map[time.Time][]*models.MicroRow{}
	days := []time.Time{}
	for _, row := range candidates {
		day := row.Day()
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], row)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	selected := []*models.MicroRow{}
	for _, day := range days {
		dayRows := byDay[day]
		sort.SliceStable(dayRows, func(i, j int) bool {
			ei, ej := edgeOf(dayRows[i]), edgeOf(dayRows[j])
			if ei != ej {
				return ei > ej
			}
			return dayRows[i].GameID.String() < dayRows[j].GameID.String()
		})

		if controls.MaxBetsPerDay > 0 && len(dayRows) > controls.MaxBetsPerDay {
			for _, row := range dayRows[controls.MaxBetsPerDay:] {
				*dropped = append(*dropped, DropReason{GameID: row.GameID.String(), Reason: "daily cap reached"})
			}
			dayRows = dayRows[:controls.MaxBetsPerDay]
		}
		dayRows = capPerSide(dayRows, controls.MaxBetsPerSidePerDay, dropped)
		selected = append(selected, dayRows...)
	}
	return selected
}

// capPerSide enforces the per-side cap within the already day-capped list,
// preserving order.
func capPerSide(dayRows []*models.MicroRow, cap int, dropped *[]DropReason) []*models.MicroRow {
	if cap <= 0 {
		return dayRows
	}
	counts := map[string]int{}
	kept := make([]*models.MicroRow, 0, len(dayRows))
	for _, row := range dayRows {
		side := string(row.Meta.Side)
		if counts[side] >= cap {
			*dropped = append(*dropped, DropReason{GameID: row.GameID.String(), Reason: fmt.Sprintf("per-side cap reached for %s", side)})
			continue
		}
		counts[side]++
		kept = append(kept, row)
	}
	return kept
}

func warnings(summary Summary, bandDropped int) []string {
	out := []string{}
	if summary.Triggered > 0 && summary.Selected*2 < summary.Triggered {
		out = append(out, fmt.Sprintf(
			"exposure caps removed %d of %d triggered bets; results reflect the caps as much as the theory",
			summary.Triggered-summary.Selected, summary.Triggered))
	}
	if bandDropped > 0 {
		out = append(out, fmt.Sprintf(
			"spread line band removed %d candidates; a lift here may be a filtering artifact, not found edge",
			bandDropped))
	}
	return out
}

func annotate(row *models.MicroRow, selected bool) {
	v := selected
	row.SelectedBet = &v
}

// activeDays counts distinct betting days among the selected rows.
func activeDays(rows []*models.MicroRow) int {
	seen := map[time.Time]struct{}{}
	for _, row := range rows {
		seen[row.Day()] = struct{}{}
	}
	return len(seen)
}

// edgeOf sorts missing edge last.
func edgeOf(row *models.MicroRow) float64 {
	if row.EdgeVsImplied == nil {
		return math.Inf(-1)
	}
	return *row.EdgeVsImplied
}
