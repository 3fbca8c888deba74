package engine

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/yourusername/theory-engine/internal/models"
)

var microRowHeader = []string{
	"game_id", "game_date", "season", "side",
	"target_name", "target_value",
	"closing_line", "closing_odds", "implied_prob", "model_prob", "edge_vs_implied",
	"outcome", "pnl_units",
	"trigger_flag", "selected_bet", "trigger_reasons",
}

// MicroRowsCSV renders the flat delimited micro-row table persisted per run.
// It is the durable source of truth for offline audit; column order is stable.
func MicroRowsCSV(rows []*models.MicroRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(microRowHeader)
	for _, row := range rows {
		record := []string{
			row.GameID.String(),
			row.Meta.GameDate.Format("2006-01-02"),
			row.Meta.Season,
			string(row.Meta.Side),
			row.TargetName,
			formatFloat(row.TargetValue),
			formatFloatPtr(row.ClosingLine),
			formatFloatPtr(row.ClosingOdds),
			formatFloatPtr(row.ImpliedProb),
			formatFloatPtr(row.ModelProb),
			formatFloatPtr(row.EdgeVsImplied),
			formatOutcome(row.Outcome),
			formatFloatPtr(row.PnLUnits),
			strconv.FormatBool(row.TriggerFlag),
			formatBoolPtr(row.SelectedBet),
			strings.Join(row.TriggerReasons, "; "),
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatOutcome(o *models.Outcome) string {
	if o == nil {
		return ""
	}
	return string(*o)
}
