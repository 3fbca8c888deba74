package backtest

import (
	"bytes"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/theory-engine/internal/models"
)

// EquityPoint is one calendar day of cumulative P&L over the selected bets.
type EquityPoint struct {
	Day        time.Time `json:"day"`
	DailyPnL   float64   `json:"daily_pnl"`
	Cumulative float64   `json:"cumulative"`
	Drawdown   float64   `json:"drawdown"`
}

// EquityCurve is the day-by-day P&L series of a bet tape.
type EquityCurve []EquityPoint

// BuildEquityCurve accumulates settled pnl_units per calendar day. Rows
// without a settled P&L contribute nothing.
func BuildEquityCurve(rows []*models.MicroRow) EquityCurve {
	byDay := map[time.Time]float64{}
	days := []time.Time{}
	for _, row := range rows {
		if row.PnLUnits == nil {
			continue
		}
		day := row.Day()
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] += *row.PnLUnits
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	curve := make(EquityCurve, 0, len(days))
	cumulative, peak := 0.0, 0.0
	for _, day := range days {
		cumulative += byDay[day]
		if cumulative > peak {
			peak = cumulative
		}
		curve = append(curve, EquityPoint{
			Day:        day,
			DailyPnL:   byDay[day],
			Cumulative: cumulative,
			Drawdown:   peak - cumulative,
		})
	}
	return curve
}

// ToCSV exports the curve for offline plotting.
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("day,daily_pnl,cumulative,drawdown\n")
	for _, point := range e {
		buf.WriteString(point.Day.Format("2006-01-02"))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.DailyPnL))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Cumulative))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
