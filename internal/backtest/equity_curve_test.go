package backtest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

func pnlRow(day time.Time, pnl float64) *models.MicroRow {
	return &models.MicroRow{
		GameID:   uuid.New(),
		PnLUnits: &pnl,
		Meta:     models.RowMeta{GameDate: day},
	}
}

func TestBuildEquityCurve(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	d3 := d1.AddDate(0, 0, 2)

	rows := []*models.MicroRow{
		pnlRow(d2, -2),
		pnlRow(d1, 1),
		pnlRow(d1, 1),
		pnlRow(d3, 0.5),
		{GameID: uuid.New(), Meta: models.RowMeta{GameDate: d3}}, // unsettled
	}

	curve := BuildEquityCurve(rows)

	if len(curve) != 3 {
		t.Fatalf("expected 3 days, got %d", len(curve))
	}
	if curve[0].Cumulative != 2 {
		t.Fatalf("day 1 cumulative %.1f, want 2", curve[0].Cumulative)
	}
	if curve[1].Cumulative != 0 || curve[1].Drawdown != 2 {
		t.Fatalf("day 2 should sit 2 units under the peak, got cum=%.1f dd=%.1f", curve[1].Cumulative, curve[1].Drawdown)
	}
	if curve[2].Cumulative != 0.5 || curve[2].Drawdown != 1.5 {
		t.Fatalf("day 3 wrong: cum=%.1f dd=%.1f", curve[2].Cumulative, curve[2].Drawdown)
	}
	if !curve[0].Day.Before(curve[1].Day) {
		t.Fatal("curve must be in ascending day order")
	}
}

func TestBuildEquityCurveEmpty(t *testing.T) {
	if got := BuildEquityCurve(nil); len(got) != 0 {
		t.Fatalf("expected empty curve, got %d points", len(got))
	}
}

func TestEquityCurveToCSV(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	curve := BuildEquityCurve([]*models.MicroRow{pnlRow(d1, 1.5)})

	csv := curve.ToCSV()
	if !strings.HasPrefix(csv, "day,daily_pnl,cumulative,drawdown\n") {
		t.Fatal("missing header row")
	}
	if !strings.Contains(csv, "2024-01-01,1.5000,1.5000,0.0000") {
		t.Fatalf("unexpected csv body: %q", csv)
	}
}
