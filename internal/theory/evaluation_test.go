package theory

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/theory-engine/internal/models"
)

func marketRow(value float64, implied *float64, season, month string) *models.MicroRow {
	return &models.MicroRow{
		GameID:      uuid.New(),
		TargetValue: value,
		ImpliedProb: implied,
		Meta:        models.RowMeta{Season: season, Month: month},
	}
}

func TestEvaluateEmptyCohort(t *testing.T) {
	eval := Evaluate(nil, spreadDef())
	if eval.SampleSize != 0 || eval.Verdict != VerdictNoise {
		t.Fatal("empty cohort must evaluate as explained noise")
	}
	if eval.Insight == "" {
		t.Fatal("empty result must explain itself")
	}
}

func TestEvaluateMarketHitRateVsImplied(t *testing.T) {
	implied := 0.52
	rows := []*models.MicroRow{
		marketRow(1, &implied, "2023-24", "2024-01"),
		marketRow(1, &implied, "2023-24", "2024-01"),
		marketRow(1, &implied, "2023-24", "2024-02"),
		marketRow(0, &implied, "2023-24", "2024-02"),
	}

	eval := Evaluate(rows, spreadDef())
	if eval.Aggregate != 0.75 {
		t.Fatalf("hit rate %.3f, want 0.75", eval.Aggregate)
	}
	if math.Abs(eval.Baseline-0.52) > 1e-9 {
		t.Fatalf("market baseline must be the mean implied probability, got %.3f", eval.Baseline)
	}
	if eval.Verdict != VerdictInteresting {
		t.Fatalf("a 23-point delta is interesting, got %s", eval.Verdict)
	}
	if eval.Dispersion != nil {
		t.Fatal("market targets carry no dispersion block")
	}
	if len(eval.BySeason) != 1 || len(eval.ByMonth) != 2 {
		t.Fatalf("stability cells wrong: %d seasons, %d months", len(eval.BySeason), len(eval.ByMonth))
	}
}

func TestEvaluateStatDispersion(t *testing.T) {
	def := models.TargetDefinition{TargetClass: models.TargetClassStat, TargetName: "total_points", MetricType: models.MetricNumeric}
	rows := []*models.MicroRow{}
	for _, v := range []float64{130, 140, 150, 160, 170} {
		rows = append(rows, &models.MicroRow{GameID: uuid.New(), TargetValue: v, Meta: models.RowMeta{Season: "2023-24"}})
	}

	eval := Evaluate(rows, def)
	if eval.Aggregate != 150 {
		t.Fatalf("mean %.1f, want 150", eval.Aggregate)
	}
	// Stat baselines are the cohort's own mean, so the delta is zero and
	// the verdict is noise by construction.
	if eval.Delta != 0 || eval.Verdict != VerdictNoise {
		t.Fatalf("stat self-baseline broken: delta=%.2f verdict=%s", eval.Delta, eval.Verdict)
	}
	if eval.Dispersion == nil {
		t.Fatal("stat targets must report dispersion")
	}
	if eval.Dispersion.Min != 130 || eval.Dispersion.Max != 170 || eval.Dispersion.Q50 != 150 {
		t.Fatalf("dispersion wrong: %+v", eval.Dispersion)
	}
}

func TestClassifyThresholds(t *testing.T) {
	market := spreadDef()
	if classify(0.01, market) != VerdictNoise {
		t.Fatal("a 1-point market delta is noise")
	}
	if classify(0.03, market) != VerdictWeak {
		t.Fatal("a 3-point market delta is weak")
	}
	if classify(-0.08, market) != VerdictInteresting {
		t.Fatal("classification uses the absolute delta")
	}

	stat := models.TargetDefinition{TargetClass: models.TargetClassStat}
	if classify(0.4, stat) != VerdictNoise || classify(1.0, stat) != VerdictWeak || classify(2.5, stat) != VerdictInteresting {
		t.Fatal("stat thresholds misclassify")
	}
}

func TestComputeMetricsStatTarget(t *testing.T) {
	def := models.TargetDefinition{TargetClass: models.TargetClassStat, TargetName: "margin"}
	m, reason := ComputeMetrics(nil, def, 0)
	if m != nil || reason == "" {
		t.Fatal("stat targets get no metrics, with a reason")
	}
}

func TestComputeMetricsMissingOdds(t *testing.T) {
	rows := []*models.MicroRow{marketRow(1, nil, "", ""), marketRow(0, nil, "", "")}
	m, reason := ComputeMetrics(rows, spreadDef(), 0)
	if m != nil {
		t.Fatal("no market snapshot anywhere means no metrics")
	}
	if reason != ReasonMissingOdds {
		t.Fatalf("reason %q, want %q", reason, ReasonMissingOdds)
	}
}

func TestComputeMetricsAggregates(t *testing.T) {
	implied := 0.5238
	win := models.OutcomeWin
	loss := models.OutcomeLoss
	push := models.OutcomePush
	winPnl, lossPnl, pushPnl := 0.909, -1.0, 0.0

	rows := []*models.MicroRow{
		{GameID: uuid.New(), ImpliedProb: &implied, Outcome: &win, PnLUnits: &winPnl},
		{GameID: uuid.New(), ImpliedProb: &implied, Outcome: &win, PnLUnits: &winPnl},
		{GameID: uuid.New(), ImpliedProb: &implied, Outcome: &loss, PnLUnits: &lossPnl},
		{GameID: uuid.New(), ImpliedProb: &implied, Outcome: &push, PnLUnits: &pushPnl},
	}

	m, reason := ComputeMetrics(rows, spreadDef(), 0.55)
	if m == nil {
		t.Fatalf("expected metrics, got reason %q", reason)
	}
	// The push contributes an implied probability but not a settled result.
	if m.SampleSize != 3 {
		t.Fatalf("settled sample %d, want 3", m.SampleSize)
	}
	if math.Abs(m.CoverRate-2.0/3.0) > 1e-9 {
		t.Fatalf("cover rate %.4f, want 0.6667", m.CoverRate)
	}
	if m.BaselineCoverRate != 0.55 {
		t.Fatalf("baseline %.2f not carried through", m.BaselineCoverRate)
	}
	wantTotal := 0.909 + 0.909 - 1.0
	if math.Abs(m.TotalPnLUnits-wantTotal) > 1e-9 {
		t.Fatalf("total pnl %.4f, want %.4f", m.TotalPnLUnits, wantTotal)
	}
	if m.ROIUnits <= 0 {
		t.Fatalf("winning cohort must show positive roi, got %.4f", m.ROIUnits)
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Peak at +2, trough at -1: drawdown 3.
	pnls := []float64{1, 1, -1, -1, -1, 2}
	if got := maxDrawdown(pnls); got != 3 {
		t.Fatalf("max drawdown %.1f, want 3", got)
	}
	if got := maxDrawdown([]float64{1, 1, 1}); got != 0 {
		t.Fatalf("monotone gains have zero drawdown, got %.1f", got)
	}
}
