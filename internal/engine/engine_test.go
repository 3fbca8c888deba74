package engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/theory-engine/internal/backtest"
	"github.com/yourusername/theory-engine/internal/exposure"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
	"github.com/yourusername/theory-engine/internal/runstore"
	"github.com/yourusername/theory-engine/internal/theory"
)

type fakeSource struct {
	games []*models.Game
	err   error
}

func (f *fakeSource) LoadGames(ctx context.Context, filter repository.GameFilter) ([]*models.Game, error) {
	return f.games, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

// pricedCohort builds n completed games at -110 both sides where the home
// side covers on three of every five games and the rating gap gives the
// cover away perfectly.
func pricedCohort(n int) []*models.Game {
	start := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	games := make([]*models.Game, 0, n)
	for i := 0; i < n; i++ {
		covered := i%5 < 3
		homeRating, awayRating := 50.0, 52.0
		if covered {
			homeRating, awayRating = 52.0, 50.0
		}
		hp, ap := 78.0, 72.0
		if !covered {
			hp, ap = 70.0, 75.0
		}

		games = append(games, &models.Game{
			ID:       uuid.New(),
			GameDate: start.AddDate(0, 0, i),
			Season:   "2023-24",
			HomeTeam: "Home" + string(rune('A'+i%20)),
			AwayTeam: "Away" + string(rune('A'+i%20)),
			HomeStats: models.StatLine{
				"points": hp, "rating": homeRating,
			},
			AwayStats: models.StatLine{
				"points": ap, "rating": awayRating,
			},
			Derived: models.DerivedMetrics{
				HomePoints:            &hp,
				AwayPoints:            &ap,
				TotalPoints:           fptr(hp + ap),
				ClosingSpread:         fptr(-3.5),
				ClosingSpreadOddsHome: fptr(-110),
				ClosingSpreadOddsAway: fptr(-110),
				HomeCovered:           bptr(covered),
			},
		})
	}
	return games
}

func spreadRequest() Request {
	return Request{
		Target: models.TargetDefinition{
			TargetClass: models.TargetClassMarket,
			TargetName:  "home_covers",
			MetricType:  models.MetricBinary,
			MarketType:  models.MarketSpread,
			Side:        models.SideHome,
		},
		Features: []models.FeatureDescriptor{
			{Name: "rating_diff", Category: models.CategoryEngineered, Requires: []string{"rating"}},
		},
		Trigger: &theory.TriggerDefinition{
			ProbThreshold:    0.55,
			ConfidenceBand:   0.02,
			MinEdgeVsImplied: 0.01,
		},
		MonteCarlo: &backtest.MonteCarloConfig{Runs: 200, Seed: 1},
		Candidates: &theory.CandidateOptions{MinSampleSize: 20, MinLift: 0.03},
	}
}

func TestRunFullEvaluation(t *testing.T) {
	eng := New(&fakeSource{games: pricedCohort(150)}, nil, quietLogger())

	artifact, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err)

	assert.Equal(t, 150, artifact.Games)
	assert.Len(t, artifact.MicroRows, 150)
	assert.NotEmpty(t, artifact.RunID)
	assert.NotEmpty(t, artifact.SnapshotHash)

	// A perfectly separating pre-game feature trains a near-perfect model.
	require.True(t, artifact.Modeling.Available, "modeling should run: %s / %s",
		artifact.Modeling.ReasonNotRun, artifact.Modeling.ReasonNotAvailable)
	assert.Equal(t, "logistic_regression", artifact.Modeling.ModelType)
	assert.Greater(t, artifact.Modeling.Metrics["accuracy"], 0.9)

	// 60% cover rate against a 52.4% implied baseline is interesting.
	assert.Equal(t, theory.VerdictInteresting, artifact.Evaluation.Verdict)
	assert.InDelta(t, 0.60, artifact.Evaluation.Aggregate, 0.001)
	assert.InDelta(t, 0.5238, artifact.Evaluation.Baseline, 0.001)

	require.NotNil(t, artifact.TheoryMetrics)
	assert.Equal(t, 150, artifact.TheoryMetrics.SampleSize)
	assert.Greater(t, artifact.TheoryMetrics.TotalPnLUnits, 0.0)

	// The model triggers bets on the covered games.
	assert.Greater(t, artifact.ExposureSummary.Triggered, 0)
	assert.Greater(t, artifact.ExposureSummary.Selected, 0)
	assert.NotEmpty(t, artifact.BetTape.Strongest)
	assert.NotEmpty(t, artifact.EquityCurve)

	require.True(t, artifact.MonteCarlo.Available)
	luck := artifact.MonteCarlo.Summary["luck_score"]
	actual := artifact.MonteCarlo.Summary["actual_pnl"]
	mean := artifact.MonteCarlo.Summary["simulated_mean"]
	assert.InDelta(t, actual-mean, luck, 1e-9)
	assert.Len(t, artifact.MonteCarlo.Distribution, 200, "one simulated total per run")

	assert.NotEmpty(t, artifact.Candidates, "the rating gap should surface as a candidate")
}

func TestRunLogsPipelineStages(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	eng := New(&fakeSource{games: pricedCohort(60)}, nil, log)
	_, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err)

	out := buf.String()
	for _, msg := range []string{
		"Feature pipeline completed",
		"Dataset prepared",
		"Model training completed",
		"Micro-rows built",
		"Theory evaluation completed",
		"Exposure controls applied",
	} {
		assert.Contains(t, out, msg)
	}
}

func TestRunHonorsRollingWindow(t *testing.T) {
	games := pricedCohort(15)
	// Distinct teams per game keep every rolling average empty, so the
	// generated rolling columns surface in the prune report with the
	// requested window in their names.
	for i, g := range games {
		g.HomeTeam = fmt.Sprintf("H%02d", i)
		g.AwayTeam = fmt.Sprintf("A%02d", i)
	}

	req := spreadRequest()
	req.Features = nil
	req.BaseStats = []string{"points"}
	req.RollingWindow = 7
	req.Context = features.ContextDiagnostic

	eng := New(&fakeSource{games: games}, nil, quietLogger())
	artifact, err := eng.Run(context.Background(), req)
	require.NoError(t, err)

	names := []string{}
	for _, col := range artifact.DroppedColumns {
		names = append(names, col.Name)
	}
	assert.Contains(t, names, "rolling_points_7_home")
	assert.NotContains(t, names, "rolling_points_5_home")
}

func TestRunWalkForwardWiring(t *testing.T) {
	req := spreadRequest()
	req.WalkFwd = &backtest.WalkForwardConfig{TrainDays: 40, TestDays: 20}
	eng := New(&fakeSource{games: pricedCohort(150)}, nil, quietLogger())

	artifact, err := eng.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, artifact.WalkForward)
	require.NotEmpty(t, artifact.WalkForward.Slices)
	for _, slice := range artifact.WalkForward.Slices {
		assert.GreaterOrEqual(t, slice.HitRate, 0.9, "separable data should hold out of sample")
		assert.Equal(t, 100.0, slice.OddsCoveragePct)
	}
}

func TestRunMissingOddsCohort(t *testing.T) {
	games := pricedCohort(10)
	for _, g := range games {
		g.Derived.ClosingSpread = nil
		g.Derived.ClosingSpreadOddsHome = nil
		g.Derived.ClosingSpreadOddsAway = nil
	}
	eng := New(&fakeSource{games: games}, nil, quietLogger())

	artifact, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err, "data absence is an explained artifact, never an error")

	for _, row := range artifact.MicroRows {
		assert.Nil(t, row.ImpliedProb)
		assert.False(t, row.TriggerFlag)
		assert.NotEmpty(t, row.TriggerReasons)
	}
	assert.Nil(t, artifact.TheoryMetrics)
	assert.Equal(t, theory.ReasonMissingOdds, artifact.MetricsReason)

	assert.True(t, artifact.MonteCarlo.HasRun)
	assert.False(t, artifact.MonteCarlo.Available)
	assert.Equal(t, theory.ReasonMissingOdds, artifact.MonteCarlo.ReasonNotAvailable)

	// Ten rows cannot clear the training floor.
	assert.False(t, artifact.Modeling.Available)
	assert.Contains(t, artifact.Modeling.ReasonNotRun, "insufficient rows")
}

func TestRunStatTarget(t *testing.T) {
	req := spreadRequest()
	req.Target = models.TargetDefinition{
		TargetClass: models.TargetClassStat,
		TargetName:  "total_points",
		MetricType:  models.MetricNumeric,
	}
	req.Context = "diagnostic"
	eng := New(&fakeSource{games: pricedCohort(60)}, nil, quietLogger())

	artifact, err := eng.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, artifact.Modeling.ReasonNotRun, "numeric target")
	assert.Contains(t, artifact.MonteCarlo.ReasonNotRun, "stat target")
	assert.Nil(t, artifact.TheoryMetrics)
	for _, row := range artifact.MicroRows {
		assert.False(t, row.TriggerFlag, "stat targets never trigger")
	}
}

func TestRunRejectsInvalidTarget(t *testing.T) {
	req := spreadRequest()
	req.Target.Side = models.SideOver // spread cannot take the over

	eng := New(&fakeSource{games: pricedCohort(10)}, nil, quietLogger())
	_, err := eng.Run(context.Background(), req)
	require.Error(t, err, "configuration errors reject before any computation")
}

func TestRunPersistsAndReplays(t *testing.T) {
	store, err := runstore.NewFileStore(t.TempDir(), quietLogger().WithField("component", "runstore"))
	require.NoError(t, err)

	eng := New(&fakeSource{games: pricedCohort(40)}, store, quietLogger())
	artifact, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err)
	require.NotEmpty(t, artifact.MicroRowsPath)

	replayed, err := eng.LoadRun(context.Background(), artifact.RunID)
	require.NoError(t, err)
	assert.Equal(t, artifact.RunID, replayed.RunID)
	assert.Equal(t, artifact.SnapshotHash, replayed.SnapshotHash)
	assert.Len(t, replayed.MicroRows, 40)

	_, err = eng.LoadRun(context.Background(), "missing-run")
	assert.ErrorIs(t, err, models.ErrRunNotFound)
}

func TestRunExposureCapsApplied(t *testing.T) {
	req := spreadRequest()
	req.Exposure = &exposure.Controls{MaxBetsPerDay: 1}
	eng := New(&fakeSource{games: pricedCohort(100)}, nil, quietLogger())

	artifact, err := eng.Run(context.Background(), req)
	require.NoError(t, err)

	// One game per day in the cohort, so the cap cannot bite, but every
	// micro-row still carries its annotation.
	for _, row := range artifact.MicroRows {
		require.NotNil(t, row.SelectedBet)
	}
}

func TestMicroRowsCSVShape(t *testing.T) {
	eng := New(&fakeSource{games: pricedCohort(40)}, nil, quietLogger())
	artifact, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err)

	csvData := string(MicroRowsCSV(artifact.MicroRows))
	lines := strings.Split(strings.TrimRight(csvData, "\n"), "\n")
	require.Len(t, lines, 41, "header plus one line per micro-row")

	header := strings.Split(lines[0], ",")
	assert.Equal(t, "game_id", header[0])
	assert.Contains(t, lines[0], "pnl_units")
	assert.Contains(t, lines[0], "selected_bet")
	for _, line := range lines[1:] {
		assert.Equal(t, len(header), len(strings.Split(line, ",")), "every row matches the header width")
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	eng := New(&fakeSource{games: pricedCohort(150)}, nil, quietLogger())
	artifact, err := eng.Run(context.Background(), spreadRequest())
	require.NoError(t, err)

	report := GenerateConsoleReport(artifact)
	assert.Contains(t, report, "home_covers")
	assert.Contains(t, report, "interesting")
	assert.Contains(t, report, "Monte Carlo")
}
