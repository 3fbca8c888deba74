// Package engine orchestrates the full theory evaluation pipeline: feature
// generation through Monte Carlo, producing one persisted run artifact.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/backtest"
	"github.com/yourusername/theory-engine/internal/dataset"
	"github.com/yourusername/theory-engine/internal/exposure"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/logger"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/ml"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
	"github.com/yourusername/theory-engine/internal/runstore"
	"github.com/yourusername/theory-engine/internal/theory"
)

const minTrainRows = 30

// FactSource supplies the materialized game facts an evaluation runs over.
type FactSource interface {
	LoadGames(ctx context.Context, filter repository.GameFilter) ([]*models.Game, error)
}

// Request is one theory evaluation request.
type Request struct {
	Target        models.TargetDefinition     `json:"target"`
	Filter        repository.GameFilter       `json:"filter"`
	Context       features.ExecContext        `json:"context"`
	BaseStats     []string                    `json:"base_stats,omitempty"`
	RollingWindow int                         `json:"rolling_window,omitempty"`
	Features      []models.FeatureDescriptor  `json:"features,omitempty"`
	Cleaning      *dataset.CleaningOptions    `json:"cleaning,omitempty"`
	Trigger       *theory.TriggerDefinition   `json:"trigger,omitempty"`
	Exposure      *exposure.Controls          `json:"exposure,omitempty"`
	WalkFwd       *backtest.WalkForwardConfig `json:"walk_forward,omitempty"`
	MonteCarlo    *backtest.MonteCarloConfig  `json:"monte_carlo,omitempty"`
	Candidates    *theory.CandidateOptions    `json:"candidates,omitempty"`
}

// RunArtifact is the write-once output bundle of one evaluation run.
type RunArtifact struct {
	RunID     string                  `json:"run_id"`
	CreatedAt time.Time               `json:"created_at"`
	Target    models.TargetDefinition `json:"target"`
	Request   Request                 `json:"request"`

	Games          int                     `json:"games"`
	PolicyReport   features.PolicyReport   `json:"policy_report"`
	Cleaning       dataset.CleaningSummary `json:"cleaning"`
	DroppedColumns []dataset.DroppedColumn `json:"dropped_columns"`

	Evaluation    theory.Evaluation  `json:"evaluation"`
	TheoryMetrics *theory.Metrics    `json:"theory_metrics"`
	MetricsReason string             `json:"metrics_reason,omitempty"`
	Candidates    []theory.Candidate `json:"candidates"`

	Modeling    models.ModelingStatus       `json:"modeling"`
	WalkForward *backtest.WalkForwardResult `json:"walk_forward,omitempty"`
	MonteCarlo  models.MonteCarloStatus     `json:"monte_carlo"`

	ExposureSummary exposure.Summary      `json:"exposure_summary"`
	BetTape         exposure.Tape         `json:"bet_tape"`
	DropReasons     []exposure.DropReason `json:"drop_reasons"`
	EquityCurve     backtest.EquityCurve  `json:"equity_curve"`

	MicroRows     []*models.MicroRow `json:"micro_rows"`
	MicroRowsPath string             `json:"micro_rows_path"`
	SnapshotHash  string             `json:"snapshot_hash"`
}

// Engine wires the data layer, the evaluation core and the run store.
type Engine struct {
	source FactSource
	store  runstore.Store
	log    *logrus.Logger
	audit  *logger.AuditLogger
	mlLog  *logger.MLLogger
	thLog  *logger.TheoryLogger
}

// New creates an engine. store may be nil when persistence is not wanted
// (tests, dry runs).
func New(source FactSource, store runstore.Store, log *logrus.Logger) *Engine {
	return &Engine{
		source: source,
		store:  store,
		log:    log,
		audit:  logger.NewAuditLogger(log),
		mlLog:  logger.NewMLLogger(log),
		thLog:  logger.NewTheoryLogger(log),
	}
}

// Run executes the full pipeline for one request. Configuration errors are
// returned before any computation; data-absence conditions produce a valid,
// explained artifact instead of an error.
func (e *Engine) Run(ctx context.Context, req Request) (*RunArtifact, error) {
	started := time.Now()

	if err := req.Target.Validate(); err != nil {
		return nil, err
	}

	games, err := e.source.LoadGames(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	artifact := &RunArtifact{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Target:    req.Target,
		Request:   req,
		Games:     len(games),
	}

	// Feature pipeline: generate (or accept), policy-filter, compute.
	requested := req.Features
	if len(requested) == 0 {
		base := req.BaseStats
		if len(base) == 0 {
			base = discoverBaseStats(games)
		}
		requested = features.Generate(base, features.GeneratorOptions{
			IncludeRestDays: true,
			IncludeRolling:  true,
			RollingWindow:   req.RollingWindow,
		})
	}
	execContext := req.Context
	if execContext == "" {
		execContext = features.ContextDeployable
	}
	allowed, policyReport := features.Filter(requested, execContext, e.log)
	artifact.PolicyReport = policyReport
	for range policyReport.DroppedPostGameFeatures {
		metrics.RecordFeatureDrop("post_game_policy")
	}

	computer := features.NewComputer(e.log)
	rows := computer.Compute(games, allowed)
	e.thLog.LogFeaturePipeline(req.Target.TargetName, len(requested), len(allowed), len(policyReport.DroppedPostGameFeatures), len(rows))

	// Targets resolve in parallel with features, from derived metrics only.
	targets := theory.ResolveTargets(games, req.Target)

	cleaning := dataset.CleaningOptions{DropIfAllNull: true, MinNonNullCount: 1}
	if req.Cleaning != nil {
		cleaning = *req.Cleaning
	}
	aligned, cleaningSummary := dataset.Prepare(rows, names(allowed), targets, cleaning)
	artifact.Cleaning = cleaningSummary

	kept, droppedCols := dataset.Prune(aligned, names(allowed))
	artifact.DroppedColumns = droppedCols
	for _, col := range droppedCols {
		metrics.RecordFeatureDrop(col.Reason)
	}
	e.thLog.LogDatasetShape(cleaningSummary.RawRows, cleaningSummary.RowsAfter, cleaningSummary.DroppedNull, cleaningSummary.DroppedNonNumeric, len(droppedCols))

	model, modelProbs := e.trainModel(artifact, aligned, kept, req.Target)

	trigger := theory.TriggerDefinition{}
	if req.Trigger != nil {
		trigger = *req.Trigger
	}
	microRows := theory.BuildMicroRows(games, aligned.GameIDs, targets, req.Target, trigger, modelProbs)
	triggered, withOdds := 0, 0
	for _, row := range microRows {
		if row.TriggerFlag {
			triggered++
		}
		if row.ImpliedProb != nil {
			withOdds++
		}
	}
	e.thLog.LogTriggerSummary(req.Target.TargetName, len(microRows), triggered, withOdds)

	artifact.Evaluation = theory.Evaluate(microRows, req.Target)
	e.thLog.LogEvaluationCompleted(req.Target.TargetName, string(artifact.Evaluation.Verdict), artifact.Evaluation.SampleSize, artifact.Evaluation.Aggregate, artifact.Evaluation.Baseline)
	theoryMetrics, reason := theory.ComputeMetrics(microRows, req.Target, artifact.Evaluation.Baseline)
	artifact.TheoryMetrics = theoryMetrics
	artifact.MetricsReason = reason

	candidateOpts := theory.CandidateOptions{}
	if req.Candidates != nil {
		candidateOpts = *req.Candidates
	}
	artifact.Candidates = theory.GenerateCandidates(aligned, kept, artifact.Evaluation.Aggregate, req.Target, candidateOpts)

	e.applyExposure(artifact, microRows, req)
	e.runWalkForward(artifact, aligned, kept, microRows, req, model)
	e.runMonteCarlo(artifact, microRows, req)

	for _, row := range microRows {
		row.Sanitize()
	}
	artifact.MicroRows = microRows
	artifact.SnapshotHash = snapshotHash(games, req.Target)

	if err := e.persist(ctx, artifact); err != nil {
		return nil, err
	}

	metrics.RecordEvaluation(string(artifact.Evaluation.Verdict), time.Since(started).Seconds())
	e.log.WithFields(logrus.Fields{
		"run_id":      artifact.RunID,
		"target_name": req.Target.TargetName,
		"verdict":     artifact.Evaluation.Verdict,
		"games":       len(games),
		"micro_rows":  len(microRows),
	}).Info("Evaluation run completed")

	return artifact, nil
}

// trainModel fits the logistic model when the target supports it, filling the
// modeling status either way. It returns per-game probabilities for trigger
// evaluation.
func (e *Engine) trainModel(artifact *RunArtifact, aligned dataset.Aligned, kept []string, def models.TargetDefinition) (models.TrainedModel, map[uuid.UUID]float64) {
	status := models.ModelingStatus{}
	var model models.TrainedModel

	switch {
	case def.MetricType != models.MetricBinary:
		status.ReasonNotRun = "numeric target: classification model not applicable"
	case len(aligned.Target) < minTrainRows:
		status.ReasonNotRun = fmt.Sprintf("insufficient rows for training: %d < %d", len(aligned.Target), minTrainRows)
	case len(kept) == 0:
		status.ReasonNotRun = "no usable feature columns after pruning"
	default:
		trainedAt := time.Now()
		trained, pruned, err := ml.Train(aligned, kept)
		if err != nil {
			status.HasRun = true
			status.ReasonNotAvailable = err.Error()
			break
		}
		model = trained
		status.HasRun = true
		status.Available = true
		status.ModelType = "logistic_regression"
		status.Metrics = map[string]float64{
			"accuracy":   trained.Accuracy,
			"roi":        trained.ROI,
			"train_rows": float64(trained.TrainRows),
		}
		status.FeatureImportance = trained.FeatureWeights
		for _, col := range pruned {
			metrics.RecordFeatureDrop(col.Reason)
		}
		metrics.RecordModelTraining(trained.Accuracy, time.Since(trainedAt).Seconds())
		e.mlLog.LogModelTraining(def.TargetName, trained.TrainRows, len(trained.FeaturesUsed), len(pruned), trained.Accuracy, trained.ROI)
	}
	if status.ReasonNotRun != "" {
		e.mlLog.LogModelSkipped(def.TargetName, status.ReasonNotRun)
	}
	artifact.Modeling = status

	probs := map[uuid.UUID]float64{}
	if status.Available {
		for i, id := range aligned.GameIDs {
			featureValues := map[string]float64{}
			for _, name := range model.FeaturesUsed {
				if v := aligned.Columns[name][i]; v != nil {
					featureValues[name] = *v
				}
			}
			probs[id] = ml.Predict(model, featureValues)
		}
	}
	return model, probs
}

func (e *Engine) applyExposure(artifact *RunArtifact, microRows []*models.MicroRow, req Request) {
	controls := exposure.Controls{}
	if req.Exposure != nil {
		controls = *req.Exposure
	}
	selected, summary, dropReasons := exposure.Apply(microRows, controls, req.Target)
	artifact.ExposureSummary = summary
	artifact.BetTape = exposure.BuildTape(selected)
	artifact.DropReasons = dropReasons
	artifact.EquityCurve = backtest.BuildEquityCurve(selected)

	metrics.RecordTriggeredRows(summary.Triggered)
	metrics.RecordSelectedRows(summary.Selected)
	e.thLog.LogExposureSelection(artifact.Target.TargetName, summary.Triggered, summary.Selected, summary.Dropped, summary.ActiveDays)
}

func (e *Engine) runWalkForward(artifact *RunArtifact, aligned dataset.Aligned, kept []string, microRows []*models.MicroRow, req Request, model models.TrainedModel) {
	if req.WalkFwd == nil || !artifact.Modeling.Available {
		return
	}
	rowsByGame := make(map[uuid.UUID]*models.MicroRow, len(microRows))
	for _, row := range microRows {
		rowsByGame[row.GameID] = row
	}
	result, err := backtest.RunWalkForward(aligned, kept, rowsByGame, *req.WalkFwd, logger.ForRun(e.log, artifact.RunID))
	if err != nil {
		e.log.WithError(err).Warn("Walk-forward evaluation failed")
		return
	}
	artifact.WalkForward = &result
	e.mlLog.LogWalkForward(artifact.Target.TargetName, len(result.Slices), result.SkippedSlices, result.EdgeHalfLifeDays)
}

func (e *Engine) runMonteCarlo(artifact *RunArtifact, microRows []*models.MicroRow, req Request) {
	status := models.MonteCarloStatus{}
	defer func() { artifact.MonteCarlo = status }()

	if !artifact.Target.IsMarket() {
		status.ReasonNotRun = "stat target: no market outcomes to simulate"
		return
	}

	settled := make([]*models.MicroRow, 0, len(microRows))
	for _, row := range microRows {
		if row.PnLUnits != nil {
			settled = append(settled, row)
		}
	}
	if len(settled) == 0 {
		status.HasRun = true
		status.ReasonNotAvailable = theory.ReasonMissingOdds
		return
	}

	cfg := backtest.MonteCarloConfig{}
	if req.MonteCarlo != nil {
		cfg = *req.MonteCarlo
	}
	summary, err := backtest.RunMonteCarlo(settled, cfg)
	if err != nil {
		status.HasRun = true
		status.ReasonNotAvailable = err.Error()
		return
	}

	status.HasRun = true
	status.Available = true
	status.Assumptions = summary.Assumptions
	status.Distribution = summary.Distribution
	status.Summary = map[string]float64{
		"runs":           float64(summary.Runs),
		"simulated_mean": summary.SimulatedMean,
		"p5":             summary.P5,
		"p50":            summary.P50,
		"p95":            summary.P95,
		"actual_pnl":     summary.ActualPnL,
		"luck_score":     summary.LuckScore,
	}
	metrics.RecordMonteCarlo(summary.LuckScore)
}

func (e *Engine) persist(ctx context.Context, artifact *RunArtifact) error {
	if e.store == nil {
		return nil
	}

	csvData := MicroRowsCSV(artifact.MicroRows)
	path, err := e.store.SaveMicroRows(ctx, artifact.RunID, csvData)
	if err != nil {
		return fmt.Errorf("failed to persist micro-rows: %w", err)
	}
	artifact.MicroRowsPath = path

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run artifact: %w", err)
	}
	if err := e.store.SaveArtifact(ctx, artifact.RunID, data); err != nil {
		return fmt.Errorf("failed to persist run artifact: %w", err)
	}
	e.audit.LogRunPersisted(artifact.RunID, artifact.Target.TargetName, artifact.MicroRowsPath, artifact.SnapshotHash, len(artifact.MicroRows), artifact.CreatedAt)
	return nil
}

// LoadRun replays a persisted run artifact without touching the database.
func (e *Engine) LoadRun(ctx context.Context, runID string) (*RunArtifact, error) {
	if e.store == nil {
		return nil, fmt.Errorf("no run store configured")
	}
	cacheHit := false
	if c, ok := e.store.(interface{ Cached(runID string) bool }); ok {
		cacheHit = c.Cached(runID)
	}
	data, err := e.store.LoadArtifact(ctx, runID)
	if err != nil {
		return nil, err
	}
	artifact := &RunArtifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("failed to decode run artifact: %w", err)
	}
	e.audit.LogRunReplay(runID, cacheHit)
	return artifact, nil
}

// discoverBaseStats unions the stat keys present in the cohort's boxscores.
func discoverBaseStats(games []*models.Game) []string {
	seen := map[string]struct{}{}
	for _, game := range games {
		for key := range game.HomeStats {
			seen[key] = struct{}{}
		}
		for key := range game.AwayStats {
			seen[key] = struct{}{}
		}
	}
	stats := make([]string, 0, len(seen))
	for key := range seen {
		stats = append(stats, key)
	}
	sort.Strings(stats)
	return stats
}

func names(descriptors []models.FeatureDescriptor) []string {
	out := make([]string, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.Name
	}
	return out
}

// snapshotHash fingerprints the input cohort and target so a replayed
// artifact can be checked against live data.
func snapshotHash(games []*models.Game, def models.TargetDefinition) string {
	h := sha256.New()
	for _, game := range games {
		h.Write([]byte(game.ID.String()))
	}
	if data, err := json.Marshal(def); err == nil {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
