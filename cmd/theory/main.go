// Package main provides the theory engine CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/theory-engine/internal/backtest"
	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/engine"
	"github.com/yourusername/theory-engine/internal/exposure"
	"github.com/yourusername/theory-engine/internal/features"
	"github.com/yourusername/theory-engine/internal/health"
	"github.com/yourusername/theory-engine/internal/logger"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
	"github.com/yourusername/theory-engine/internal/runstore"
	"github.com/yourusername/theory-engine/internal/theory"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	requestFile string
	runID       string
	mcRuns      int
	mcSeed      int64

	appLogger *logrus.Logger
	cfg       *config.Config
	db        *database.DB
	repos     *repository.Repositories
	store     runstore.Store
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	evaluateCmd.Flags().StringVarP(&requestFile, "request", "r", "", "Path to evaluation request JSON")
	walkforwardCmd.Flags().StringVarP(&requestFile, "request", "r", "", "Path to evaluation request JSON")
	candidatesCmd.Flags().StringVarP(&requestFile, "request", "r", "", "Path to evaluation request JSON")

	montecarloCmd.Flags().StringVar(&runID, "run-id", "", "Persisted run id to resimulate")
	montecarloCmd.Flags().IntVar(&mcRuns, "runs", 0, "Number of simulation runs (0 = default)")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "Random seed")
	showCmd.Flags().StringVar(&runID, "run-id", "", "Persisted run id to show")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(walkforwardCmd)
	rootCmd.AddCommand(montecarloCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "theory",
	Short: "Evaluate betting theories against historical game facts",
	Long:  `Runs the theory evaluation pipeline: leakage-aware features, dataset cleaning, target resolution, statistical evaluation, modeling, exposure-controlled selection, walk-forward and Monte Carlo.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(cmd *cobra.Command) error {
	appLogger = logger.NewLogger(cfg.App.LogLevel)

	fileStore, err := runstore.NewFileStore(cfg.RunStore.Path, logger.ForComponent(appLogger, "runstore"))
	if err != nil {
		return err
	}
	store = runstore.NewCachedStore(fileStore, time.Duration(cfg.RunStore.CacheTTLSeconds)*time.Second)

	// show and montecarlo replay persisted runs; they never touch the database.
	if cmd.Name() == "show" || cmd.Name() == "montecarlo" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if cfg.Metrics.Enabled {
		healthSrv := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      appLogger,
			DB:          db,
			Store:       store,
		})
		if err := healthSrv.Start(context.Background()); err != nil {
			appLogger.WithError(err).Warn("Health server failed to start")
		} else {
			healthSrv.SetReady(true)
		}
	}

	return nil
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a full theory evaluation and persist the run artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest()
		if err != nil {
			return err
		}

		artifact, err := runEngine(req)
		if err != nil {
			return err
		}

		fmt.Print(engine.GenerateConsoleReport(artifact))
		return nil
	},
}

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Run an evaluation with rolling train/test backtesting",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest()
		if err != nil {
			return err
		}
		if req.WalkFwd == nil {
			req.WalkFwd = &backtest.WalkForwardConfig{
				TrainDays: cfg.Engine.WalkForwardTrainDays,
				TestDays:  cfg.Engine.WalkForwardTestDays,
				StepDays:  cfg.Engine.WalkForwardStepDays,
			}
		}

		artifact, err := runEngine(req)
		if err != nil {
			return err
		}

		fmt.Print(engine.GenerateConsoleReport(artifact))
		if artifact.WalkForward != nil {
			for _, slice := range artifact.WalkForward.Slices {
				fmt.Printf("%s .. %s  n=%d  hit=%.3f  roi=%+.3f  odds=%.0f%%\n",
					slice.StartDate.Format("2006-01-02"), slice.EndDate.Format("2006-01-02"),
					slice.SampleSize, slice.HitRate, slice.ROIUnits, slice.OddsCoveragePct)
			}
		}
		return nil
	},
}

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Resimulate a persisted run's micro-rows under the odds-implied model",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runID == "" {
			return fmt.Errorf("--run-id is required")
		}

		eng := engine.New(nil, store, appLogger)
		artifact, err := eng.LoadRun(cmd.Context(), runID)
		if err != nil {
			return err
		}

		settled := make([]*models.MicroRow, 0, len(artifact.MicroRows))
		for _, row := range artifact.MicroRows {
			if row.PnLUnits != nil {
				settled = append(settled, row)
			}
		}
		if len(settled) == 0 {
			return fmt.Errorf("run %s has no settled rows to simulate", runID)
		}

		summary, err := backtest.RunMonteCarlo(settled, backtest.MonteCarloConfig{Runs: mcRuns, Seed: mcSeed})
		if err != nil {
			return err
		}

		fmt.Printf("Runs: %d\n", summary.Runs)
		fmt.Printf("Actual P&L: %+.2f\n", summary.ActualPnL)
		fmt.Printf("Simulated Mean: %+.2f  P5/P50/P95: %+.2f / %+.2f / %+.2f\n",
			summary.SimulatedMean, summary.P5, summary.P50, summary.P95)
		fmt.Printf("Luck Score: %+.2f\n", summary.LuckScore)
		fmt.Printf("Assumptions: %s\n", summary.Assumptions)
		return nil
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Surface high-lift draft hypotheses from a run's feature set",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := loadRequest()
		if err != nil {
			return err
		}

		artifact, err := runEngine(req)
		if err != nil {
			return err
		}

		if len(artifact.Candidates) == 0 {
			fmt.Println("No candidates cleared the sample-size and lift thresholds.")
			return nil
		}
		for i, candidate := range artifact.Candidates {
			fmt.Printf("%2d. %s\n    n=%d  hit=%.3f  lift=%+.3f\n    %s\n",
				i+1, candidate.Condition, candidate.SampleSize, candidate.HitRate, candidate.Lift, candidate.Framing)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the report of a persisted run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runID == "" {
			return fmt.Errorf("--run-id is required")
		}

		eng := engine.New(nil, store, appLogger)
		artifact, err := eng.LoadRun(cmd.Context(), runID)
		if err != nil {
			return err
		}

		fmt.Print(engine.GenerateConsoleReport(artifact))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("theory %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func loadRequest() (engine.Request, error) {
	req := engine.Request{}
	if requestFile == "" {
		return req, fmt.Errorf("--request is required")
	}

	data, err := os.ReadFile(requestFile)
	if err != nil {
		return req, fmt.Errorf("failed to read request file: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request file: %w", err)
	}

	applyEngineDefaults(&req)
	return req, nil
}

// applyEngineDefaults fills request gaps from configuration.
func applyEngineDefaults(req *engine.Request) {
	if req.Context == "" {
		req.Context = features.ExecContext(cfg.Engine.Context)
	}
	if req.RollingWindow == 0 {
		req.RollingWindow = cfg.Engine.RollingWindow
	}
	if req.Trigger == nil {
		req.Trigger = &theory.TriggerDefinition{
			ProbThreshold:    cfg.Engine.ProbThreshold,
			ConfidenceBand:   cfg.Engine.ConfidenceBand,
			MinEdgeVsImplied: cfg.Engine.MinEdgeVsImplied,
		}
	}
	if req.Exposure == nil && (cfg.Engine.MaxBetsPerDay > 0 || cfg.Engine.MaxBetsPerSidePerDay > 0) {
		req.Exposure = &exposure.Controls{
			MaxBetsPerDay:        cfg.Engine.MaxBetsPerDay,
			MaxBetsPerSidePerDay: cfg.Engine.MaxBetsPerSidePerDay,
		}
	}
	if req.MonteCarlo == nil {
		req.MonteCarlo = &backtest.MonteCarloConfig{
			Runs: cfg.Engine.MonteCarloRuns,
			Seed: cfg.Engine.MonteCarloSeed,
		}
	}
}

func runEngine(req engine.Request) (*engine.RunArtifact, error) {
	eng := engine.New(repos, store, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	return eng.Run(ctx, req)
}
