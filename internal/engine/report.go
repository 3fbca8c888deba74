package engine

import (
	"fmt"
	"strings"
)

// GenerateConsoleReport formats a run artifact for terminal output
func GenerateConsoleReport(artifact *RunArtifact) string {
	var builder strings.Builder
	builder.WriteString("Theory Evaluation Report\n")
	builder.WriteString("========================\n")
	builder.WriteString(fmt.Sprintf("Run ID: %s\n", artifact.RunID))
	builder.WriteString(fmt.Sprintf("Target: %s (%s)\n", artifact.Target.TargetName, artifact.Target.TargetClass))
	builder.WriteString(fmt.Sprintf("Games: %d  Micro-Rows: %d\n", artifact.Games, len(artifact.MicroRows)))
	builder.WriteString(fmt.Sprintf("Verdict: %s\n", artifact.Evaluation.Verdict))
	builder.WriteString(fmt.Sprintf("Sample Size: %d\n", artifact.Evaluation.SampleSize))
	builder.WriteString(fmt.Sprintf("Aggregate: %.4f  Baseline: %.4f  Delta: %+.4f\n",
		artifact.Evaluation.Aggregate, artifact.Evaluation.Baseline, artifact.Evaluation.Delta))
	if artifact.Evaluation.Insight != "" {
		builder.WriteString(fmt.Sprintf("Insight: %s\n", artifact.Evaluation.Insight))
	}

	if artifact.TheoryMetrics != nil {
		m := artifact.TheoryMetrics
		builder.WriteString("\nMarket Metrics\n")
		builder.WriteString(fmt.Sprintf("Cover Rate: %.2f%% (baseline %.2f%%)\n", m.CoverRate*100, m.BaselineCoverRate*100))
		builder.WriteString(fmt.Sprintf("ROI: %.2f%%  Total P&L: %+.2f units\n", m.ROIUnits*100, m.TotalPnLUnits))
		builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f units  Sharpe-like: %.2f\n", m.MaxDrawdownUnits, m.SharpeLike))
	} else if artifact.MetricsReason != "" {
		builder.WriteString(fmt.Sprintf("\nMarket Metrics: unavailable (%s)\n", artifact.MetricsReason))
	}

	builder.WriteString("\nModeling\n")
	if artifact.Modeling.Available {
		builder.WriteString(fmt.Sprintf("Model: %s  Accuracy: %.2f%%  ROI: %.2f%%\n",
			artifact.Modeling.ModelType,
			artifact.Modeling.Metrics["accuracy"]*100,
			artifact.Modeling.Metrics["roi"]*100))
	} else if artifact.Modeling.ReasonNotRun != "" {
		builder.WriteString(fmt.Sprintf("Not run: %s\n", artifact.Modeling.ReasonNotRun))
	} else {
		builder.WriteString(fmt.Sprintf("Not available: %s\n", artifact.Modeling.ReasonNotAvailable))
	}

	builder.WriteString("\nExposure\n")
	builder.WriteString(fmt.Sprintf("Triggered: %d  Selected: %d  Dropped: %d\n",
		artifact.ExposureSummary.Triggered, artifact.ExposureSummary.Selected, artifact.ExposureSummary.Dropped))
	builder.WriteString(fmt.Sprintf("Active Days: %d  Avg Bets/Day: %.2f\n",
		artifact.ExposureSummary.ActiveDays, artifact.ExposureSummary.AvgBetsPerDay))
	for _, warning := range artifact.ExposureSummary.Warnings {
		builder.WriteString(fmt.Sprintf("Warning: %s\n", warning))
	}

	if artifact.WalkForward != nil {
		builder.WriteString("\nWalk-Forward\n")
		builder.WriteString(fmt.Sprintf("Slices: %d  Skipped: %d\n",
			len(artifact.WalkForward.Slices), artifact.WalkForward.SkippedSlices))
		if artifact.WalkForward.EdgeHalfLifeDays != nil {
			builder.WriteString(fmt.Sprintf("Edge Half-Life: %d days\n", *artifact.WalkForward.EdgeHalfLifeDays))
		} else {
			builder.WriteString("Edge Half-Life: undefined (edge never decayed to half)\n")
		}
	}

	builder.WriteString("\nMonte Carlo\n")
	if artifact.MonteCarlo.Available {
		s := artifact.MonteCarlo.Summary
		builder.WriteString(fmt.Sprintf("Actual P&L: %+.2f  Simulated Mean: %+.2f  Luck Score: %+.2f\n",
			s["actual_pnl"], s["simulated_mean"], s["luck_score"]))
		builder.WriteString(fmt.Sprintf("P5/P50/P95: %+.2f / %+.2f / %+.2f\n", s["p5"], s["p50"], s["p95"]))
		span := s["p95"] - s["p5"]
		if luck := s["luck_score"]; span > 0 && (luck > span/2 || luck < -span/2) {
			builder.WriteString(fmt.Sprintf("Caveat: %s\n", artifact.MonteCarlo.Assumptions))
		}
	} else if artifact.MonteCarlo.ReasonNotRun != "" {
		builder.WriteString(fmt.Sprintf("Not run: %s\n", artifact.MonteCarlo.ReasonNotRun))
	} else {
		builder.WriteString(fmt.Sprintf("Not available: %s\n", artifact.MonteCarlo.ReasonNotAvailable))
	}

	if len(artifact.BetTape.Strongest) > 0 {
		builder.WriteString("\nBet Tape (strongest first)\n")
		for _, row := range artifact.BetTape.Strongest {
			builder.WriteString(fmt.Sprintf("  %s  %s  edge=%s\n",
				row.Meta.GameDate.Format("2006-01-02"), row.GameID, formatFloatPtr(row.EdgeVsImplied)))
		}
	}

	return builder.String()
}
