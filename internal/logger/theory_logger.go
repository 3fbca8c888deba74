// Package logger provides theory-evaluation logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// TheoryLogger provides dedicated logging for evaluation pipeline stages.
type TheoryLogger struct {
	*logrus.Entry
}

// NewTheoryLogger creates a new theory logger.
func NewTheoryLogger(baseLogger *logrus.Logger) *TheoryLogger {
	return &TheoryLogger{
		Entry: baseLogger.WithField("component", "theory"),
	}
}

// LogFeaturePipeline logs the outcome of generation, policy filtering and computation.
func (tl *TheoryLogger) LogFeaturePipeline(targetName string, generated, allowed, droppedPostGame, computedRows int) {
	tl.WithFields(logrus.Fields{
		"target_name":        targetName,
		"features_generated": generated,
		"features_allowed":   allowed,
		"dropped_post_game":  droppedPostGame,
		"computed_rows":      computedRows,
	}).Info("Feature pipeline completed")
}

// LogDatasetShape logs cleaning and pruning results.
func (tl *TheoryLogger) LogDatasetShape(rawRows, rowsAfter, droppedNull, droppedNonNumeric, prunedColumns int) {
	tl.WithFields(logrus.Fields{
		"raw_rows":            rawRows,
		"rows_after_cleaning": rowsAfter,
		"dropped_null":        droppedNull,
		"dropped_non_numeric": droppedNonNumeric,
		"pruned_columns":      prunedColumns,
	}).Info("Dataset prepared")
}

// LogEvaluationCompleted logs the verdict for a target.
func (tl *TheoryLogger) LogEvaluationCompleted(targetName, verdict string, sampleSize int, hitRate, baseline float64) {
	tl.WithFields(logrus.Fields{
		"target_name": targetName,
		"verdict":     verdict,
		"sample_size": sampleSize,
		"hit_rate":    hitRate,
		"baseline":    baseline,
	}).Info("Theory evaluation completed")
}

// LogTriggerSummary logs micro-row trigger counts.
func (tl *TheoryLogger) LogTriggerSummary(targetName string, totalRows, triggered, withOdds int) {
	tl.WithFields(logrus.Fields{
		"target_name": targetName,
		"total_rows":  totalRows,
		"triggered":   triggered,
		"with_odds":   withOdds,
	}).Info("Micro-rows built")
}

// LogExposureSelection logs exposure control results.
func (tl *TheoryLogger) LogExposureSelection(targetName string, triggered, selected, dropped, activeDays int) {
	tl.WithFields(logrus.Fields{
		"target_name": targetName,
		"triggered":   triggered,
		"selected":    selected,
		"dropped":     dropped,
		"active_days": activeDays,
	}).Info("Exposure controls applied")
}
