// Package logger provides model-training logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for model builder operations.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogModelTraining logs a completed training run.
func (ml *MLLogger) LogModelTraining(targetName string, trainRows, featuresUsed, featuresPruned int, accuracy, roi float64) {
	ml.WithFields(logrus.Fields{
		"target_name":     targetName,
		"train_rows":      trainRows,
		"features_used":   featuresUsed,
		"features_pruned": featuresPruned,
		"accuracy":        accuracy,
		"roi":             roi,
	}).Info("Model training completed")
}

// LogModelSkipped logs why no model was trained for a run.
func (ml *MLLogger) LogModelSkipped(targetName, reason string) {
	ml.WithFields(logrus.Fields{
		"target_name": targetName,
		"reason":      reason,
	}).Info("Model training skipped")
}

// LogWalkForward logs a walk-forward backtest result.
func (ml *MLLogger) LogWalkForward(targetName string, slices, skipped int, halfLifeDays *int) {
	fields := logrus.Fields{
		"target_name":    targetName,
		"slices":         slices,
		"skipped_slices": skipped,
	}
	if halfLifeDays != nil {
		fields["edge_half_life_days"] = *halfLifeDays
	}
	ml.WithFields(fields).Info("Walk-forward evaluation completed")
}
