// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for run artifacts.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunPersisted logs a persisted run artifact.
func (al *AuditLogger) LogRunPersisted(runID, targetName, microRowsPath, snapshotHash string, microRows int, createdAt time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"target_name":     targetName,
		"micro_rows_path": microRowsPath,
		"snapshot_hash":   snapshotHash,
		"micro_rows":      microRows,
		"created_at":      createdAt.Unix(),
	}).Info("Run artifact persisted")
}

// LogRunReplay logs a run artifact load.
func (al *AuditLogger) LogRunReplay(runID string, cacheHit bool) {
	al.WithFields(logrus.Fields{
		"run_id":    runID,
		"cache_hit": cacheHit,
	}).Info("Run artifact loaded")
}
