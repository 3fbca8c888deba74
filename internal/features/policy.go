package features

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/models"
)

// ExecContext selects the leakage policy for a run.
type ExecContext string

const (
	// ContextDeployable blocks post-game features: the run claims to be
	// reproducible at prediction time.
	ContextDeployable ExecContext = "deployable"
	// ContextDiagnostic allows everything; used for post-hoc analysis only.
	ContextDiagnostic ExecContext = "diagnostic"
)

// PolicyReport records what the filter dropped and why.
type PolicyReport struct {
	Context                 ExecContext `json:"context"`
	Requested               int         `json:"requested"`
	Allowed                 int         `json:"allowed"`
	DroppedPostGameFeatures []string    `json:"dropped_post_game_features,omitempty"`
}

// Filter is the single enforcement point for leakage. In deployable context
// every post_game descriptor is dropped and reported; in diagnostic context
// nothing is dropped on timing grounds. No other component may re-admit a
// dropped feature.
func Filter(requested []models.FeatureDescriptor, context ExecContext, logger *logrus.Logger) ([]models.FeatureDescriptor, PolicyReport) {
	report := PolicyReport{Context: context, Requested: len(requested)}

	if context != ContextDeployable {
		report.Allowed = len(requested)
		return requested, report
	}

	allowed := make([]models.FeatureDescriptor, 0, len(requested))
	for _, d := range requested {
		if d.Timing == models.TimingPostGame {
			report.DroppedPostGameFeatures = append(report.DroppedPostGameFeatures, d.Name)
			continue
		}
		allowed = append(allowed, d)
	}
	report.Allowed = len(allowed)

	if logger != nil && len(report.DroppedPostGameFeatures) > 0 {
		logger.WithFields(logrus.Fields{
			"context": context,
			"dropped": len(report.DroppedPostGameFeatures),
		}).Info("Dropped post-game features for deployable run")
	}

	return allowed, report
}
