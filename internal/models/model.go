package models

// TrainedModel is a fitted logistic-regression signal extractor. Produced
// once per run from a fixed training slice; never updated incrementally.
type TrainedModel struct {
	FeaturesUsed   []string           `json:"features_used"`
	FeatureWeights map[string]float64 `json:"feature_weights"`
	Bias           float64            `json:"bias"`
	Accuracy       float64            `json:"accuracy"`
	ROI            float64            `json:"roi"`
	TrainRows      int                `json:"train_rows"`
}

// ModelingStatus reports whether model fitting ran for an evaluation and, if
// not, why.
type ModelingStatus struct {
	Available          bool               `json:"available"`
	HasRun             bool               `json:"has_run"`
	ReasonNotRun       string             `json:"reason_not_run,omitempty"`
	ReasonNotAvailable string             `json:"reason_not_available,omitempty"`
	ModelType          string             `json:"model_type,omitempty"`
	Metrics            map[string]float64 `json:"metrics,omitempty"`
	FeatureImportance  map[string]float64 `json:"feature_importance,omitempty"`
}

// MonteCarloStatus mirrors ModelingStatus for the luck-vs-skill simulation.
type MonteCarloStatus struct {
	Available          bool               `json:"available"`
	HasRun             bool               `json:"has_run"`
	ReasonNotRun       string             `json:"reason_not_run,omitempty"`
	ReasonNotAvailable string             `json:"reason_not_available,omitempty"`
	Summary            map[string]float64 `json:"summary,omitempty"`
	Distribution       []float64          `json:"distribution,omitempty"`
	Assumptions        string             `json:"assumptions,omitempty"`
}
