// Package ml provides the from-scratch logistic-regression signal extractor.
// It is a lightweight diagnostic tool, not a production classifier.
package ml

import (
	"fmt"
	"math"

	"github.com/yourusername/theory-engine/internal/dataset"
	"github.com/yourusername/theory-engine/internal/models"
)

const (
	epochs         = 200
	learningRate   = 0.1
	zClamp         = 50.0
	nearZeroWeight = 1e-6
	roiConfidence  = 0.55
)

// Train fits a logistic regression with batch gradient descent over rows
// where every feature is present. Features whose fitted weight collapses to
// near zero are pruned from the model and reported the same way the
// pre-training pruner reports drops.
func Train(aligned dataset.Aligned, names []string) (models.TrainedModel, []dataset.DroppedColumn, error) {
	rows, labels := denseRows(aligned, names)
	if len(rows) == 0 {
		return models.TrainedModel{}, nil, fmt.Errorf("no complete rows to train on")
	}

	weights := make([]float64, len(names))
	bias := 0.0

	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([]float64, len(names))
		gradB := 0.0
		for i, row := range rows {
			p := sigmoid(dot(weights, row) + bias)
			err := p - labels[i]
			for j, x := range row {
				gradW[j] += err * x
			}
			gradB += err
		}
		n := float64(len(rows))
		for j := range weights {
			weights[j] -= learningRate * gradW[j] / n
		}
		bias -= learningRate * gradB / n
	}

	model := models.TrainedModel{
		FeatureWeights: make(map[string]float64, len(names)),
		Bias:           bias,
		TrainRows:      len(rows),
	}
	dropped := []dataset.DroppedColumn{}
	for j, name := range names {
		if math.Abs(weights[j]) <= nearZeroWeight {
			dropped = append(dropped, dataset.DroppedColumn{Name: name, Reason: "near_zero_weight"})
			continue
		}
		model.FeaturesUsed = append(model.FeaturesUsed, name)
		model.FeatureWeights[name] = weights[j]
	}

	model.Accuracy, model.ROI = score(model, names, weights, rows, labels)
	return model, dropped, nil
}

// Predict returns the model's win probability for one feature vector.
// Features missing from the row contribute nothing.
func Predict(model models.TrainedModel, features map[string]float64) float64 {
	z := model.Bias
	for name, w := range model.FeatureWeights {
		if x, ok := features[name]; ok {
			z += w * x
		}
	}
	return sigmoid(z)
}

// score computes threshold-0.5 accuracy over the training slice, and ROI as
// mean P&L at a flat 1-unit even-money stake over predictions with
// confidence at or above the qualifying threshold.
func score(model models.TrainedModel, names []string, weights []float64, rows [][]float64, labels []float64) (float64, float64) {
	correct := 0
	qualifying := 0
	pnl := 0.0
	for i, row := range rows {
		p := sigmoid(dot(weights, row) + model.Bias)
		predicted := 0.0
		if p >= 0.5 {
			predicted = 1.0
		}
		hit := predicted == labels[i]
		if hit {
			correct++
		}
		confidence := math.Max(p, 1.0-p)
		if confidence >= roiConfidence {
			qualifying++
			if hit {
				pnl += 1.0
			} else {
				pnl -= 1.0
			}
		}
	}
	accuracy := float64(correct) / float64(len(rows))
	roi := 0.0
	if qualifying > 0 {
		roi = pnl / float64(qualifying)
	}
	return accuracy, roi
}

// denseRows keeps only rows with every feature present; gradient descent has
// no null semantics.
func denseRows(aligned dataset.Aligned, names []string) ([][]float64, []float64) {
	rows := [][]float64{}
	labels := []float64{}
	rowCount := len(aligned.Target)
	for i := 0; i < rowCount; i++ {
		row := make([]float64, len(names))
		complete := true
		for j, name := range names {
			col, ok := aligned.Columns[name]
			if !ok || i >= len(col) || col[i] == nil {
				complete = false
				break
			}
			row[j] = *col[i]
		}
		if !complete {
			continue
		}
		rows = append(rows, row)
		labels = append(labels, aligned.Target[i])
	}
	return rows, labels
}

func dot(w, x []float64) float64 {
	sum := 0.0
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}

// sigmoid clamps |z| to avoid overflow in exp.
func sigmoid(z float64) float64 {
	if z > zClamp {
		z = zClamp
	} else if z < -zClamp {
		z = -zClamp
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
