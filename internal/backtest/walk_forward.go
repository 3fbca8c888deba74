package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/dataset"
	"github.com/yourusername/theory-engine/internal/ml"
	"github.com/yourusername/theory-engine/internal/models"
)

// WalkForwardConfig configures the rolling train/test windows, all in days.
type WalkForwardConfig struct {
	TrainDays int `json:"train_days"`
	TestDays  int `json:"test_days"`
	StepDays  int `json:"step_days"`
}

// Slices with fewer examples than these are skipped rather than reported.
const (
	minTrainRows = 30
	minTestRows  = 5
)

// WalkforwardSlice is the result of one rolling window. StartDate/EndDate
// bound the test window; the training window immediately precedes StartDate.
type WalkforwardSlice struct {
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	SampleSize      int       `json:"sample_size"`
	HitRate         float64   `json:"hit_rate"`
	ROIUnits        float64   `json:"roi_units"`
	EdgeAvg         *float64  `json:"edge_avg"`
	OddsCoveragePct float64   `json:"odds_coverage_pct"`
}

// WalkForwardResult is the ordered slice sequence plus the edge half-life
// estimate. EdgeHalfLifeDays is nil when the edge never decays to half of the
// first slice's edge.
type WalkForwardResult struct {
	Slices           []WalkforwardSlice `json:"slices"`
	SkippedSlices    int                `json:"skipped_slices"`
	EdgeHalfLifeDays *int               `json:"edge_half_life_days"`
}

// RunWalkForward retrains a fresh model on each trailing window and evaluates
// it only on the window immediately following. A game's date decides which
// window it belongs to; no game ever appears in both sides of one slice.
func RunWalkForward(aligned dataset.Aligned, names []string, rowsByGame map[uuid.UUID]*models.MicroRow, cfg WalkForwardConfig, log *logrus.Entry) (WalkForwardResult, error) {
	if cfg.TrainDays <= 0 || cfg.TestDays <= 0 {
		return WalkForwardResult{}, fmt.Errorf("walk-forward windows must be positive: train=%d test=%d", cfg.TrainDays, cfg.TestDays)
	}
	if cfg.StepDays <= 0 {
		cfg.StepDays = cfg.TestDays
	}

	dates := make([]time.Time, len(aligned.GameIDs))
	minDate, maxDate := time.Time{}, time.Time{}
	for i, id := range aligned.GameIDs {
		row, ok := rowsByGame[id]
		if !ok {
			return WalkForwardResult{}, fmt.Errorf("no micro-row for game %s", id)
		}
		dates[i] = row.Day()
		if minDate.IsZero() || dates[i].Before(minDate) {
			minDate = dates[i]
		}
		if maxDate.IsZero() || dates[i].After(maxDate) {
			maxDate = dates[i]
		}
	}
	if minDate.IsZero() {
		return WalkForwardResult{}, fmt.Errorf("walk-forward requires dated rows")
	}

	result := WalkForwardResult{Slices: []WalkforwardSlice{}}
	for cursor := minDate.AddDate(0, 0, cfg.TrainDays); !cursor.After(maxDate); cursor = cursor.AddDate(0, 0, cfg.StepDays) {
		trainStart := cursor.AddDate(0, 0, -cfg.TrainDays)
		testEnd := cursor.AddDate(0, 0, cfg.TestDays)

		trainIdx := indexesBetween(dates, trainStart, cursor)
		testIdx := indexesBetween(dates, cursor, testEnd)
		if len(trainIdx) < minTrainRows || len(testIdx) < minTestRows {
			result.SkippedSlices++
			continue
		}

		model, _, err := ml.Train(subset(aligned, trainIdx), names)
		if err != nil {
			log.WithError(err).WithField("test_start", cursor.Format("2006-01-02")).Warn("Skipping walk-forward slice, training failed")
			result.SkippedSlices++
			continue
		}

		result.Slices = append(result.Slices, scoreSlice(model, aligned, testIdx, rowsByGame, cursor, testEnd))
	}

	result.EdgeHalfLifeDays = edgeHalfLife(result.Slices)
	return result, nil
}

func scoreSlice(model models.TrainedModel, aligned dataset.Aligned, testIdx []int, rowsByGame map[uuid.UUID]*models.MicroRow, start, end time.Time) WalkforwardSlice {
	slice := WalkforwardSlice{StartDate: start, EndDate: end, SampleSize: len(testIdx)}

	hits := 0
	pnlSum, edgeSum := 0.0, 0.0
	pnlN, edgeN, withOdds := 0, 0, 0
	for _, i := range testIdx {
		features := map[string]float64{}
		for _, name := range model.FeaturesUsed {
			if v := aligned.Columns[name][i]; v != nil {
				features[name] = *v
			}
		}
		prob := ml.Predict(model, features)
		predicted := 0.0
		if prob >= 0.5 {
			predicted = 1.0
		}
		if predicted == aligned.Target[i] {
			hits++
		}

		row := rowsByGame[aligned.GameIDs[i]]
		if row.PnLUnits != nil {
			pnlSum += *row.PnLUnits
			pnlN++
		}
		if row.ImpliedProb != nil {
			withOdds++
			edgeSum += prob - *row.ImpliedProb
			edgeN++
		}
	}

	slice.HitRate = float64(hits) / float64(len(testIdx))
	if pnlN > 0 {
		slice.ROIUnits = pnlSum / float64(pnlN)
	}
	if edgeN > 0 {
		avg := edgeSum / float64(edgeN)
		slice.EdgeAvg = &avg
	}
	slice.OddsCoveragePct = 100 * float64(withOdds) / float64(len(testIdx))
	return slice
}

// edgeHalfLife finds the first slice whose edge has decayed to half of the
// initial slice's edge, measured in days from the initial test start. Slices
// without an edge are passed over; a non-positive initial edge has no
// half-life.
func edgeHalfLife(slices []WalkforwardSlice) *int {
	ordered := append([]WalkforwardSlice{}, slices...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartDate.Before(ordered[j].StartDate) })

	var initial *WalkforwardSlice
	for i := range ordered {
		if ordered[i].EdgeAvg != nil {
			initial = &ordered[i]
			break
		}
	}
	if initial == nil || *initial.EdgeAvg <= 0 {
		return nil
	}
	half := *initial.EdgeAvg / 2
	for i := range ordered {
		s := ordered[i]
		if s.EdgeAvg == nil || !s.StartDate.After(initial.StartDate) {
			continue
		}
		if *s.EdgeAvg <= half {
			days := int(s.StartDate.Sub(initial.StartDate).Hours() / 24)
			return &days
		}
	}
	return nil
}

// indexesBetween returns the row indexes with from <= date < to.
func indexesBetween(dates []time.Time, from, to time.Time) []int {
	idx := []int{}
	for i, d := range dates {
		if !d.Before(from) && d.Before(to) {
			idx = append(idx, i)
		}
	}
	return idx
}

func subset(aligned dataset.Aligned, idx []int) dataset.Aligned {
	sub := dataset.Aligned{
		Columns: make(map[string][]*float64, len(aligned.Columns)),
		Target:  make([]float64, len(idx)),
		GameIDs: make([]uuid.UUID, len(idx)),
	}
	for name, col := range aligned.Columns {
		vals := make([]*float64, len(idx))
		for j, i := range idx {
			vals[j] = col[i]
		}
		sub.Columns[name] = vals
	}
	for j, i := range idx {
		sub.Target[j] = aligned.Target[i]
		sub.GameIDs[j] = aligned.GameIDs[i]
	}
	return sub
}
