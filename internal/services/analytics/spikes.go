package analytics

import (
	"fmt"

	"finsight/internal/domain/models"
)

// DefaultSpikeMultiplier is the sensitivity used when callers pass none.
const DefaultSpikeMultiplier = 2.0

// Spikes flags days whose expense total statistically exceeds normal
// spending: total > mean + multiplier*stddev, strictly.
type Spikes struct{}

func NewSpikes() *Spikes { return &Spikes{} }

// Detect scans the full daily series. An empty history yields an empty
// report, not an error. The multiplier must be positive; a non-positive
// value is a caller defect.
func (s *Spikes) Detect(userID string, days []models.DailyExpense, multiplier float64) models.SpikeReport {
	if multiplier <= 0 {
		panic(fmt.Sprintf("spike multiplier must be positive, got %v", multiplier))
	}

	report := models.SpikeReport{UserID: userID, Events: []models.SpikeEvent{}}
	if len(days) == 0 {
		return report
	}

	totals := make([]float64, len(days))
	for i, d := range days {
		totals[i] = d.Total
	}
	mean := Mean(totals)
	std := SampleStdDev(totals)
	threshold := mean + multiplier*std

	for _, d := range days {
		if d.Total <= threshold {
			continue
		}
		ratio := 0.0
		if mean > 0 {
			ratio = d.Total / mean
		}
		report.Events = append(report.Events, models.SpikeEvent{
			Date:       d.Date,
			Total:      d.Total,
			TxCount:    d.Count,
			ByCategory: d.ByCategory,
			Ratio:      ratio,
		})
	}

	report.Count = len(report.Events)
	report.MeanDaily = mean
	report.Threshold = threshold
	report.Frequency = float64(report.Count) / float64(len(days)) * 100
	return report
}
