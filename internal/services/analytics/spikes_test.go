package analytics

import (
	"testing"
	"time"

	"finsight/internal/domain/models"
)

func dailySeries(totals ...float64) []models.DailyExpense {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.DailyExpense, len(totals))
	for i, total := range totals {
		out[i] = models.DailyExpense{
			Date:  base.AddDate(0, 0, i),
			Total: total,
			Count: 1,
		}
	}
	return out
}

func TestDetectThreshold(t *testing.T) {
	s := NewSpikes()
	// mean 100, sample stddev 50, multiplier 2 => threshold 200
	report := s.Detect("u1", dailySeries(50, 100, 150), 2.0)
	if !almostEqual(report.MeanDaily, 100) {
		t.Fatalf("mean = %v, want 100", report.MeanDaily)
	}
	if !almostEqual(report.Threshold, 200) {
		t.Fatalf("threshold = %v, want 200", report.Threshold)
	}
	if report.Count != 0 {
		t.Fatalf("count = %d, want 0", report.Count)
	}
}

func TestDetectBoundaryIsStrict(t *testing.T) {
	s := NewSpikes()
	// identical totals give stddev 0 and threshold == total; equality is not
	// a spike
	report := s.Detect("u1", dailySeries(100, 100, 100, 100), 2.0)
	if report.Count != 0 {
		t.Fatalf("count = %d, want 0", report.Count)
	}
}

func TestDetectFlagsOutlier(t *testing.T) {
	s := NewSpikes()
	totals := make([]float64, 10)
	for i := range totals {
		totals[i] = 10
	}
	totals[9] = 100
	report := s.Detect("u1", dailySeries(totals...), DefaultSpikeMultiplier)

	if report.Count != 1 {
		t.Fatalf("count = %d, want 1", report.Count)
	}
	ev := report.Events[0]
	if ev.Total != 100 {
		t.Fatalf("event total = %v, want 100", ev.Total)
	}
	// mean 19, ratio 100/19
	if !almostEqual(ev.Ratio, 100.0/19.0) {
		t.Fatalf("ratio = %v, want %v", ev.Ratio, 100.0/19.0)
	}
	if !almostEqual(report.Frequency, 10) {
		t.Fatalf("frequency = %v, want 10", report.Frequency)
	}
}

func TestDetectEmptyHistory(t *testing.T) {
	s := NewSpikes()
	report := s.Detect("u1", nil, 2.0)
	if report.Count != 0 || report.Events == nil || len(report.Events) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestDetectPanicsOnNonPositiveMultiplier(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewSpikes().Detect("u1", dailySeries(100), 0)
}
