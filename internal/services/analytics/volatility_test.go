package analytics

import (
	"testing"
	"time"

	"finsight/internal/domain/models"
)

func monthlySeries(nets ...float64) []models.MonthlyCashflow {
	out := make([]models.MonthlyCashflow, len(nets))
	for i, n := range nets {
		out[i] = models.MonthlyCashflow{
			Month: models.Month{Year: 2024, Month: time.Month(i + 1)},
			Net:   n,
		}
	}
	return out
}

func newVolatility(t *testing.T) *Volatility {
	t.Helper()
	v, err := NewVolatility(DefaultVolatilityConfig())
	if err != nil {
		t.Fatalf("new volatility: %v", err)
	}
	return v
}

func TestClassifyZeroMean(t *testing.T) {
	v := newVolatility(t)
	p := v.Classify("u1", monthlySeries(1000, -1000))
	if p.Score != 0 {
		t.Fatalf("score = %v, want 0", p.Score)
	}
	if p.Level != models.VolatilityLow {
		t.Fatalf("level = %q, want low", p.Level)
	}
}

func TestClassifyInsufficientData(t *testing.T) {
	v := newVolatility(t)
	p := v.Classify("u1", monthlySeries(1000))
	if p.Trend != models.TrendInsufficientData {
		t.Fatalf("trend = %q, want insufficient_data", p.Trend)
	}
	if p.Level != models.VolatilityLow || p.Score != 0 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestClassifyLevels(t *testing.T) {
	v := newVolatility(t)

	// CV ~= 16.7: stable series
	if p := v.Classify("u1", monthlySeries(100, 120, 80, 110)); p.Level != models.VolatilityLow {
		t.Fatalf("level = %q (score %v), want low", p.Level, p.Score)
	}
	// CV ~= 43.6
	if p := v.Classify("u1", monthlySeries(100, 150, 60)); p.Level != models.VolatilityMedium {
		t.Fatalf("level = %q (score %v), want medium", p.Level, p.Score)
	}
	// CV well above 50
	if p := v.Classify("u1", monthlySeries(100, 500, -200)); p.Level != models.VolatilityHigh {
		t.Fatalf("level = %q (score %v), want high", p.Level, p.Score)
	}
}

func TestClassifyTrend(t *testing.T) {
	v := newVolatility(t)

	if p := v.Classify("u1", monthlySeries(100, 200, 300)); p.Trend != models.TrendIncreasing {
		t.Fatalf("trend = %q, want increasing", p.Trend)
	}
	if p := v.Classify("u1", monthlySeries(300, 200, 100)); p.Trend != models.TrendDecreasing {
		t.Fatalf("trend = %q, want decreasing", p.Trend)
	}
	if p := v.Classify("u1", monthlySeries(100, 100.05, 100)); p.Trend != models.TrendStable {
		t.Fatalf("trend = %q, want stable", p.Trend)
	}
}

func TestNewVolatilityRejectsBadBreakpoints(t *testing.T) {
	if _, err := NewVolatility(VolatilityConfig{LowBreakpoint: 50, MediumBreakpoint: 20}); err == nil {
		t.Fatalf("expected error for descending breakpoints")
	}
	if _, err := NewVolatility(VolatilityConfig{LowBreakpoint: 20, MediumBreakpoint: 50, TrendBand: -1}); err == nil {
		t.Fatalf("expected error for negative trend band")
	}
}
