package analytics

import (
	"fmt"
	"math"

	"finsight/internal/domain/models"
)

// VolatilityConfig holds the classification breakpoints. The defaults match
// the documented contract: CV < 20 low, < 50 medium, otherwise high; trend
// slope band +-0.1.
type VolatilityConfig struct {
	LowBreakpoint    float64
	MediumBreakpoint float64
	TrendBand        float64
}

func DefaultVolatilityConfig() VolatilityConfig {
	return VolatilityConfig{LowBreakpoint: 20, MediumBreakpoint: 50, TrendBand: 0.1}
}

// Volatility classifies a monthly cashflow series by its coefficient of
// variation.
type Volatility struct {
	cfg VolatilityConfig
}

// NewVolatility validates the breakpoints and fails fast on a bad
// configuration, since that is a defect rather than a data condition.
func NewVolatility(cfg VolatilityConfig) (*Volatility, error) {
	if cfg.LowBreakpoint <= 0 || cfg.MediumBreakpoint <= cfg.LowBreakpoint {
		return nil, fmt.Errorf("volatility breakpoints must be ascending and positive, got %v/%v",
			cfg.LowBreakpoint, cfg.MediumBreakpoint)
	}
	if cfg.TrendBand < 0 {
		return nil, fmt.Errorf("trend band must be non-negative, got %v", cfg.TrendBand)
	}
	return &Volatility{cfg: cfg}, nil
}

// Classify computes the volatility profile for an ordered monthly series.
// Fewer than 2 points is a defined edge case: zero score, low level,
// insufficient_data trend.
func (v *Volatility) Classify(userID string, series []models.MonthlyCashflow) models.VolatilityProfile {
	values := make([]float64, len(series))
	for i, m := range series {
		values[i] = m.Net
	}

	if len(values) < 2 {
		return models.VolatilityProfile{
			UserID:  userID,
			Level:   models.VolatilityLow,
			Monthly: values,
			Trend:   models.TrendInsufficientData,
		}
	}

	mean := Mean(values)
	std := SampleStdDev(values)

	cv := 0.0
	if mean != 0 {
		cv = std / math.Abs(mean) * 100
	}

	return models.VolatilityProfile{
		UserID:  userID,
		Score:   cv,
		Level:   v.level(cv),
		Mean:    mean,
		StdDev:  std,
		Monthly: values,
		Trend:   v.trend(values),
	}
}

func (v *Volatility) level(cv float64) string {
	switch {
	case cv < v.cfg.LowBreakpoint:
		return models.VolatilityLow
	case cv < v.cfg.MediumBreakpoint:
		return models.VolatilityMedium
	default:
		return models.VolatilityHigh
	}
}

func (v *Volatility) trend(values []float64) string {
	slope := Slope(values)
	switch {
	case slope > v.cfg.TrendBand:
		return models.TrendIncreasing
	case slope < -v.cfg.TrendBand:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
