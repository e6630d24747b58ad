package models

import "time"

// Volatility levels derived from the coefficient of variation.
const (
	VolatilityLow    = "low"
	VolatilityMedium = "medium"
	VolatilityHigh   = "high"
)

// Trend directions of the monthly cashflow series.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// VolatilityProfile describes how unstable a user's monthly cashflow is.
// Score is the coefficient of variation in percent; Level is a fixed step
// function of Score.
type VolatilityProfile struct {
	UserID  string    `json:"user_id"`
	Score   float64   `json:"volatility_score"`
	Level   string    `json:"volatility_level"`
	Mean    float64   `json:"mean_monthly_cashflow"`
	StdDev  float64   `json:"std_monthly_cashflow"`
	Monthly []float64 `json:"monthly_values"`
	Trend   string    `json:"trend"`
}

// SpikeEvent is a single day whose expense total exceeded the spike
// threshold. Ratio is total/mean, 0 when the mean is 0.
type SpikeEvent struct {
	Date       time.Time          `json:"date"`
	Total      float64            `json:"total_amount"`
	TxCount    int                `json:"transaction_count"`
	ByCategory map[string]float64 `json:"categories"`
	Ratio      float64            `json:"spike_ratio"`
}

// SpikeReport is the outcome of spike detection over a user's full
// daily-expense history.
type SpikeReport struct {
	UserID    string       `json:"user_id"`
	Events    []SpikeEvent `json:"spikes"`
	Count     int          `json:"spike_count"`
	MeanDaily float64      `json:"mean_daily_expense"`
	Threshold float64      `json:"threshold"`
	Frequency float64      `json:"spike_frequency"`
}

// Risk factor types. Each contributes a fixed weight when triggered.
const (
	RiskNegativeCashflowTrend = "negative_cashflow_trend"
	RiskHighVolatility        = "high_volatility"
	RiskFrequentSpikes        = "frequent_spikes"
	RiskLowSavings            = "low_savings"
	RiskIncreasingExpenses    = "increasing_expenses"
)

// Risk severities and levels.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// RiskFactor is one triggered risk condition.
type RiskFactor struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// RiskProfile is the weighted sum of triggered factors. Score can exceed
// 100 when many factors fire; Level is the primary signal.
type RiskProfile struct {
	UserID  string       `json:"user_id"`
	Score   float64      `json:"risk_score"`
	Level   string       `json:"risk_level"`
	Factors []RiskFactor `json:"risk_factors"`
}

// BehaviorSignals bundles the per-user analysis outputs consumed by the
// recommendation composer. Nil members mean "signal unavailable".
type BehaviorSignals struct {
	Volatility *VolatilityProfile `json:"volatility,omitempty"`
	Spikes     *SpikeReport       `json:"spikes,omitempty"`
	Risk       *RiskProfile       `json:"risks,omitempty"`
}

// UserInsights is the full per-user analysis bundle produced by the bulk
// analysis and the cache-warming jobs.
type UserInsights struct {
	UserID     string            `json:"user_id"`
	Volatility VolatilityProfile `json:"volatility"`
	Spikes     SpikeReport       `json:"spikes"`
	Risk       RiskProfile       `json:"risks"`
}

// CohortInsights aggregates the bulk analysis across all users. Per-user
// failures are collected in Errors rather than aborting the batch.
type CohortInsights struct {
	TotalUsers      int                     `json:"total_users"`
	Users           map[string]UserInsights `json:"user_analyses"`
	Errors          map[string]string       `json:"errors,omitempty"`
	AvgVolatility   float64                 `json:"avg_volatility"`
	AvgRiskScore    float64                 `json:"avg_risk_score"`
	TotalSpikes     int                     `json:"total_spikes"`
	HighRiskUsers   int                     `json:"high_risk_users"`
	MediumRiskUsers int                     `json:"medium_risk_users"`
	LowRiskUsers    int                     `json:"low_risk_users"`
	GeneratedAt     time.Time               `json:"generated_at"`
}
