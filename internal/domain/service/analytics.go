package service

import (
	"context"

	"finsight/internal/domain/models"
)

// VolatilityAnalyzer classifies a monthly cashflow series.
type VolatilityAnalyzer interface {
	Classify(userID string, series []models.MonthlyCashflow) models.VolatilityProfile
}

// SpikeDetector flags days whose expense total exceeds normal spending.
type SpikeDetector interface {
	Detect(userID string, days []models.DailyExpense, multiplier float64) models.SpikeReport
}

// RiskScorer combines behavior signals into a composite risk profile.
type RiskScorer interface {
	Score(userID string, in RiskInput) models.RiskProfile
}

// RiskInput is everything the scorer evaluates. SavingsRate may come from an
// external reporting layer instead of TotalIncome/TotalExpense.
type RiskInput struct {
	MonthlyCashflow []models.MonthlyCashflow
	Volatility      models.VolatilityProfile
	Spikes          models.SpikeReport
	MonthlyExpenses []float64
	TotalIncome     float64
	TotalExpense    float64
	SavingsRate     *float64
}

// Recommender maps signals to recommendation records and keeps history.
type Recommender interface {
	Generate(userID string, summary models.FinancialSummary, signals models.BehaviorSignals) []models.Recommendation
	History(userID string) []models.Recommendation
	Summary(userID string) models.RecommendationSummary
}

// SummaryProvider supplies precomputed financial summaries from an external
// reporting layer. Returning (nil, nil) means "not available".
type SummaryProvider interface {
	FinancialSummary(ctx context.Context, userID string) (*models.FinancialSummary, error)
}
