package analytics

import (
	"fmt"

	"finsight/internal/domain/models"
	domsvc "finsight/internal/domain/service"
)

// Factor weights. The composite score is the plain sum of triggered weights:
// it can exceed 100 when many factors fire, and callers treat the level as
// the primary signal.
const (
	weightNegativeTrend      = 30
	weightHighVolatility     = 25
	weightFrequentSpikes     = 20
	weightLowSavings         = 25
	weightIncreasingExpenses = 15
)

// Trigger thresholds.
const (
	severeTrendCutoff   = -500.0 // 3-month mean below this is high severity
	spikeFrequencyLimit = 10.0   // percent of expense days
	lowSavingsLimit     = 10.0   // strict less-than
	severeSavingsCutoff = 5.0
	expenseGrowthLimit  = 0.10
)

// Level breakpoints.
const (
	riskMediumBreakpoint = 40.0
	riskHighBreakpoint   = 70.0
)

// Scorer evaluates five independent, order-insensitive risk factors. Factors
// are not mutually exclusive.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

// Score sums the weights of triggered factors and maps the sum to a level.
func (s *Scorer) Score(userID string, in domsvc.RiskInput) models.RiskProfile {
	p := models.RiskProfile{
		UserID:  userID,
		Level:   models.RiskLevelLow,
		Factors: []models.RiskFactor{},
	}

	if f, ok := negativeTrendFactor(in.MonthlyCashflow); ok {
		p.Factors = append(p.Factors, f)
		p.Score += weightNegativeTrend
	}
	if in.Volatility.Level == models.VolatilityHigh {
		p.Factors = append(p.Factors, models.RiskFactor{
			Type:        models.RiskHighVolatility,
			Severity:    models.SeverityHigh,
			Description: "High cashflow volatility indicates unstable finances",
		})
		p.Score += weightHighVolatility
	}
	if in.Spikes.Frequency > spikeFrequencyLimit {
		p.Factors = append(p.Factors, models.RiskFactor{
			Type:        models.RiskFrequentSpikes,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("Frequent expense spikes (%d detected)", in.Spikes.Count),
		})
		p.Score += weightFrequentSpikes
	}
	if f, ok := lowSavingsFactor(in); ok {
		p.Factors = append(p.Factors, f)
		p.Score += weightLowSavings
	}
	if f, ok := expenseGrowthFactor(in.MonthlyExpenses); ok {
		p.Factors = append(p.Factors, f)
		p.Score += weightIncreasingExpenses
	}

	if p.Score < 0 {
		p.Score = 0
	}
	switch {
	case p.Score >= riskHighBreakpoint:
		p.Level = models.RiskLevelHigh
	case p.Score >= riskMediumBreakpoint:
		p.Level = models.RiskLevelMedium
	}
	return p
}

// negativeTrendFactor fires when the mean of the last 3 monthly cashflow
// values is negative. Needs at least 3 months of history.
func negativeTrendFactor(series []models.MonthlyCashflow) (models.RiskFactor, bool) {
	if len(series) < 3 {
		return models.RiskFactor{}, false
	}
	recent := series[len(series)-3:]
	sum := 0.0
	for _, m := range recent {
		sum += m.Net
	}
	mean := sum / 3
	if mean >= 0 {
		return models.RiskFactor{}, false
	}
	severity := models.SeverityMedium
	if mean < severeTrendCutoff {
		severity = models.SeverityHigh
	}
	return models.RiskFactor{
		Type:        models.RiskNegativeCashflowTrend,
		Severity:    severity,
		Description: "Consistent negative cashflow in recent months",
	}, true
}

// lowSavingsFactor fires on a savings rate strictly below 10%. An externally
// supplied rate takes precedence over the self-computed one.
func lowSavingsFactor(in domsvc.RiskInput) (models.RiskFactor, bool) {
	rate := 0.0
	if in.SavingsRate != nil {
		rate = *in.SavingsRate
	} else if in.TotalIncome != 0 {
		rate = (in.TotalIncome - in.TotalExpense) / in.TotalIncome * 100
	}
	if rate >= lowSavingsLimit {
		return models.RiskFactor{}, false
	}
	severity := models.SeverityMedium
	if rate < severeSavingsCutoff {
		severity = models.SeverityHigh
	}
	return models.RiskFactor{
		Type:        models.RiskLowSavings,
		Severity:    severity,
		Description: fmt.Sprintf("Low savings rate: %.1f%%", rate),
	}, true
}

// expenseGrowthFactor compares the chronological first and second halves of
// the monthly expense series and fires on growth above 10%.
func expenseGrowthFactor(monthlyExpenses []float64) (models.RiskFactor, bool) {
	if len(monthlyExpenses) < 2 {
		return models.RiskFactor{}, false
	}
	half := len(monthlyExpenses) / 2
	first := Mean(monthlyExpenses[:half])
	second := Mean(monthlyExpenses[half:])
	if first == 0 {
		return models.RiskFactor{}, false
	}
	growth := (second - first) / first
	if growth <= expenseGrowthLimit {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Type:        models.RiskIncreasingExpenses,
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("Expenses increasing at %.1f%% rate", growth*100),
	}, true
}
