package analytics

import (
	"testing"

	"finsight/internal/domain/models"
	domsvc "finsight/internal/domain/service"
)

func factorTypes(p models.RiskProfile) map[string]models.RiskFactor {
	out := make(map[string]models.RiskFactor, len(p.Factors))
	for _, f := range p.Factors {
		out[f.Type] = f
	}
	return out
}

func TestScoreNoFactors(t *testing.T) {
	rate := 50.0
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(100, 200, 300),
		Volatility:      models.VolatilityProfile{Level: models.VolatilityLow},
		SavingsRate:     &rate,
	})
	if p.Score != 0 || p.Level != models.RiskLevelLow {
		t.Fatalf("score/level = %v/%q, want 0/low", p.Score, p.Level)
	}
	if len(p.Factors) != 0 {
		t.Fatalf("factors = %v, want none", p.Factors)
	}
}

func TestScoreWeightSum(t *testing.T) {
	// only low savings (25) and frequent spikes (20) trigger: score 45, medium
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(100, 200, 300),
		Volatility:      models.VolatilityProfile{Level: models.VolatilityLow},
		Spikes:          models.SpikeReport{Count: 4, Frequency: 15},
		TotalIncome:     1000,
		TotalExpense:    950,
	})
	if p.Score != 45 {
		t.Fatalf("score = %v, want 45", p.Score)
	}
	if p.Level != models.RiskLevelMedium {
		t.Fatalf("level = %q, want medium", p.Level)
	}
	got := factorTypes(p)
	if _, ok := got[models.RiskLowSavings]; !ok {
		t.Fatalf("missing low_savings factor: %v", p.Factors)
	}
	if _, ok := got[models.RiskFrequentSpikes]; !ok {
		t.Fatalf("missing frequent_spikes factor: %v", p.Factors)
	}
}

func TestScoreSavingsBoundary(t *testing.T) {
	// savings rate exactly 10.0 must not trigger
	p := NewScorer().Score("u1", domsvc.RiskInput{
		TotalIncome:  1000,
		TotalExpense: 900,
	})
	if _, ok := factorTypes(p)[models.RiskLowSavings]; ok {
		t.Fatalf("low_savings triggered at exactly 10%%")
	}
}

func TestScoreSavingsSeverity(t *testing.T) {
	rate := 4.0
	p := NewScorer().Score("u1", domsvc.RiskInput{SavingsRate: &rate})
	f, ok := factorTypes(p)[models.RiskLowSavings]
	if !ok {
		t.Fatalf("expected low_savings factor")
	}
	if f.Severity != models.SeverityHigh {
		t.Fatalf("severity = %q, want high", f.Severity)
	}
}

func TestScoreExternalSavingsOverride(t *testing.T) {
	// ledger figures would say 5%, but the supplied rate wins
	rate := 30.0
	p := NewScorer().Score("u1", domsvc.RiskInput{
		TotalIncome:  1000,
		TotalExpense: 950,
		SavingsRate:  &rate,
	})
	if _, ok := factorTypes(p)[models.RiskLowSavings]; ok {
		t.Fatalf("low_savings triggered despite external rate 30%%")
	}
}

func TestScoreNegativeTrend(t *testing.T) {
	rate := 50.0
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(500, -100, -100, -100),
		SavingsRate:     &rate,
	})
	f, ok := factorTypes(p)[models.RiskNegativeCashflowTrend]
	if !ok {
		t.Fatalf("expected negative_cashflow_trend factor")
	}
	if f.Severity != models.SeverityMedium {
		t.Fatalf("severity = %q, want medium", f.Severity)
	}

	// mean of the last 3 months below -500 escalates severity
	p = NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(500, -600, -600, -600),
		SavingsRate:     &rate,
	})
	f = factorTypes(p)[models.RiskNegativeCashflowTrend]
	if f.Severity != models.SeverityHigh {
		t.Fatalf("severity = %q, want high", f.Severity)
	}
}

func TestScoreNegativeTrendNeedsHistory(t *testing.T) {
	rate := 50.0
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(-100, -100),
		SavingsRate:     &rate,
	})
	if _, ok := factorTypes(p)[models.RiskNegativeCashflowTrend]; ok {
		t.Fatalf("trend factor triggered with 2 months of history")
	}
}

func TestScoreExpenseGrowth(t *testing.T) {
	rate := 50.0
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyExpenses: []float64{100, 100, 120, 120},
		SavingsRate:     &rate,
	})
	if _, ok := factorTypes(p)[models.RiskIncreasingExpenses]; !ok {
		t.Fatalf("expected increasing_expenses factor")
	}

	// growth of exactly 10% does not trigger
	p = NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyExpenses: []float64{100, 110},
		SavingsRate:     &rate,
	})
	if _, ok := factorTypes(p)[models.RiskIncreasingExpenses]; ok {
		t.Fatalf("increasing_expenses triggered at exactly 10%% growth")
	}
}

func TestScoreAllFactors(t *testing.T) {
	p := NewScorer().Score("u1", domsvc.RiskInput{
		MonthlyCashflow: monthlySeries(-700, -700, -700),
		Volatility:      models.VolatilityProfile{Level: models.VolatilityHigh},
		Spikes:          models.SpikeReport{Count: 5, Frequency: 20},
		MonthlyExpenses: []float64{100, 200},
		TotalIncome:     1000,
		TotalExpense:    990,
	})
	if p.Score != 115 {
		t.Fatalf("score = %v, want 115", p.Score)
	}
	if p.Level != models.RiskLevelHigh {
		t.Fatalf("level = %q, want high", p.Level)
	}
	if len(p.Factors) != 5 {
		t.Fatalf("factors = %d, want 5", len(p.Factors))
	}
}
