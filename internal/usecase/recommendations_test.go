package usecase

import (
	"context"
	"fmt"
	"testing"

	"finsight/internal/domain/models"
	"finsight/internal/repository"
	"finsight/internal/services/recommend"
)

// seedThreeMonthScenario builds a ledger with monthly cashflow
// [500, -200, -600] and one expense day far above the daily mean.
func seedThreeMonthScenario(t *testing.T, ingest *IngestUseCase, userID string) {
	t.Helper()
	records := []models.TransactionRecord{
		record("2024-01-01", "1100", "income", "salary"),
		record("2024-01-15", "500", "expense", "electronics"),
	}
	for d := 2; d <= 6; d++ {
		records = append(records, record(fmt.Sprintf("2024-01-%02d", d), "20", "expense", "groceries"))
	}
	for d := 1; d <= 10; d++ {
		records = append(records, record(fmt.Sprintf("2024-02-%02d", d), "20", "expense", "groceries"))
	}
	for d := 1; d <= 30; d++ {
		records = append(records, record(fmt.Sprintf("2024-03-%02d", d), "20", "expense", "groceries"))
	}
	seedLedger(t, ingest, userID, records)
}

func TestGenerateRecommendationsEndToEnd(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))
	insights := newTestInsights(t, ledger, nil, m)
	composer := recommend.NewComposer()
	uc := NewRecommendUseCase(insights, composer, nil, nil, nil, newTestLogger(t))
	ctx := context.Background()

	seedThreeMonthScenario(t, ingest, "u1")

	signals, err := insights.Signals(ctx, "u1", models.FinancialSummary{SavingsRate: 25, HasSavingsRate: true})
	if err != nil {
		t.Fatalf("signals: %v", err)
	}
	if signals.Volatility.Level != models.VolatilityHigh {
		t.Fatalf("volatility = %q (score %v), want high", signals.Volatility.Level, signals.Volatility.Score)
	}
	if signals.Spikes.Count != 1 {
		t.Fatalf("spikes = %d, want 1", signals.Spikes.Count)
	}
	if signals.Risk.Score < 55 {
		t.Fatalf("risk score = %v, want >= 55", signals.Risk.Score)
	}
	if signals.Risk.Level != models.RiskLevelMedium {
		t.Fatalf("risk level = %q, want medium", signals.Risk.Level)
	}
	types := make(map[string]bool, len(signals.Risk.Factors))
	for _, f := range signals.Risk.Factors {
		types[f.Type] = true
	}
	if !types[models.RiskNegativeCashflowTrend] || !types[models.RiskHighVolatility] {
		t.Fatalf("risk factors = %v", signals.Risk.Factors)
	}

	recs, err := uc.Generate(ctx, "u1", &models.FinancialSummary{SavingsRate: 25})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	byCategory := make(map[string]models.Recommendation, len(recs))
	for _, r := range recs {
		byCategory[r.Category] = r
	}
	if _, ok := byCategory[models.RecCashflowStabilization]; !ok {
		t.Fatalf("missing cashflow_stabilization: %v", recs)
	}
	risk, ok := byCategory[models.RecRiskMitigation]
	if !ok {
		t.Fatalf("missing risk_mitigation: %v", recs)
	}
	if risk.Priority != models.PriorityMedium {
		t.Fatalf("risk_mitigation priority = %q, want medium", risk.Priority)
	}
	if _, ok := byCategory[models.RecSavingsImprovement]; ok {
		t.Fatalf("savings_improvement fired at a 25%% rate")
	}

	hist := uc.History("u1")
	if len(hist) != len(recs) {
		t.Fatalf("history = %d, want %d", len(hist), len(recs))
	}
	summary := uc.Summary("u1")
	if summary.Total != len(recs) {
		t.Fatalf("summary total = %d, want %d", summary.Total, len(recs))
	}
}

func TestGenerateUnknownUserIsEmpty(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	insights := newTestInsights(t, ledger, nil, m)
	uc := NewRecommendUseCase(insights, recommend.NewComposer(), nil, nil, nil, newTestLogger(t))

	recs, err := uc.Generate(context.Background(), "nobody", nil)
	if err != nil {
		t.Fatalf("generate err = %v, want nil for unknown user", err)
	}
	if len(recs) != 0 {
		t.Fatalf("recommendations = %+v, want none for unknown user", recs)
	}
}

func TestGenerateSavingsBackfilledFromLedger(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))
	insights := newTestInsights(t, ledger, nil, m)
	uc := NewRecommendUseCase(insights, recommend.NewComposer(), nil, nil, nil, newTestLogger(t))
	ctx := context.Background()

	// stable cashflow, savings rate 5% from the ledger itself
	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-01-05", "1000", "income", "salary"),
		record("2024-01-20", "950", "expense", "rent"),
		record("2024-02-05", "1000", "income", "salary"),
		record("2024-02-20", "950", "expense", "rent"),
	})

	recs, err := uc.Generate(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var savings *models.Recommendation
	for i := range recs {
		if recs[i].Category == models.RecSavingsImprovement {
			savings = &recs[i]
		}
	}
	if savings == nil {
		t.Fatalf("savings_improvement missing with computed 5%% rate: %v", recs)
	}
}
