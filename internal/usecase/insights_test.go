package usecase

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"finsight/internal/domain/models"
	"finsight/internal/repository"
	"finsight/internal/services/analytics"
	"finsight/pkg/cache"
)

func seedLedger(t *testing.T, uc *IngestUseCase, userID string, records []models.TransactionRecord) {
	t.Helper()
	result, err := uc.Ingest(context.Background(), userID, records)
	if err != nil {
		t.Fatalf("seed ingest: %v", err)
	}
	if len(result.Rejected) != 0 {
		t.Fatalf("seed records rejected: %v", result.Rejected)
	}
}

func TestInsightsUnknownUserDefaults(t *testing.T) {
	insights := newTestInsights(t, repository.NewMemoryLedger(), nil, newFakeMetrics())
	ctx := context.Background()

	vol, err := insights.AnalyzeVolatility(ctx, "nobody")
	if err != nil {
		t.Fatalf("volatility err = %v, want nil", err)
	}
	if vol.Score != 0 || vol.Level != models.VolatilityLow || vol.Trend != models.TrendInsufficientData {
		t.Fatalf("volatility = %+v, want zero score, low level, insufficient_data trend", vol)
	}

	spikes, err := insights.DetectSpikes(ctx, "nobody", 2.0)
	if err != nil {
		t.Fatalf("spikes err = %v, want nil", err)
	}
	if spikes.Count != 0 || len(spikes.Events) != 0 {
		t.Fatalf("spikes = %+v, want empty report", spikes)
	}

	risk, err := insights.ScoreRisk(ctx, "nobody")
	if err != nil {
		t.Fatalf("risk err = %v, want nil", err)
	}
	// A zero-income ledger has a 0% savings rate, so only that factor fires.
	if risk.Score != 25 || risk.Level != models.RiskLevelLow {
		t.Fatalf("risk = %+v, want score 25 level low", risk)
	}
	if len(risk.Factors) != 1 || risk.Factors[0].Type != models.RiskLowSavings {
		t.Fatalf("factors = %+v, want single low_savings factor", risk.Factors)
	}
}

func TestAnalyzeVolatilityIdempotent(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))
	insights := newTestInsights(t, ledger, cache.NewMemoryCache(), m)

	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-01-05", "1000", "income", "salary"),
		record("2024-02-05", "500", "income", "salary"),
		record("2024-02-20", "700", "expense", "rent"),
		record("2024-03-05", "1500", "income", "salary"),
	})

	ctx := context.Background()
	first, err := insights.AnalyzeVolatility(ctx, "u1")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := insights.AnalyzeVolatility(ctx, "u1")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestDetectSpikesDefaultsMultiplier(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, newFakeMetrics(), newTestLogger(t))
	insights := newTestInsights(t, ledger, nil, newFakeMetrics())

	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-01-01", "20", "expense", "food"),
		record("2024-01-02", "20", "expense", "food"),
	})

	report, err := insights.DetectSpikes(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("spikes: %v", err)
	}
	if report.Count != 0 {
		t.Fatalf("count = %d, want 0", report.Count)
	}
}

func TestDetectSpikesConfiguredMultiplier(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))
	vol, err := analytics.NewVolatility(analytics.DefaultVolatilityConfig())
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	insights := NewInsightsUseCase(
		ledger,
		analytics.NewAggregator(),
		vol,
		analytics.NewSpikes(),
		analytics.NewScorer(),
		nil,
		InsightTTL{},
		3.0,
		m,
		newTestLogger(t),
	)
	ctx := context.Background()

	// nine quiet days plus one outlier: a spike at multiplier 2, not at 3
	records := make([]models.TransactionRecord, 0, 10)
	for day := 1; day <= 9; day++ {
		records = append(records, record(fmt.Sprintf("2024-01-%02d", day), "10", "expense", "food"))
	}
	records = append(records, record("2024-01-10", "100", "expense", "electronics"))
	seedLedger(t, ingest, "u1", records)

	report, err := insights.DetectSpikes(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("spikes: %v", err)
	}
	if report.Count != 0 {
		t.Fatalf("count = %d, want 0 with configured multiplier 3.0", report.Count)
	}

	report, err = insights.DetectSpikes(ctx, "u1", 2.0)
	if err != nil {
		t.Fatalf("spikes: %v", err)
	}
	if report.Count != 1 {
		t.Fatalf("count = %d, want 1 with explicit multiplier 2.0", report.Count)
	}
}

func TestIngestInvalidatesCachedInsights(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	shared := cache.NewMemoryCache()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, shared, nil, m, newTestLogger(t))
	insights := newTestInsights(t, ledger, shared, m)
	ctx := context.Background()

	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-01-05", "100", "income", "salary"),
		record("2024-02-05", "100", "income", "salary"),
	})

	before, err := insights.AnalyzeVolatility(ctx, "u1")
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if len(before.Monthly) != 2 {
		t.Fatalf("months = %d, want 2", len(before.Monthly))
	}

	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-03-05", "900", "income", "salary"),
	})

	after, err := insights.AnalyzeVolatility(ctx, "u1")
	if err != nil {
		t.Fatalf("after: %v", err)
	}
	if len(after.Monthly) != 3 {
		t.Fatalf("stale cache: months = %d, want 3", len(after.Monthly))
	}
}

func TestRefreshWarmsCache(t *testing.T) {
	ledger := repository.NewMemoryLedger()
	shared := cache.NewMemoryCache()
	m := newFakeMetrics()
	ingest := NewIngestUseCase(ledger, nil, nil, nil, m, newTestLogger(t))
	insights := newTestInsights(t, ledger, shared, m)
	ctx := context.Background()

	seedLedger(t, ingest, "u1", []models.TransactionRecord{
		record("2024-01-05", "1000", "income", "salary"),
		record("2024-02-05", "800", "expense", "rent"),
	})

	if err := insights.Refresh(ctx, "u1"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	key := cache.GenerateKeyWithParams("insights", "u1", "volatility")
	var cached models.VolatilityProfile
	if err := shared.Get(ctx, key, &cached); err != nil {
		t.Fatalf("cache not warmed: %v", err)
	}
	if cached.UserID != "u1" {
		t.Fatalf("cached profile = %+v", cached)
	}
}
