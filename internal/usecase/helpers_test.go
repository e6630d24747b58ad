package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	"finsight/internal/services/analytics"
	"finsight/pkg/cache"
	applogger "finsight/pkg/logger"
)

type fakeMetrics struct {
	mu         sync.Mutex
	ingested   map[string]int
	rejected   int
	errors     map[string]int
	riskLevels map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		ingested:   make(map[string]int),
		errors:     make(map[string]int),
		riskLevels: make(map[string]int),
	}
}

func (m *fakeMetrics) RecordIngested(kind string, n int) {
	m.mu.Lock()
	m.ingested[kind] += n
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRejected(n int) {
	m.mu.Lock()
	m.rejected += n
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordAnalysis(stage string, seconds float64) {}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRiskLevel(level string) {
	m.mu.Lock()
	m.riskLevels[level]++
	m.mu.Unlock()
}

type failingSink struct{ calls int }

func (s *failingSink) ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	s.calls++
	return fmt.Errorf("backend unavailable")
}

func newTestLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("test logger: %v", err)
	}
	return l
}

func newTestInsights(t *testing.T, ledger domrepo.LedgerStore, c cache.Service, m *fakeMetrics) *InsightsUseCase {
	t.Helper()
	vol, err := analytics.NewVolatility(analytics.DefaultVolatilityConfig())
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	return NewInsightsUseCase(
		ledger,
		analytics.NewAggregator(),
		vol,
		analytics.NewSpikes(),
		analytics.NewScorer(),
		c,
		InsightTTL{},
		0,
		m,
		newTestLogger(t),
	)
}

func record(date, amount, kind, category string) models.TransactionRecord {
	return models.TransactionRecord{Date: date, Amount: amount, Kind: kind, Category: category}
}
