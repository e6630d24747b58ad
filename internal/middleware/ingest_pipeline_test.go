package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (p *countingProc) ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type nopMetrics struct{}

func (nopMetrics) RecordIngested(kind string, n int)            {}
func (nopMetrics) RecordRejected(n int)                         {}
func (nopMetrics) RecordAnalysis(stage string, seconds float64) {}
func (nopMetrics) RecordError(kind string)                      {}
func (nopMetrics) RecordRiskLevel(level string)                 {}

func batch() []models.Transaction {
	return []models.Transaction{{
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.NewFromInt(10),
		Kind:     models.KindExpense,
		Category: "food",
	}}
}

func TestPipelineForwards(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.ProcessBatch(context.Background(), "u1", batch()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("calls = %d, want 1", proc.count())
	}
}

func TestPipelineRejectsEmptyUser(t *testing.T) {
	p := NewIngestPipeline(&countingProc{}, nopMetrics{})
	if err := p.ProcessBatch(context.Background(), "", batch()); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestPipelineThrottleBuffersNotDrops(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{},
		WithMaxBatchesPerSecond(1),
		WithFlushInterval(50*time.Millisecond),
	)

	ctx := context.Background()
	if err := p.ProcessBatch(ctx, "u1", batch()); err != nil {
		t.Fatalf("first: %v", err)
	}
	// second batch inside the same window is deferred, not an error
	if err := p.ProcessBatch(ctx, "u1", batch()); err != nil {
		t.Fatalf("throttled: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("calls = %d, want 1 before flush", proc.count())
	}

	p.Start(ctx)
	defer p.Stop()
	deadline := time.Now().Add(2 * time.Second)
	for proc.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered batch never flushed, calls = %d", proc.count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPipelineBurstAllowsBackToBack(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{},
		WithMaxBatchesPerSecond(1),
		WithBurst(3),
	)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := p.ProcessBatch(ctx, "u1", batch()); err != nil {
			t.Fatalf("burst batch %d: %v", i, err)
		}
	}
	if proc.count() != 3 {
		t.Fatalf("calls = %d, want 3 inside burst", proc.count())
	}

	// fourth batch exhausts the bucket and is deferred
	if err := p.ProcessBatch(ctx, "u1", batch()); err != nil {
		t.Fatalf("post-burst: %v", err)
	}
	if proc.count() != 3 {
		t.Fatalf("calls = %d, want 3 after throttle", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countingProc{fail: true}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.ProcessBatch(context.Background(), "u1", batch()); err == nil {
		t.Fatalf("expected downstream error")
	}
	if proc.count() != 1 {
		t.Fatalf("calls = %d, want 1", proc.calls)
	}
}
