package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
)

// Proc is the minimal downstream interface the pipeline needs.
type Proc interface {
	ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error
}

// IngestPipeline sits between ingestion entry points and the persistence
// backend. It throttles per user with a token bucket and buffers batches when
// the downstream is unavailable, flushing in the background.
type IngestPipeline struct {
	proc       Proc
	metrics    domrepo.Metrics
	maxBPS     int
	burst      int
	bufSize    int
	flushEvery time.Duration
	bufCh      chan *bufferedBatch
	stopCh     chan struct{}
	started    bool
	mu         sync.Mutex
	buckets    map[string]*userBucket
}

type bufferedBatch struct {
	userID string
	txs    []models.Transaction
}

// userBucket tracks per-user throttle state. Tokens refill at maxBPS per
// second up to the burst capacity.
type userBucket struct {
	tokens float64
	last   time.Time
}

type PipelineOption func(*IngestPipeline)

// WithMaxBatchesPerSecond sets the sustained accepted batch rate per user.
func WithMaxBatchesPerSecond(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxBPS = n
		}
	}
}

// WithBurst sets how many batches a user may send back-to-back before the
// sustained rate applies.
func WithBurst(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.burst = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithFlushInterval sets how often buffered batches are retried downstream.
func WithFlushInterval(d time.Duration) PipelineOption {
	return func(p *IngestPipeline) {
		if d > 0 {
			p.flushEvery = d
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:       proc,
		metrics:    metrics,
		maxBPS:     20,
		burst:      1,
		bufSize:    256,
		flushEvery: time.Second,
		stopCh:     make(chan struct{}),
		buckets:    make(map[string]*userBucket),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *bufferedBatch, p.bufSize)
	return p
}

// Start launches background flushing of buffered batches.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.flushEvery)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.drain(ctx)
			}
		}
	}()
}

// drain forwards buffered batches until the buffer is empty. On a downstream
// failure the batch is requeued and draining stops until the next cycle.
func (p *IngestPipeline) drain(ctx context.Context) {
	for {
		select {
		case b := <-p.bufCh:
			if err := p.proc.ProcessBatch(ctx, b.userID, b.txs); err != nil {
				p.metrics.RecordError("pipeline_flush")
				select {
				case p.bufCh <- b:
				default:
					p.metrics.RecordError("pipeline_buffer_drop")
				}
				return
			}
		default:
			return
		}
	}
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// ProcessBatch throttles and forwards a batch downstream, buffering on errors.
// A throttled batch is deferred to the buffer, not dropped: the ledger has
// already accepted it, so the mirror must eventually catch up.
func (p *IngestPipeline) ProcessBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	if userID == "" {
		p.metrics.RecordError("pipeline_validate")
		return fmt.Errorf("user id empty")
	}

	start := time.Now()
	if !p.allow(userID, start) {
		p.metrics.RecordError("pipeline_throttle")
		p.buffer(userID, txs)
		return nil
	}

	if err := p.proc.ProcessBatch(ctx, userID, txs); err != nil {
		p.metrics.RecordError("pipeline_process")
		p.buffer(userID, txs)
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordAnalysis("pipeline_process", time.Since(start).Seconds())
	return nil
}

func (p *IngestPipeline) buffer(userID string, txs []models.Transaction) {
	select {
	case p.bufCh <- &bufferedBatch{userID: userID, txs: txs}:
	default:
		p.metrics.RecordError("pipeline_buffer_full")
	}
}

func (p *IngestPipeline) allow(userID string, now time.Time) bool {
	if p.maxBPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[userID]
	if !ok {
		b = &userBucket{tokens: float64(p.burst), last: now}
		p.buckets[userID] = b
	}
	b.tokens += now.Sub(b.last).Seconds() * float64(p.maxBPS)
	if limit := float64(p.burst); b.tokens > limit {
		b.tokens = limit
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
