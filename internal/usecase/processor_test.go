package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
)

type recordingArchive struct {
	mu          sync.Mutex
	chunkSizes  []int
	sawDeadline bool
}

func (a *recordingArchive) StoreBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chunkSizes = append(a.chunkSizes, len(txs))
	if _, ok := ctx.Deadline(); ok {
		a.sawDeadline = true
	}
	return nil
}

func (a *recordingArchive) LoadUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return nil, nil
}

func (a *recordingArchive) UserIDs(ctx context.Context) ([]string, error) { return nil, nil }
func (a *recordingArchive) Health(ctx context.Context) error              { return nil }
func (a *recordingArchive) Close() error                                  { return nil }

func archiveBatch(n int) []models.Transaction {
	txs := make([]models.Transaction, n)
	for i := range txs {
		txs[i] = models.Transaction{
			Date:     time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Amount:   decimal.NewFromInt(10),
			Kind:     models.KindExpense,
			Category: "food",
		}
	}
	return txs
}

func TestProcessBatchSplitsChunks(t *testing.T) {
	archive := &recordingArchive{}
	p := NewBatchProcessor(archive, nil, "", newFakeMetrics(), BackendClickHouse, 2, time.Second)

	if err := p.ProcessBatch(context.Background(), "u1", archiveBatch(5)); err != nil {
		t.Fatalf("process: %v", err)
	}

	want := []int{2, 2, 1}
	if len(archive.chunkSizes) != len(want) {
		t.Fatalf("chunks = %v, want %v", archive.chunkSizes, want)
	}
	for i, n := range want {
		if archive.chunkSizes[i] != n {
			t.Fatalf("chunk %d = %d, want %d", i, archive.chunkSizes[i], n)
		}
	}
	if !archive.sawDeadline {
		t.Fatalf("expected a deadline on persistence calls")
	}
}

func TestProcessBatchNoSplitByDefault(t *testing.T) {
	archive := &recordingArchive{}
	p := NewBatchProcessor(archive, nil, "", newFakeMetrics(), BackendClickHouse, 0, 0)

	if err := p.ProcessBatch(context.Background(), "u1", archiveBatch(5)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(archive.chunkSizes) != 1 || archive.chunkSizes[0] != 5 {
		t.Fatalf("chunks = %v, want one chunk of 5", archive.chunkSizes)
	}
	if archive.sawDeadline {
		t.Fatalf("unexpected deadline with zero batch timeout")
	}
}
