package usecase

import (
	"context"
	"sync"
	"time"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
)

// CohortUseCase runs the full analysis across every known user in parallel.
// One user's failure never aborts the batch; it lands in the Errors map.
type CohortUseCase struct {
	ledger   domrepo.LedgerStore
	insights *InsightsUseCase
	workers  int
	timeout  time.Duration
}

func NewCohortUseCase(ledger domrepo.LedgerStore, insights *InsightsUseCase) *CohortUseCase {
	return &CohortUseCase{
		ledger:   ledger,
		insights: insights,
		workers:  8,
		timeout:  30 * time.Second,
	}
}

// AnalyzeAll fans user analyses out over a bounded worker pool and folds the
// per-user results into cohort aggregates.
func (uc *CohortUseCase) AnalyzeAll(ctx context.Context) (*models.CohortInsights, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	userIDs := uc.ledger.UserIDs()
	res := &models.CohortInsights{
		TotalUsers:  len(userIDs),
		Users:       make(map[string]models.UserInsights, len(userIDs)),
		Errors:      map[string]string{},
		GeneratedAt: time.Now().UTC(),
	}
	if len(userIDs) == 0 {
		res.Errors = nil
		return res, nil
	}

	type item struct {
		userID   string
		insights *models.UserInsights
		err      error
	}
	ch := make(chan item, len(userIDs))
	sem := make(chan struct{}, uc.workers)
	var wg sync.WaitGroup

	for _, userID := range userIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ui, err := uc.insights.UserInsights(ctx, id)
			ch <- item{userID: id, insights: ui, err: err}
		}(userID)
	}

	go func() { wg.Wait(); close(ch) }()

	var volSum, riskSum float64
	analyzed := 0
	for it := range ch {
		if it.err != nil {
			res.Errors[it.userID] = it.err.Error()
			continue
		}
		res.Users[it.userID] = *it.insights
		analyzed++

		volSum += it.insights.Volatility.Score
		riskSum += it.insights.Risk.Score
		res.TotalSpikes += it.insights.Spikes.Count
		switch it.insights.Risk.Level {
		case models.RiskLevelHigh:
			res.HighRiskUsers++
		case models.RiskLevelMedium:
			res.MediumRiskUsers++
		default:
			res.LowRiskUsers++
		}
	}

	if analyzed > 0 {
		res.AvgVolatility = volSum / float64(analyzed)
		res.AvgRiskScore = riskSum / float64(analyzed)
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
