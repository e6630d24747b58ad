package usecase

import (
	"context"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	domsvc "finsight/internal/domain/service"
	applogger "finsight/pkg/logger"
)

// FeedBroadcaster pushes fresh recommendations to connected dashboard
// clients. Implementations must not block.
type FeedBroadcaster interface {
	Broadcast(userID string, recs []models.Recommendation)
}

// RecommendUseCase generates recommendations from the current signal state
// and distributes them downstream. Summary resolution order: the request
// body, then the external reporting service, then the ledger itself.
type RecommendUseCase struct {
	insights  *InsightsUseCase
	composer  domsvc.Recommender
	summaries domsvc.SummaryProvider
	publisher domrepo.Publisher
	feed      FeedBroadcaster
	l         *applogger.Logger
}

func NewRecommendUseCase(
	insights *InsightsUseCase,
	composer domsvc.Recommender,
	summaries domsvc.SummaryProvider,
	publisher domrepo.Publisher,
	feed FeedBroadcaster,
	l *applogger.Logger,
) *RecommendUseCase {
	return &RecommendUseCase{
		insights:  insights,
		composer:  composer,
		summaries: summaries,
		publisher: publisher,
		feed:      feed,
		l:         l,
	}
}

// Generate evaluates every recommendation rule for the user and appends the
// fired ones to the history. Distribution to the feed is best-effort; a
// publish failure never fails the request.
func (uc *RecommendUseCase) Generate(ctx context.Context, userID string, supplied *models.FinancialSummary) ([]models.Recommendation, error) {
	summary := uc.resolveSummary(ctx, userID, supplied)

	signals, err := uc.insights.Signals(ctx, userID, summary)
	if err != nil {
		return nil, err
	}

	recs := uc.composer.Generate(userID, summary, signals)
	if len(recs) == 0 {
		return recs, nil
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishRecommendations(ctx, userID, recs); err != nil {
			uc.l.Warn("recommendation publish failed",
				applogger.String("user_id", userID),
				applogger.Error(err),
			)
		}
	}
	if uc.feed != nil {
		uc.feed.Broadcast(userID, recs)
	}

	uc.l.Info("recommendations generated",
		applogger.String("user_id", userID),
		applogger.Int("count", len(recs)),
	)
	return recs, nil
}

// History returns the user's recommendation history, oldest first.
func (uc *RecommendUseCase) History(userID string) []models.Recommendation {
	return uc.composer.History(userID)
}

// Summary returns the priority and category counts over the user's history.
func (uc *RecommendUseCase) Summary(userID string) models.RecommendationSummary {
	return uc.composer.Summary(userID)
}

// resolveSummary fills in whatever the caller did not supply. A summary from
// the request wins over the reporting service, which wins over figures
// recomputed from the ledger.
func (uc *RecommendUseCase) resolveSummary(ctx context.Context, userID string, supplied *models.FinancialSummary) models.FinancialSummary {
	var summary models.FinancialSummary

	switch {
	case supplied != nil:
		summary = *supplied
		summary.HasSavingsRate = true
	case uc.summaries != nil:
		external, err := uc.summaries.FinancialSummary(ctx, userID)
		if err != nil {
			uc.l.Warn("reporting summary unavailable",
				applogger.String("user_id", userID),
				applogger.Error(err),
			)
		} else if external != nil {
			summary = *external
		}
	}

	if !summary.HasSavingsRate {
		if rate, ok := uc.insights.SavingsRate(userID); ok {
			summary.SavingsRate = rate
			summary.HasSavingsRate = true
		}
	}
	if len(summary.CategoryBreakdown) == 0 {
		summary.CategoryBreakdown = uc.insights.CategoryBreakdown(userID)
	}
	return summary
}
