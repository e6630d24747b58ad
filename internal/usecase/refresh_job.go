package usecase

import (
	"context"
	"fmt"

	applogger "finsight/pkg/logger"
	"finsight/pkg/queue"
)

// RefreshInsightsJob warms the insight cache for a user after ingestion so
// the first read after new data does not pay the recompute cost.
type RefreshInsightsJob struct {
	insights *InsightsUseCase
	l        *applogger.Logger
}

func NewRefreshInsightsJob(insights *InsightsUseCase, l *applogger.Logger) *RefreshInsightsJob {
	return &RefreshInsightsJob{insights: insights, l: l}
}

func (j *RefreshInsightsJob) Name() string { return "refresh-insights" }
func (j *RefreshInsightsJob) Type() string { return RefreshJobType }

func (j *RefreshInsightsJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	if p.UserID == "" {
		return fmt.Errorf("refresh payload missing user_id")
	}

	if err := j.insights.Refresh(ctx, p.UserID); err != nil {
		return err
	}

	j.l.Debug("insight cache refreshed", applogger.String("user_id", p.UserID))
	return nil
}

var _ queue.Job = (*RefreshInsightsJob)(nil)
