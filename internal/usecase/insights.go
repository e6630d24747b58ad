package usecase

import (
	"context"
	"errors"
	"time"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	domsvc "finsight/internal/domain/service"
	"finsight/internal/services/analytics"
	"finsight/pkg/cache"
	applogger "finsight/pkg/logger"
)

// InsightTTL holds per-signal cache lifetimes.
type InsightTTL struct {
	Volatility time.Duration
	Spikes     time.Duration
	Risk       time.Duration
}

// InsightsUseCase runs the analysis pipeline over ledger snapshots with a
// cache-aside layer. Every result is recomputed from the full history; the
// cache only short-circuits repeated reads between ingestions.
type InsightsUseCase struct {
	ledger  domrepo.LedgerStore
	agg     *analytics.Aggregator
	vol     domsvc.VolatilityAnalyzer
	spikes  domsvc.SpikeDetector
	risk    domsvc.RiskScorer
	cache   cache.Service
	ttl     InsightTTL
	metrics domrepo.Metrics
	l       *applogger.Logger

	defaultMultiplier float64
}

func NewInsightsUseCase(
	ledger domrepo.LedgerStore,
	agg *analytics.Aggregator,
	vol domsvc.VolatilityAnalyzer,
	spikes domsvc.SpikeDetector,
	risk domsvc.RiskScorer,
	cacheSvc cache.Service,
	ttl InsightTTL,
	spikeMultiplier float64,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *InsightsUseCase {
	if spikeMultiplier <= 0 {
		spikeMultiplier = analytics.DefaultSpikeMultiplier
	}
	return &InsightsUseCase{
		ledger:            ledger,
		agg:               agg,
		vol:               vol,
		spikes:            spikes,
		risk:              risk,
		cache:             cacheSvc,
		ttl:               ttl,
		metrics:           metrics,
		l:                 l,
		defaultMultiplier: spikeMultiplier,
	}
}

// AnalyzeVolatility classifies the user's monthly cashflow series. An
// unknown user yields the insufficient-data profile, not an error.
func (uc *InsightsUseCase) AnalyzeVolatility(ctx context.Context, userID string) (*models.VolatilityProfile, error) {
	key := cache.GenerateKeyWithParams("insights", userID, "volatility")
	var cached models.VolatilityProfile
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	txs, _ := uc.ledger.Transactions(userID)

	start := time.Now()
	profile := uc.vol.Classify(userID, uc.agg.MonthlyCashflow(txs))
	uc.metrics.RecordAnalysis("volatility", time.Since(start).Seconds())

	uc.cacheSet(ctx, key, profile, uc.ttl.Volatility)
	return &profile, nil
}

// DetectSpikes runs spike detection over the full daily expense history.
// Non-default multipliers bypass the cache.
func (uc *InsightsUseCase) DetectSpikes(ctx context.Context, userID string, multiplier float64) (*models.SpikeReport, error) {
	if multiplier <= 0 {
		multiplier = uc.defaultMultiplier
	}

	useCache := multiplier == uc.defaultMultiplier
	key := cache.GenerateKeyWithParams("insights", userID, "spikes")
	if useCache {
		var cached models.SpikeReport
		if uc.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	txs, _ := uc.ledger.Transactions(userID)

	start := time.Now()
	report := uc.spikes.Detect(userID, uc.agg.DailyExpenseTotals(txs), multiplier)
	uc.metrics.RecordAnalysis("spikes", time.Since(start).Seconds())

	if useCache {
		uc.cacheSet(ctx, key, report, uc.ttl.Spikes)
	}
	return &report, nil
}

// ScoreRisk evaluates all risk factors from the ledger alone.
func (uc *InsightsUseCase) ScoreRisk(ctx context.Context, userID string) (*models.RiskProfile, error) {
	key := cache.GenerateKeyWithParams("insights", userID, "risk")
	var cached models.RiskProfile
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	txs, _ := uc.ledger.Transactions(userID)

	profile := uc.scoreFromSnapshot(userID, txs, nil)
	uc.cacheSet(ctx, key, *profile, uc.ttl.Risk)
	return profile, nil
}

// Signals computes the full signal bundle from one consistent snapshot. An
// externally supplied savings rate overrides the self-computed one for risk.
func (uc *InsightsUseCase) Signals(ctx context.Context, userID string, summary models.FinancialSummary) (models.BehaviorSignals, error) {
	txs, _ := uc.ledger.Transactions(userID)

	vol := uc.vol.Classify(userID, uc.agg.MonthlyCashflow(txs))
	spikes := uc.spikes.Detect(userID, uc.agg.DailyExpenseTotals(txs), uc.defaultMultiplier)

	var external *float64
	if summary.HasSavingsRate {
		rate := summary.SavingsRate
		external = &rate
	}
	risk := uc.scoreFromTxs(userID, txs, vol, spikes, external)

	return models.BehaviorSignals{
		Volatility: &vol,
		Spikes:     &spikes,
		Risk:       risk,
	}, nil
}

// UserInsights bundles all three signals for one user.
func (uc *InsightsUseCase) UserInsights(ctx context.Context, userID string) (*models.UserInsights, error) {
	signals, err := uc.Signals(ctx, userID, models.FinancialSummary{})
	if err != nil {
		return nil, err
	}
	return &models.UserInsights{
		UserID:     userID,
		Volatility: *signals.Volatility,
		Spikes:     *signals.Spikes,
		Risk:       *signals.Risk,
	}, nil
}

// Refresh recomputes all cached entries for one user. Used by the background
// cache-warming job after ingestion.
func (uc *InsightsUseCase) Refresh(ctx context.Context, userID string) error {
	signals, err := uc.Signals(ctx, userID, models.FinancialSummary{})
	if err != nil {
		return err
	}
	uc.cacheSet(ctx, cache.GenerateKeyWithParams("insights", userID, "volatility"), *signals.Volatility, uc.ttl.Volatility)
	uc.cacheSet(ctx, cache.GenerateKeyWithParams("insights", userID, "spikes"), *signals.Spikes, uc.ttl.Spikes)
	uc.cacheSet(ctx, cache.GenerateKeyWithParams("insights", userID, "risk"), *signals.Risk, uc.ttl.Risk)
	return nil
}

// SavingsRate computes the ledger savings rate for one user.
func (uc *InsightsUseCase) SavingsRate(userID string) (float64, bool) {
	txs, ok := uc.ledger.Transactions(userID)
	if !ok {
		return 0, false
	}
	return uc.agg.SavingsRate(txs), true
}

// CategoryBreakdown computes the expense category shares for one user.
func (uc *InsightsUseCase) CategoryBreakdown(userID string) []models.CategoryShare {
	txs, _ := uc.ledger.Transactions(userID)
	return uc.agg.CategoryBreakdown(txs)
}

func (uc *InsightsUseCase) scoreFromSnapshot(userID string, txs []models.Transaction, external *float64) *models.RiskProfile {
	vol := uc.vol.Classify(userID, uc.agg.MonthlyCashflow(txs))
	spikes := uc.spikes.Detect(userID, uc.agg.DailyExpenseTotals(txs), uc.defaultMultiplier)
	return uc.scoreFromTxs(userID, txs, vol, spikes, external)
}

func (uc *InsightsUseCase) scoreFromTxs(
	userID string,
	txs []models.Transaction,
	vol models.VolatilityProfile,
	spikes models.SpikeReport,
	external *float64,
) *models.RiskProfile {
	income, expense := uc.agg.Totals(txs)

	start := time.Now()
	profile := uc.risk.Score(userID, domsvc.RiskInput{
		MonthlyCashflow: uc.agg.MonthlyCashflow(txs),
		Volatility:      vol,
		Spikes:          spikes,
		MonthlyExpenses: uc.agg.MonthlyExpenseTotals(txs),
		TotalIncome:     income,
		TotalExpense:    expense,
		SavingsRate:     external,
	})
	uc.metrics.RecordAnalysis("risk", time.Since(start).Seconds())
	uc.metrics.RecordRiskLevel(profile.Level)
	return &profile
}

func (uc *InsightsUseCase) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if uc.cache == nil {
		return false
	}
	err := uc.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		uc.l.Warn("insight cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (uc *InsightsUseCase) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, value, ttl); err != nil {
		uc.l.Warn("insight cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
