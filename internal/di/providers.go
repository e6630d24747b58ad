package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "finsight/internal/domain/repository"
	domsvc "finsight/internal/domain/service"
	"finsight/internal/handler/api"
	"finsight/internal/handler/ws"
	mid "finsight/internal/middleware"
	internalrepo "finsight/internal/repository"
	"finsight/internal/services/analytics"
	"finsight/internal/services/recommend"
	"finsight/internal/services/reporting"
	"finsight/internal/usecase"
	"finsight/pkg/cache"
	pkgch "finsight/pkg/clickhouse"
	"finsight/pkg/config"
	pkgkafka "finsight/pkg/kafka"
	applogger "finsight/pkg/logger"
	"finsight/pkg/metrics"
	"finsight/pkg/queue"
	"finsight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideLedger creates the in-memory transaction ledger. When the
// clickhouse backend is configured, the ledger is rehydrated from the
// archive so a restart does not lose analysis history.
func ProvideLedger(archive domrepo.Archive, l *applogger.Logger) (domrepo.LedgerStore, error) {
	ledger := internalrepo.NewMemoryLedger()
	if archive == nil {
		return ledger, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := internalrepo.RehydrateLedger(ctx, ledger, archive)
	if err != nil {
		return nil, fmt.Errorf("ledger rehydrate: %w", err)
	}
	if n > 0 {
		l.Info("ledger rehydrated from archive", applogger.Int("users", n))
	}
	return ledger, nil
}

// ProvideClickHouseClient creates a ClickHouse client when the clickhouse
// backend is selected. Other backends get a nil client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != usecase.BackendClickHouse {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + table + ` (
			user_id String,
			tx_date DateTime,
			amount Float64,
			kind String,
			category String,
			ingested_at DateTime
		) ENGINE=MergeTree ORDER BY (user_id, tx_date)`,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideArchive creates the ClickHouse transaction archive.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.Archive {
	if chClient == nil {
		return nil
	}
	archive := internalrepo.NewClickHouseArchive(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
	archive.SetLogger(l)
	return archive
}

// ProvideKafkaProducer creates a Kafka producer. It is shared between the
// kafka persistence backend and the recommendation feed topic, and is nil
// when neither is configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	needed := cfg.Backend.Type == usecase.BackendKafka || cfg.Kafka.FeedTopic != ""
	if !needed || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideRecommendationPublisher publishes generated recommendations to the
// feed topic, keyed by user.
func ProvideRecommendationPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil || cfg.Kafka.FeedTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaRecommendationPublisher(producer, cfg.Kafka.FeedTopic)
}

// ProvideBatchProcessor creates the persistence stage for accepted batches.
func ProvideBatchProcessor(
	archive domrepo.Archive,
	producer *pkgkafka.Producer,
	m domrepo.Metrics,
	cfg *config.Config,
) *usecase.BatchProcessor {
	return usecase.NewBatchProcessor(
		archive,
		producer,
		cfg.Kafka.Topic,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideIngestPipeline creates the throttling buffer between ingestion and
// the persistence backend.
func ProvideIngestPipeline(proc *usecase.BatchProcessor, m domrepo.Metrics, cfg *config.Config) *mid.IngestPipeline {
	return mid.NewIngestPipeline(proc, m,
		mid.WithMaxBatchesPerSecond(cfg.Ingest.RatePerUser),
		mid.WithBurst(cfg.Ingest.Burst),
		mid.WithBufferSize(cfg.Ingest.BufferSize),
		mid.WithFlushInterval(cfg.Ingest.FlushEvery),
	)
}

// ProvideCache creates the insight cache. With Redis enabled it is a layered
// memory+Redis cache, otherwise memory only.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Analysis.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Analysis.Redis.Addr),
		cache.WithRedisPassword(cfg.Analysis.Redis.Password),
		cache.WithRedisDB(cfg.Analysis.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideVolatility builds the volatility classifier from config, falling
// back to defaults for unset breakpoints.
func ProvideVolatility(cfg *config.Config) (domsvc.VolatilityAnalyzer, error) {
	vc := analytics.DefaultVolatilityConfig()
	if cfg.Analysis.LowBreakpoint > 0 {
		vc.LowBreakpoint = cfg.Analysis.LowBreakpoint
	}
	if cfg.Analysis.MediumBreakpoint > 0 {
		vc.MediumBreakpoint = cfg.Analysis.MediumBreakpoint
	}
	if cfg.Analysis.TrendBand > 0 {
		vc.TrendBand = cfg.Analysis.TrendBand
	}
	return analytics.NewVolatility(vc)
}

// ProvideSpikes creates the expense spike detector.
func ProvideSpikes() domsvc.SpikeDetector {
	return analytics.NewSpikes()
}

// ProvideScorer creates the composite risk scorer.
func ProvideScorer() domsvc.RiskScorer {
	return analytics.NewScorer()
}

// ProvideAggregator creates the cashflow aggregator.
func ProvideAggregator() *analytics.Aggregator {
	return analytics.NewAggregator()
}

// ProvideComposer creates the recommendation composer.
func ProvideComposer() domsvc.Recommender {
	return recommend.NewComposer()
}

// ProvideInsightTTL maps configured cache TTLs, defaulting to five minutes.
func ProvideInsightTTL(cfg *config.Config) usecase.InsightTTL {
	ttl := usecase.InsightTTL{
		Volatility: cfg.Analysis.CacheTTL.Volatility,
		Spikes:     cfg.Analysis.CacheTTL.Spikes,
		Risk:       cfg.Analysis.CacheTTL.Risk,
	}
	if ttl.Volatility <= 0 {
		ttl.Volatility = 5 * time.Minute
	}
	if ttl.Spikes <= 0 {
		ttl.Spikes = 5 * time.Minute
	}
	if ttl.Risk <= 0 {
		ttl.Risk = 5 * time.Minute
	}
	return ttl
}

// ProvideSummaryProvider creates the external reporting client.
func ProvideSummaryProvider(cfg *config.Config) domsvc.SummaryProvider {
	if !cfg.Reporting.Enabled {
		return nil
	}
	opts := []reporting.Option{reporting.WithAPIKey(cfg.Reporting.APIKey)}
	if cfg.Reporting.Timeout > 0 {
		opts = append(opts, reporting.WithTimeout(cfg.Reporting.Timeout))
	}
	return reporting.NewClient(cfg.Reporting.BaseURL, opts...)
}

// ProvideFeedHub creates the WebSocket recommendation feed.
func ProvideFeedHub(l *applogger.Logger) *ws.FeedHub {
	return ws.NewFeedHub(l)
}

// ProvideJobQueue creates the Redis-backed refresh queue. It runs in
// producer-consumer mode so every instance both enqueues and works jobs.
func ProvideJobQueue(cfg *config.Config, l *applogger.Logger, insights *usecase.InsightsUseCase) *queue.RedisQueue {
	if !cfg.Analysis.Queue.Enabled || !cfg.Analysis.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Analysis.Redis.Addr,
		Password: cfg.Analysis.Redis.Password,
		DB:       cfg.Analysis.Redis.DB,
	})

	opts := []queue.RedisQueueOption{}
	if cfg.Analysis.Queue.Name != "" {
		opts = append(opts, queue.WithKeyPrefix(cfg.Analysis.Queue.Name))
	}

	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Analysis.Queue.Workers,
		RetryLimit: 3,
		RetryDelay: 10 * time.Second,
	}, client, queue.ModeProducerConsumer, opts...)
	q.RegisterJob(usecase.NewRefreshInsightsJob(insights, l))
	return q
}

// ProvideIngestUseCase creates the transaction ingestion use case.
func ProvideIngestUseCase(
	ledger domrepo.LedgerStore,
	pipe *mid.IngestPipeline,
	cacheSvc cache.Service,
	jobQueue *queue.RedisQueue,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.IngestUseCase {
	var jobs queue.QueueService
	if jobQueue != nil {
		jobs = jobQueue
	}
	return usecase.NewIngestUseCase(ledger, pipe, cacheSvc, jobs, m, l)
}

// ProvideInsightsUseCase creates the analysis use case.
func ProvideInsightsUseCase(
	ledger domrepo.LedgerStore,
	agg *analytics.Aggregator,
	vol domsvc.VolatilityAnalyzer,
	spikes domsvc.SpikeDetector,
	risk domsvc.RiskScorer,
	cacheSvc cache.Service,
	ttl usecase.InsightTTL,
	cfg *config.Config,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.InsightsUseCase {
	return usecase.NewInsightsUseCase(ledger, agg, vol, spikes, risk, cacheSvc, ttl, cfg.Analysis.SpikeMultiplier, m, l)
}

// ProvideRecommendUseCase creates the recommendation use case.
func ProvideRecommendUseCase(
	insights *usecase.InsightsUseCase,
	composer domsvc.Recommender,
	summaries domsvc.SummaryProvider,
	publisher domrepo.Publisher,
	feed *ws.FeedHub,
	l *applogger.Logger,
) *usecase.RecommendUseCase {
	var broadcaster usecase.FeedBroadcaster
	if feed != nil {
		broadcaster = feed
	}
	return usecase.NewRecommendUseCase(insights, composer, summaries, publisher, broadcaster, l)
}

// ProvideCohortUseCase creates the all-users analysis use case.
func ProvideCohortUseCase(ledger domrepo.LedgerStore, insights *usecase.InsightsUseCase) *usecase.CohortUseCase {
	return usecase.NewCohortUseCase(ledger, insights)
}

// ProvideKafkaConsumer creates a Kafka consumer for the transactions topic.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Consumer.GroupID == "" {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTransactionsHandler registers the handler for the transactions topic.
func ProvideKafkaTransactionsHandler(
	cfg *config.Config,
	ingest *usecase.IngestUseCase,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.KafkaTransactionsHandler {
	return usecase.NewKafkaTransactionsHandler(cfg.Kafka.Topic, ingest, m, l)
}

// ProvideAPIHandler creates the HTTP handler with all routes.
func ProvideAPIHandler(
	l *applogger.Logger,
	ingest *usecase.IngestUseCase,
	insights *usecase.InsightsUseCase,
	recommendUC *usecase.RecommendUseCase,
	cohort *usecase.CohortUseCase,
	feed *ws.FeedHub,
) *api.InsightsEchoHandler {
	return api.NewInsightsEchoHandler(l, ingest, insights, recommendUC, cohort, feed)
}

// ProvideApp assembles the application server and its lifecycle hooks.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.InsightsEchoHandler,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTransactionsHandler,
	chClient *pkgch.Client,
	pipe *mid.IngestPipeline,
	jobQueue *queue.RedisQueue,
	cacheSvc cache.Service,
	producer *pkgkafka.Producer,
	feed *ws.FeedHub,
) *server.App {
	app := server.New(cfg, l, handler, consumer, chClient)

	if consumer != nil && cfg.Backend.Type != usecase.BackendKafka {
		// Consuming our own mirror topic would re-ingest every batch.
		app.RegisterMessageHandler(kh)
	}
	if jobQueue != nil {
		app.SetJobQueue(jobQueue)
	}

	pipe.Start(context.Background())
	app.AddCloser(closerFunc(func() error { pipe.Stop(); return nil }))
	app.AddCloser(feed)
	if producer != nil {
		app.AddCloser(producer)
	}
	app.AddCloser(cacheSvc)

	return app
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
