//go:build wireinject
// +build wireinject

package di

import (
	"finsight/pkg/config"
	"finsight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideLedger,
		ProvideArchive,
		ProvideRecommendationPublisher,

		// Analysis services
		ProvideAggregator,
		ProvideVolatility,
		ProvideSpikes,
		ProvideScorer,
		ProvideComposer,
		ProvideSummaryProvider,
		ProvideInsightTTL,

		// Pipeline and feed
		ProvideBatchProcessor,
		ProvideIngestPipeline,
		ProvideFeedHub,

		// Use cases
		ProvideIngestUseCase,
		ProvideInsightsUseCase,
		ProvideRecommendUseCase,
		ProvideCohortUseCase,
		ProvideJobQueue,
		ProvideKafkaTransactionsHandler,

		// HTTP surface and application server
		ProvideAPIHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
