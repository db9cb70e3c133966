//go:build wireinject
// +build wireinject

package di

import (
	"InsightHub/pkg/config"
	"InsightHub/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Data sources
		ProvideQuoteBook,
		ProvideQuoteStream,
		ProvideMarketProvider,
		ProvideNewsProvider,

		// Shared state
		ProvideResponseCache,
		ProvideAdmissionController,
		ProvideTierStore,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideArchive,
		ProvideEventPublisher,

		// Pipeline and HTTP surface
		ProvidePipeline,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
