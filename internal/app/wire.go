//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"meetscribe/internal/config"
)

// InitializeApp wires the full application from its configuration. The
// returned cleanup closes the catalog database and flushes the logger.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		New,
		provideLogger,
		provideEngine,
		provideCatalog,
		provideStore,
		provideSpeechService,
		provideOrchestrator,
	)
	return &App{}, nil, nil
}
