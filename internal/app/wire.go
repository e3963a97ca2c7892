//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"video-subtitler/internal/config"
)

// InitializeApplication builds the full object graph from the environment.
// The returned cleanup closes the ledger database.
func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		config.Load,
		provideLogger,
		provideUploadDAO,
		provideLimitsStore,
		provideLedger,
		provideRegistry,
		provideWorkspace,
		provideRenderer,
		provideCoordinator,
		provideServer,
		newApplication,
	)
	return nil, nil, nil
}
