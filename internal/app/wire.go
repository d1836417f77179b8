//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"packagesync/internal/pkg/config"
	"packagesync/internal/repository"
	"packagesync/internal/service/tracking"
	"packagesync/pkg/logger"
)

// InitializeApplication собирает хранилище выбранного режима, клиент синхронизации и сервис.
// Возвращаемая функция закрывает все в обратном порядке.
func InitializeApplication(
	ctx context.Context,
	log logger.Logger,
	cfg *config.Config,
	background BackgroundEnabled,
) (*Application, func(), error) {
	wire.Build(
		provideStorage,
		provideRepository,
		provideSyncer,
		provideLocationProvider,
		provideTrackingService,
		provideConnectivity,

		wire.Bind(new(tracking.Repository), new(repository.PackageRepository)),

		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
