//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"qrd/internal"
	"qrd/internal/controllers"
	"qrd/internal/maintenance"
	"qrd/internal/providers"
	"qrd/internal/services"
	"qrd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewStoreProvider,
		providers.NewMetricsProvider,
		providers.NewZstdCompressor,

		services.NewGuardService,
		services.NewTokenService,
		services.NewRegistryService,
		services.NewSyncService,

		maintenance.NewScheduler,
		controllers.NewRedirectController,
		controllers.NewCustomerController,
		controllers.NewAdminController,
		controllers.NewSyncController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
