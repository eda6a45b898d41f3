//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/auth"
	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers"
	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/database"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/gcs"
	httpserver "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/http_server"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"
	"github.com/bionicotaku/hidescore-services-catalog/internal/tasks/outbox"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

// wireApp init kratos application.
func wireApp(context.Context, *configloader.RuntimeConfig, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		database.ProviderSet,
		auth.ProviderSet,
		gcs.ProvidePosterSigner,
		repositories.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		httpserver.ProviderSet,
		outbox.ProviderSet,
		newApp,
	))
}
