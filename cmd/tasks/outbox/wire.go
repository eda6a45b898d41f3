//go:build wireinject
// +build wireinject

// Package main 为 outbox 任务 CLI 提供 Wire 依赖注入定义。
package main

import (
	"context"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/database"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/tasks/outbox"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

func wireOutboxTask(context.Context, *configloader.RuntimeConfig, log.Logger) (*outboxTaskApp, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		database.NewPgxPool,
		repositories.NewOutboxRepository,
		outbox.ProviderSet,
		newOutboxTaskApp,
	))
}
