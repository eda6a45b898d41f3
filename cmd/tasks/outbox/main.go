// Package main 提供 Outbox 发布任务的独立进程入口，便于与 API 分开部署与扩缩容。
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	loginfra "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/logger"
	"github.com/bionicotaku/hidescore-services-catalog/internal/tasks/outbox"

	"github.com/go-kratos/kratos/v2/log"

	_ "go.uber.org/automaxprocs"
)

type outboxTaskApp struct {
	Task   *outbox.PublisherTask
	Logger log.Logger
}

func newOutboxTaskApp(logger log.Logger, task *outbox.PublisherTask) *outboxTaskApp {
	return &outboxTaskApp{Task: task, Logger: logger}
}

func main() {
	ctx := context.Background()

	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	rc, err := configloader.Load(configloader.Params{ConfPath: *confFlag})
	if err != nil {
		panic(err)
	}
	logger, cleanupLogger, err := loginfra.ProvideLogger(rc)
	if err != nil {
		panic(err)
	}
	defer cleanupLogger()

	app, cleanup, err := wireOutboxTask(ctx, rc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	helper := log.NewHelper(app.Logger)
	if app.Task == nil {
		helper.Warn("outbox publisher disabled (set messaging.outbox.enabled and messaging.pubsub topic)")
		return
	}

	helper.Info("starting outbox publisher")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Task.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		helper.Errorf("outbox publisher stopped unexpectedly: %v", err)
		os.Exit(1)
	}
}
