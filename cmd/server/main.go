// Package main boots the Hidescore catalog REST service.
package main

import (
	"context"
	"flag"
	"time"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	loginfra "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/logger"
	"github.com/bionicotaku/hidescore-services-catalog/internal/tasks/outbox"

	"github.com/bionicotaku/lingo-utils/observability"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
)

func newApp(logger log.Logger, meta configloader.ServiceMetadata, hs *khttp.Server, publisher *outbox.Server) *kratos.App {
	servers := []transport.Server{hs}
	if publisher != nil {
		servers = append(servers, publisher)
	}
	return kratos.New(
		kratos.ID(meta.InstanceID),
		kratos.Name(meta.Name),
		kratos.Version(meta.Version),
		kratos.Metadata(map[string]string{"environment": meta.Environment}),
		kratos.Logger(logger),
		kratos.Server(servers...),
	)
}

func main() {
	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	ctx := context.Background()

	// Load YAML + .env + environment overrides into a validated runtime config.
	rc, err := configloader.Load(configloader.Params{ConfPath: *confFlag})
	if err != nil {
		panic(err)
	}
	if Name != "" {
		rc.Service.Name = Name
	}
	if Version != "" {
		rc.Service.Version = Version
	}

	// Build the structured logger used by the entire application.
	logger, cleanupLogger, err := loginfra.NewLogger(loginfra.ConfigFromRuntime(rc.Service, rc.Log))
	if err != nil {
		panic(err)
	}
	defer cleanupLogger()

	obsShutdown, err := observability.Init(ctx, rc.Observability,
		observability.WithLogger(logger),
		observability.WithServiceName(rc.Service.Name),
		observability.WithServiceVersion(rc.Service.Version),
		observability.WithEnvironment(rc.Service.Environment),
	)
	if err != nil {
		panic(err)
	}
	defer func() {
		if obsShutdown == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsShutdown(shutdownCtx); err != nil {
			log.NewHelper(logger).Warnf("shutdown observability: %v", err)
		}
	}()

	// Assemble repositories, services, handlers and servers via Wire.
	app, cleanupApp, err := wireApp(ctx, rc, logger)
	if err != nil {
		panic(err)
	}
	defer cleanupApp()

	// Start the application and block until a stop signal is received.
	if err := app.Run(); err != nil {
		panic(err)
	}
}
