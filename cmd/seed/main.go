// Package main 初始化数据库：执行内嵌迁移并写入示例片单与管理员账号。
package main

import (
	"context"
	"flag"
	"os"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/database"
	loginfra "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/logger"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/seed"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"
	"github.com/bionicotaku/hidescore-services-catalog/migrations"

	"github.com/go-kratos/kratos/v2/log"
)

const envAdminPassword = "SEED_ADMIN_PASSWORD"

func main() {
	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	migrate := flag.Bool("migrate", true, "apply embedded migrations before seeding")
	adminEmail := flag.String("admin-email", "", "create an admin account with this email (skipped when empty)")
	adminName := flag.String("admin-name", "Administrator", "display name of the admin account")
	flag.Parse()

	ctx := context.Background()

	rc, err := configloader.Load(configloader.Params{ConfPath: *confFlag})
	if err != nil {
		panic(err)
	}
	logger, cleanupLogger, err := loginfra.ProvideLogger(rc)
	if err != nil {
		panic(err)
	}
	defer cleanupLogger()
	helper := log.NewHelper(logger)

	pool, cleanupPool, err := database.NewPgxPool(ctx, configloader.ProvideDatabaseConfig(rc), logger)
	if err != nil {
		panic(err)
	}
	defer cleanupPool()

	if *migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			helper.Errorf("apply migrations: %v", err)
			os.Exit(1)
		}
		helper.Info("migrations applied")
	}

	txMgr, err := database.NewTxManager(pool, configloader.ProvideTxManagerConfig(rc), logger)
	if err != nil {
		panic(err)
	}
	contentRepo := repositories.NewContentRepository(pool, logger)
	outboxRepo := repositories.NewOutboxRepository(pool, logger)
	userRepo := repositories.NewUserRepository(pool, logger)
	ratingRepo := repositories.NewRatingRepository(pool, logger)

	commands := services.NewContentCommandService(contentRepo, outboxRepo, txMgr, logger)
	users := services.NewUserService(userRepo, ratingRepo, contentRepo, nil, txMgr, logger)

	catalog, err := seed.LoadCatalog()
	if err != nil {
		panic(err)
	}
	res, err := seed.NewSeeder(commands, contentRepo, users, logger).Run(ctx, catalog, seed.Admin{
		Email:       *adminEmail,
		DisplayName: *adminName,
		Password:    os.Getenv(envAdminPassword),
	})
	if err != nil {
		helper.Errorf("seed failed: %v", err)
		os.Exit(1)
	}
	helper.Infof("seed finished: movies=%d series=%d admin_created=%v skipped=%v", res.Movies, res.Series, res.AdminCreated, res.Skipped)
}
