package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/domain/catalog"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/fixture"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	//.env は任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, AddSource: !cfg.IsProd()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := openProductRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	engine := catalog.NewEngine(cfg.CatalogMaxLimit, cfg.PriceBuckets)
	uc := usecase.NewProductUsecase(repo, engine, m)

	e := server.New(cfg, uc, m)
	return server.Start(ctx, e, server.Addr(cfg.Port))
}

// FIXTURE_PATH があればファイル、なければ postgres。REDIS_URL があればキャッシュを挟む
func openProductRepository(ctx context.Context, cfg config.Config) (repository.ProductRepository, func(), error) {
	if cfg.FixturePath != "" {
		repo, err := fixture.NewProductMemoryRepositoryFromFile(cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("catalog loaded from fixture", "path", cfg.FixturePath, "products", repo.Len())
		return repo, func() {}, nil
	}

	gdb, closeDB, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	gormRepo := infraRepo.NewProductGormRepository(gdb)
	if err := gormRepo.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}

	if cfg.RedisURL == "" {
		return gormRepo, closeDB, nil
	}
	client, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Info("snapshot cache enabled", "ttl", cfg.SnapshotTTL)
	return cache.NewSnapshotCache(gormRepo, client, cfg.SnapshotTTL), func() {
		_ = client.Close()
		closeDB()
	}, nil
}
