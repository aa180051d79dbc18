package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

// 外部への依存。テストでは差し替える。
type Deps struct {
	LoadConfig func(opts ...config.Option) (config.Config, error)
	OpenWriter func(ctx context.Context, cfg config.Config) (repository.ProductWriter, func(), error)
	Now        func() time.Time
}

func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		OpenWriter: openPostgresWriter,
		Now:        time.Now,
	}
}

// NewRootCommand は catalogctl のコマンドツリーを作る
func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Query and manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newQueryCommand(),
		newFacetsCommand(),
		newSeedCommand(deps),
		newTokenCommand(deps),
	)
	return root
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// seed 後にスナップショットのキャッシュも捨てる
type invalidatingWriter struct {
	repository.ProductWriter
	cache *cache.SnapshotCache
}

func (w invalidatingWriter) Upsert(ctx context.Context, products []model.Product) error {
	if err := w.ProductWriter.Upsert(ctx, products); err != nil {
		return err
	}
	return w.cache.Invalidate(ctx)
}

func openPostgresWriter(ctx context.Context, cfg config.Config) (repository.ProductWriter, func(), error) {
	gdb, closeDB, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	repo := infraRepo.NewProductGormRepository(gdb)
	if err := repo.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	if cfg.RedisURL == "" {
		return repo, closeDB, nil
	}

	client, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	w := invalidatingWriter{ProductWriter: repo, cache: cache.NewSnapshotCache(repo, client, cfg.SnapshotTTL)}
	return w, func() {
		_ = client.Close()
		closeDB()
	}, nil
}
