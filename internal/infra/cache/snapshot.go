package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/logger"
	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

const DefaultSnapshotKey = "catalog:snapshot:v1"

// SnapshotCache は ListAll の結果を redis に TTL 付きで置く。
// redis が落ちていても元のリポジトリから読めるようにする（キャッシュは best effort）。
type SnapshotCache struct {
	next repo.ProductRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	key  string
}

// DI
func NewSnapshotCache(next repo.ProductRepository, rdb redis.Cmdable, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{next: next, rdb: rdb, ttl: ttl, key: DefaultSnapshotKey}
}

func (c *SnapshotCache) ListAll(ctx context.Context) ([]model.Product, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var products []model.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		logger.Warn("snapshot cache: broken entry", "key", c.key)
	case !errors.Is(err, redis.Nil):
		logger.Warn("snapshot cache: get failed", "key", c.key, "err", err)
	}

	products, err := c.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		if raw, err := json.Marshal(products); err == nil {
			if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
				logger.Warn("snapshot cache: set failed", "key", c.key, "err", err)
			}
		}
	}
	return products, nil
}

// 詳細は常に元のリポジトリから読む
func (c *SnapshotCache) FindByID(ctx context.Context, id string) (model.Product, error) {
	return c.next.FindByID(ctx, id)
}

// Invalidate はキャッシュを捨てる（seed 後に呼ぶ）
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
