package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品スナップショットの取得だけを約束。
// ListAll は呼ぶたびに新しいスライスを返す（呼び出し側が並び替えてよい）。
type ProductRepository interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
}

// seed 用の書き込み。id が同じなら上書き。
type ProductWriter interface {
	Upsert(ctx context.Context, products []model.Product) error
}
