package fixture

import (
	"context"
	"slices"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メモリ上の商品一覧。ListAll は毎回コピーを返すので、
// 呼び出し側の並び替えや Upsert と干渉しない。
type ProductMemoryRepository struct {
	mu       sync.RWMutex
	products []model.Product
	index    map[string]int
}

func NewProductMemoryRepository(products []model.Product) *ProductMemoryRepository {
	r := &ProductMemoryRepository{}
	r.replace(products)
	return r
}

// ファイルから読み込んで作る
func NewProductMemoryRepositoryFromFile(path string) (*ProductMemoryRepository, error) {
	products, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewProductMemoryRepository(products), nil
}

func (r *ProductMemoryRepository) replace(products []model.Product) {
	r.products = slices.Clone(products)
	r.index = make(map[string]int, len(products))
	for i, p := range r.products {
		// id 重複時は先頭を優先
		if _, ok := r.index[p.ID]; !ok {
			r.index[p.ID] = i
		}
	}
}

func (r *ProductMemoryRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.products), nil
}

func (r *ProductMemoryRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return r.products[i], nil
}

// 同じ id は置き換え、新しい id は末尾に追加
func (r *ProductMemoryRepository) Upsert(ctx context.Context, products []model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.Clone(r.products)
	index := make(map[string]int, len(r.index)+len(products))
	for k, v := range r.index {
		index[k] = v
	}
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			next[i] = p
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}
	r.products = next
	r.index = index
	return nil
}

func (r *ProductMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}
