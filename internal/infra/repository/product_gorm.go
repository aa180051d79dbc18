package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 全商品を id 昇順で返す。絞り込みはエンジン側で行うのでここでは条件を付けない。
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return p, nil
}

// id が衝突したら全カラムを上書き（seed 用）
func (r *ProductGormRepository) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		CreateInBatches(products, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}

// テーブル作成（seed 前に呼ぶ）
func (r *ProductGormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&model.Product{}); err != nil {
		return fmt.Errorf("migrate products: %w", err)
	}
	return nil
}
