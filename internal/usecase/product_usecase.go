package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
)

const (
	maxQueryLen = 100
	maxIDLen    = 64
)

// クエリの出どころ（メトリクスのラベル）
const (
	ScopePublic = "public"
	ScopeAdmin  = "admin"
	ScopeCLI    = "cli"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	engine      *catalog.Engine
	metrics     *metrics.Metrics
}

// DI。engine が nil なら既定設定、metrics は nil でもよい。
func NewProductUsecase(productRepo repo.ProductRepository, engine *catalog.Engine, m *metrics.Metrics) *ProductUsecase {
	if engine == nil {
		engine = catalog.NewEngine(catalog.DefaultMaxLimit, nil)
	}
	return &ProductUsecase{
		productRepo: productRepo,
		engine:      engine,
		metrics:     m,
	}
}

// 一覧検索の入力。Page が nil なら全件。
type ListProductsInput struct {
	Filters catalog.FilterCriteria
	Sort    catalog.SortSpec
	Page    *catalog.PageSpec
}

// GET /products。公開中の商品だけを対象にする。
func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (catalog.QueryResult, error) {
	return u.list(ctx, ScopePublic, in, func(p model.Product) bool { return p.IsActive })
}

// GET /admin/products。非公開も含めて検索する。
func (u *ProductUsecase) ListAdminProducts(ctx context.Context, in ListProductsInput) (catalog.QueryResult, error) {
	return u.list(ctx, ScopeAdmin, in, nil)
}

// CLI から。ファイルの全行が対象。
func (u *ProductUsecase) ListAllProducts(ctx context.Context, in ListProductsInput) (catalog.QueryResult, error) {
	return u.list(ctx, ScopeCLI, in, nil)
}

func (u *ProductUsecase) list(ctx context.Context, scope string, in ListProductsInput, keep func(model.Product) bool) (catalog.QueryResult, error) {
	start := time.Now()

	snapshot, err := u.snapshot(ctx, scope, in.Filters, keep)
	if err != nil {
		return catalog.QueryResult{}, err
	}

	res := u.engine.Query(snapshot, in.Filters, in.Sort, in.Page)

	elapsed := time.Since(start)
	u.metrics.ObserveQuery(scope, elapsed, res.TotalCount)
	logger.Debug("catalog query",
		"scope", scope,
		"q", in.Filters.Query,
		"sort", string(in.Sort.Key),
		"total", res.TotalCount,
		"returned", len(res.Items),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

// ファセット件数だけ（並び替えはしない）。activeOnly なら公開中の商品だけ。
func (u *ProductUsecase) CountFacets(ctx context.Context, f catalog.FilterCriteria, activeOnly bool) (catalog.FacetCounts, error) {
	var keep func(model.Product) bool
	if activeOnly {
		keep = func(p model.Product) bool { return p.IsActive }
	}

	snapshot, err := u.snapshot(ctx, ScopeCLI, f, keep)
	if err != nil {
		return nil, err
	}
	return u.engine.Facets(snapshot, f), nil
}

//スナップショットを取ってからエンジンに渡す
func (u *ProductUsecase) snapshot(ctx context.Context, scope string, f catalog.FilterCriteria, keep func(model.Product) bool) ([]model.Product, error) {
	if utf8.RuneCountInString(f.Query) > maxQueryLen {
		return nil, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		logger.Error("list products failed", "scope", scope, "err", err)
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if keep != nil {
		items = filterProducts(items, keep)
	}
	return items, nil
}

func filterProducts(items []model.Product, keep func(model.Product) bool) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// GET /products/:id。非公開は 404。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" || len(productID) > maxIDLen {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		logger.Error("find product failed", "id", productID, "err", err)
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

func (u *ProductUsecase) MaxLimit() int {
	return u.engine.MaxLimit()
}
