package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "want HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func catalogItems() []model.Product {
	r45, r20 := 4.5, 2.0
	return []model.Product{
		{ID: "apple-1", Name: "iPhone Mini", Brand: "Apple", Price: 100, Stock: 3, IsActive: true},
		{ID: "apple-2", Name: "iPad", Brand: "Apple", Price: 200, Stock: 1, IsActive: true},
		{ID: "xiaomi-1", Name: "Redmi", Brand: "Xiaomi", Price: 50, Stock: 0, IsActive: true},
		{ID: "jbl-1", Name: "Go 3", Brand: "JBL", Price: 30, Stock: 8, Rating: &r45, IsActive: true},
		{ID: "jbl-2", Name: "PartyBox", Brand: "JBL", Price: 300, Stock: 2, Rating: &r20, IsActive: false},
	}
}

func resultIDs(res catalog.QueryResult) []string {
	out := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, it.ID)
	}
	return out
}

// =====================
// List
// =====================

func TestProductUsecase_ListPublicProducts_OnlyActive(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(catalogItems(), nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	out, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Filters: catalog.FilterCriteria{Brands: []string{"JBL"}},
		Sort:    catalog.DefaultSort,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.TotalCount)
	assert.Equal(t, []string{"jbl-1"}, resultIDs(out))
	// 非公開はファセットにも出ない
	assert.Equal(t, map[string]int{"Apple": 2, "Xiaomi": 1, "JBL": 1}, out.FacetCounts[catalog.DimBrand])
	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListAdminProducts_IncludesInactive(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(catalogItems(), nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	out, err := uc.ListAdminProducts(context.Background(), usecase.ListProductsInput{
		Filters: catalog.FilterCriteria{Brands: []string{"JBL"}},
		Sort:    catalog.SortSpec{Key: catalog.SortByPrice, Direction: catalog.Desc},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"jbl-2", "jbl-1"}, resultIDs(out))
}

func TestProductUsecase_ListPublicProducts_Paging(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(catalogItems(), nil)
	uc := usecase.NewProductUsecase(pRepo, catalog.NewEngine(2, nil), nil)

	out, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Sort: catalog.SortSpec{Key: catalog.SortByPrice, Direction: catalog.Asc},
		Page: &catalog.PageSpec{Offset: 1, Limit: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, out.TotalCount)
	assert.Equal(t, 2, out.Limit)
	assert.Equal(t, []string{"xiaomi-1", "apple-1"}, resultIDs(out))
	assert.Equal(t, 2, uc.MaxLimit())
}

func TestProductUsecase_ListPublicProducts_QueryTooLong(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Filters: catalog.FilterCriteria{Query: strings.Repeat("a", 101)},
	})
	assertErrContains(t, err, "q too long")
	assertStatus(t, err, http.StatusBadRequest)
	pRepo.AssertNotCalled(t, "ListAll", mock.Anything)
}

// =====================
// Facets
// =====================

func TestProductUsecase_CountFacets_MatchesListFacets(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(catalogItems(), nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)
	f := catalog.FilterCriteria{Brands: []string{"JBL"}, InStockOnly: true}

	for _, activeOnly := range []bool{true, false} {
		counts, err := uc.CountFacets(context.Background(), f, activeOnly)
		require.NoError(t, err)

		in := usecase.ListProductsInput{Filters: f}
		var listed catalog.QueryResult
		if activeOnly {
			listed, err = uc.ListPublicProducts(context.Background(), in)
		} else {
			listed, err = uc.ListAdminProducts(context.Background(), in)
		}
		require.NoError(t, err)
		assert.Equal(t, listed.FacetCounts, counts, "activeOnly=%v", activeOnly)
	}
}

func TestProductUsecase_CountFacets_Errors(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(nil, assert.AnError)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.CountFacets(context.Background(), catalog.FilterCriteria{}, true)
	assertStatus(t, err, http.StatusInternalServerError)

	_, err = uc.CountFacets(context.Background(), catalog.FilterCriteria{Query: strings.Repeat("a", 101)}, true)
	assertStatus(t, err, http.StatusBadRequest)
}

// マルチバイトは文字数で数える
func TestProductUsecase_ListPublicProducts_QueryLengthInRunes(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return([]model.Product{}, nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Filters: catalog.FilterCriteria{Query: strings.Repeat("あ", 100)},
	})
	assert.NoError(t, err)
}

func TestProductUsecase_ListPublicProducts_RepoError(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(nil, assert.AnError)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{})
	assertErrContains(t, err, "db error")
	assertStatus(t, err, http.StatusInternalServerError)
}

func TestProductUsecase_ListPublicProducts_DoesNotMutateRepoSlice(t *testing.T) {
	items := catalogItems()
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(items, nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{
		Sort: catalog.SortSpec{Key: catalog.SortByPrice, Direction: catalog.Desc},
	})
	require.NoError(t, err)

	assert.Equal(t, "apple-1", items[0].ID)
	assert.Equal(t, "jbl-2", items[4].ID)
}

func TestProductUsecase_ListPublicProducts_RecordsMetrics(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("ListAll", mock.Anything).Return(catalogItems(), nil)
	m := metrics.New()
	uc := usecase.NewProductUsecase(pRepo, nil, m)

	_, err := uc.ListPublicProducts(context.Background(), usecase.ListProductsInput{})
	require.NoError(t, err)
	_, err = uc.ListAdminProducts(context.Background(), usecase.ListProductsInput{})
	require.NoError(t, err)
	_, err = uc.ListAllProducts(context.Background(), usecase.ListProductsInput{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(usecase.ScopePublic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(usecase.ScopeAdmin)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues(usecase.ScopeCLI)))
}

// =====================
// Detail
// =====================

func TestProductUsecase_GetProductDetail_InvalidID(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductRepoMock), nil, nil)

	_, err := uc.GetProductDetail(context.Background(), "  ")
	assertErrContains(t, err, "invalid product id")

	_, err = uc.GetProductDetail(context.Background(), strings.Repeat("x", 65))
	assertErrContains(t, err, "invalid product id")
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.GetProductDetail(context.Background(), "nope")
	assertStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_GetProductDetail_Inactive(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "jbl-2").Return(model.Product{ID: "jbl-2", IsActive: false}, nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.GetProductDetail(context.Background(), "jbl-2")
	assertStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_GetProductDetail_DBError(t *testing.T) {
	pRepo := new(ProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "x").Return(model.Product{}, assert.AnError)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	_, err := uc.GetProductDetail(context.Background(), "x")
	assertErrContains(t, err, "db error")
}

func TestProductUsecase_GetProductDetail_Success(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	pRepo := new(ProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "apple-1").
		Return(model.Product{ID: "apple-1", Name: "iPhone Mini", IsActive: true, CreatedAt: created}, nil)
	uc := usecase.NewProductUsecase(pRepo, nil, nil)

	p, err := uc.GetProductDetail(context.Background(), " apple-1 ")
	require.NoError(t, err)
	assert.Equal(t, "iPhone Mini", p.Name)
	pRepo.AssertExpectations(t)
}
