package cli

import (
	"storefront/internal/domain/catalog"
	"storefront/internal/usecase"

	"github.com/spf13/cobra"
)

// query / facets 共通の絞り込みフラグ
type filterFlags struct {
	file       string
	public     bool
	q          string
	brands     []string
	categories []string
	tags       []string
	minPrice   int64
	maxPrice   int64
	minRating  float64
	inStock    bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "product fixture (JSON array)")
	fs.BoolVar(&f.public, "public", false, "only active products, like GET /products")
	fs.StringVarP(&f.q, "q", "q", "", "free-text query")
	fs.StringSliceVar(&f.brands, "brand", nil, "brand (repeatable or comma separated)")
	fs.StringSliceVar(&f.categories, "category", nil, "category (repeatable or comma separated)")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable or comma separated)")
	fs.Int64Var(&f.minPrice, "min-price", 0, "minimum effective price")
	fs.Int64Var(&f.maxPrice, "max-price", 0, "maximum effective price")
	fs.Float64Var(&f.minRating, "min-rating", 0, "minimum rating")
	fs.BoolVar(&f.inStock, "in-stock", false, "only items with stock")
	_ = cmd.MarkFlagRequired("file")
}

func (f *filterFlags) criteria(cmd *cobra.Command) catalog.FilterCriteria {
	c := catalog.FilterCriteria{
		Query:       f.q,
		Brands:      f.brands,
		Categories:  f.categories,
		Tags:        f.tags,
		MinRating:   f.minRating,
		InStockOnly: f.inStock,
	}

	//指定されたほうだけ有効にする
	var r catalog.PriceRange
	if cmd.Flags().Changed("min-price") {
		v := f.minPrice
		r.Min = &v
	}
	if cmd.Flags().Changed("max-price") {
		v := f.maxPrice
		r.Max = &v
	}
	if r.Min != nil || r.Max != nil {
		c.PriceRange = &r
	}
	return c
}

func (f *filterFlags) list(uc *usecase.ProductUsecase, cmd *cobra.Command, in usecase.ListProductsInput) (catalog.QueryResult, error) {
	if f.public {
		return uc.ListPublicProducts(cmd.Context(), in)
	}
	return uc.ListAllProducts(cmd.Context(), in)
}
