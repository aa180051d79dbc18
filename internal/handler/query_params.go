package handler

import (
	"math"
	"strconv"
	"strings"

	"storefront/internal/domain/catalog"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 不正な数値などクエリ文字列の形式エラー。メッセージはそのまま 400 で返す。
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func invalid(name string) error {
	return &paramError{msg: "invalid " + name}
}

// 繰り返し（?brand=a&brand=b）とカンマ区切り（?brand=a,b）の両方を受ける
func multiValue(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalInt64(c echo.Context, name string) (*int64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, invalid(name)
	}
	return &x, nil
}

func optionalInt(c echo.Context, name string) (int, bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, false, nil
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, invalid(name)
	}
	return x, true, nil
}

// parseListInput は /products と /admin/products 共通のクエリを読む。
// 形式エラーだけを返し、min>max や offset<0 のような値はエンジン側で丸める。
func parseListInput(c echo.Context, defaultLimit int, maxLimit int) (usecase.ListProductsInput, error) {
	var in usecase.ListProductsInput

	in.Filters.Query = c.QueryParam("q")
	in.Filters.Brands = multiValue(c, "brand")
	in.Filters.Categories = multiValue(c, "category")
	in.Filters.Tags = multiValue(c, "tag")

	minPrice, err := optionalInt64(c, "min_price")
	if err != nil {
		return in, err
	}
	maxPrice, err := optionalInt64(c, "max_price")
	if err != nil {
		return in, err
	}
	if minPrice != nil || maxPrice != nil {
		in.Filters.PriceRange = &catalog.PriceRange{Min: minPrice, Max: maxPrice}
	}

	if v := strings.TrimSpace(c.QueryParam("min_rating")); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
			return in, invalid("min_rating")
		}
		in.Filters.MinRating = r
	}

	if v := strings.TrimSpace(c.QueryParam("in_stock")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, invalid("in_stock")
		}
		in.Filters.InStockOnly = b
	}

	in.Sort = catalog.ParseSort(c.QueryParam("sort"), c.QueryParam("order"))

	page, err := parsePage(c, defaultLimit, maxLimit)
	if err != nil {
		return in, err
	}
	in.Page = page
	return in, nil
}

// offset/limit/page がどれも無ければ全件（nil）。
// page は 1 始まりで、offset が明示されていればそちらを優先。
// offset はエンジンが丸めた後の件数で計算するので、ページの間に抜けは出ない。
func parsePage(c echo.Context, defaultLimit int, maxLimit int) (*catalog.PageSpec, error) {
	offset, hasOffset, err := optionalInt(c, "offset")
	if err != nil {
		return nil, err
	}
	limit, hasLimit, err := optionalInt(c, "limit")
	if err != nil {
		return nil, err
	}
	page, hasPage, err := optionalInt(c, "page")
	if err != nil {
		return nil, err
	}
	if !hasOffset && !hasLimit && !hasPage {
		return nil, nil
	}

	if !hasLimit && hasPage {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if hasPage && !hasOffset && limit > 0 {
		page = max(page, 1)
		if page-1 > math.MaxInt/limit {
			return nil, invalid("page")
		}
		offset = (page - 1) * limit
	}
	return &catalog.PageSpec{Offset: offset, Limit: limit}, nil
}
