package catalog

import (
	"strings"

	"storefront/internal/domain/model"
)

// PriceRange は実売価格の閉区間 [Min, Max]。どちらかが nil なら片側オープン。
type PriceRange struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// min > max は不正な範囲として扱い、条件ごと無効にする
func (r *PriceRange) active() bool {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return false
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return false
	}
	return true
}

// FilterCriteria は絞り込み条件。空の条件は「制約なし」。
// 各次元は AND、Brands/Categories/Tags の中は OR。
type FilterCriteria struct {
	Query       string      `json:"q,omitempty"`
	Brands      []string    `json:"brands,omitempty"`
	Categories  []string    `json:"categories,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	PriceRange  *PriceRange `json:"priceRange,omitempty"`
	MinRating   float64     `json:"minRating,omitempty"`
	InStockOnly bool        `json:"inStockOnly,omitempty"`
}

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByRating    SortKey = "rating"
	SortByCreatedAt SortKey = "createdAt"
	SortByFeatured  SortKey = "featured"
	SortByStock     SortKey = "stock"
	SortBySales     SortKey = "sales"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec の既定は name asc
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

var DefaultSort = SortSpec{Key: SortByName, Direction: Asc}

// ParseSortKey は画面やURLから来るキー名を SortKey にする。
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return SortByName, true
	case "price":
		return SortByPrice, true
	case "rating":
		return SortByRating, true
	case "createdat", "created_at", "newest", "new":
		return SortByCreatedAt, true
	case "featured":
		return SortByFeatured, true
	case "stock":
		return SortByStock, true
	case "sales":
		return SortBySales, true
	}
	return "", false
}

func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return Asc, true
	case "desc":
		return Desc, true
	}
	return "", false
}

// ParseSort はキーと向きから SortSpec を作る。
// 旧形式の price_asc / price_desc / new もそのまま受け付ける。
// 未知のキーは name asc、向きが無い・不正なら asc（new だけは desc）。
func ParseSort(key string, direction string) SortSpec {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "price_asc":
		return SortSpec{Key: SortByPrice, Direction: Asc}
	case "price_desc":
		return SortSpec{Key: SortByPrice, Direction: Desc}
	case "new":
		if d, ok := ParseDirection(direction); ok {
			return SortSpec{Key: SortByCreatedAt, Direction: d}
		}
		return SortSpec{Key: SortByCreatedAt, Direction: Desc}
	}

	k, ok := ParseSortKey(key)
	if !ok {
		return DefaultSort
	}
	d, ok := ParseDirection(direction)
	if !ok {
		d = Asc
	}
	return SortSpec{Key: k, Direction: d}
}

func (s SortSpec) normalize() SortSpec {
	if _, ok := comparators[s.Key]; !ok {
		return DefaultSort
	}
	if s.Direction != Asc && s.Direction != Desc {
		s.Direction = Asc
	}
	return s
}

// PageSpec は並び替え後の切り出し範囲。nil なら全件。
type PageSpec struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Dimension はファセットの次元名
type Dimension string

const (
	DimBrand    Dimension = "brand"
	DimCategory Dimension = "category"
	DimPrice    Dimension = "price"
	DimRating   Dimension = "rating"
	DimStock    Dimension = "stock"
	DimTag      Dimension = "tag"
)

// FacetCounts は 次元 → 値 → 件数。
type FacetCounts map[Dimension]map[string]int

type QueryResult struct {
	Items       []model.Product `json:"items"`
	TotalCount  int             `json:"totalCount"`
	FacetCounts FacetCounts     `json:"facetCounts"`
	Offset      int             `json:"offset"`
	Limit       int             `json:"limit"`
}
