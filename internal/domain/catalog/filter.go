package catalog

import (
	"strings"

	"storefront/internal/domain/model"
)

// 次元ごとの不一致ビット。全部 0 なら全条件を満たす。
const (
	failBrand uint8 = 1 << iota
	failCategory
	failPrice
	failRating
	failStock
	failTag
)

// 条件をあらかじめ正規化したもの
type predicate struct {
	query       string
	brands      map[string]struct{}
	categories  map[string]struct{}
	tags        map[string]struct{}
	priceMin    *int64
	priceMax    *int64
	minRating   float64
	inStockOnly bool
}

func compile(f FilterCriteria) predicate {
	p := predicate{
		query:       strings.ToLower(strings.TrimSpace(f.Query)),
		brands:      toSet(f.Brands),
		categories:  toSet(f.Categories),
		tags:        toSet(f.Tags),
		minRating:   f.MinRating,
		inStockOnly: f.InStockOnly,
	}
	if f.PriceRange.active() {
		p.priceMin = f.PriceRange.Min
		p.priceMax = f.PriceRange.Max
	}
	return p
}

// 空白だけの値は捨てる。全部捨てたら nil（制約なし）。
func toSet(values []string) map[string]struct{} {
	var set map[string]struct{}
	for _, v := range values {
		k := normalizeKey(v)
		if k == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(values))
		}
		set[k] = struct{}{}
	}
	return set
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// フリーワードは name / description / brand / category を連結して部分一致
func (p predicate) matchText(it model.Product) bool {
	if p.query == "" {
		return true
	}
	haystack := strings.ToLower(it.Name + " " + it.Description + " " + it.Brand + " " + it.Category)
	return strings.Contains(haystack, p.query)
}

func (p predicate) failures(it model.Product) uint8 {
	var mask uint8

	if p.brands != nil {
		if _, ok := p.brands[normalizeKey(it.Brand)]; !ok {
			mask |= failBrand
		}
	}
	if p.categories != nil {
		if _, ok := p.categories[normalizeKey(it.Category)]; !ok {
			mask |= failCategory
		}
	}
	if p.tags != nil && !p.anyTag(it.Tags) {
		mask |= failTag
	}

	price := it.EffectivePrice()
	if p.priceMin != nil && price < *p.priceMin {
		mask |= failPrice
	}
	if p.priceMax != nil && price > *p.priceMax {
		mask |= failPrice
	}

	//評価なしは 0 なので minRating > 0 なら落ちる
	if p.minRating > 0 && it.RatingValue() < p.minRating {
		mask |= failRating
	}
	if p.inStockOnly && !it.InStock() {
		mask |= failStock
	}
	return mask
}

func (p predicate) anyTag(tags []string) bool {
	for _, t := range tags {
		if _, ok := p.tags[normalizeKey(t)]; ok {
			return true
		}
	}
	return false
}

// Filter は条件を満たす商品を入力順のまま返す。snapshot は変更しない。
func Filter(snapshot []model.Product, f FilterCriteria) []model.Product {
	p := compile(f)
	out := make([]model.Product, 0, len(snapshot))
	for _, it := range snapshot {
		if p.matchText(it) && p.failures(it) == 0 {
			out = append(out, it)
		}
	}
	return out
}
