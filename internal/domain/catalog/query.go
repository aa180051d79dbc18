// Package catalog は商品一覧の絞り込み・ファセット集計・並び替え・ページングを行う。
// 入力のスナップショットだけに依存する純粋な処理で、状態を持たない。
// 同じスナップショットに対して複数の goroutine から同時に呼んでよい。
package catalog

import (
	"storefront/internal/domain/model"
)

// 1ページの最大件数の既定値
const DefaultMaxLimit = 200

// Engine は上限件数と価格帯の設定だけを持つ。生成後は読み取り専用。
type Engine struct {
	maxLimit int
	bounds   []int64
}

// NewEngine は maxLimit <= 0 なら既定値、buckets が空なら既定の価格帯を使う。
func NewEngine(maxLimit int, buckets []int64) *Engine {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	bounds := normalizeBuckets(buckets)
	if len(bounds) == 0 {
		bounds = normalizeBuckets(DefaultPriceBuckets)
	}
	return &Engine{maxLimit: maxLimit, bounds: bounds}
}

func (e *Engine) MaxLimit() int { return e.maxLimit }

var defaultEngine = NewEngine(DefaultMaxLimit, DefaultPriceBuckets)

// Query は既定設定のエンジンで検索する。
func Query(snapshot []model.Product, f FilterCriteria, s SortSpec, page *PageSpec) QueryResult {
	return defaultEngine.Query(snapshot, f, s, page)
}

// Query は絞り込み → ファセット集計 → 並び替え → ページングを1回の走査で行う。
func (e *Engine) Query(snapshot []model.Product, f FilterCriteria, s SortSpec, page *PageSpec) QueryResult {
	p := compile(f)
	agg := newFacetAggregator(e.bounds)

	matched := make([]model.Product, 0, len(snapshot))
	for _, it := range snapshot {
		if !p.matchText(it) {
			continue
		}
		mask := p.failures(it)
		if mask == 0 {
			matched = append(matched, it)
		}
		agg.add(it, mask)
	}

	SortProducts(matched, s)

	total := len(matched)
	offset, limit := e.window(page, total)
	start := min(offset, total)
	end := start + min(limit, total-start)

	return QueryResult{
		Items:       matched[start:end],
		TotalCount:  total,
		FacetCounts: agg.counts,
		Offset:      offset,
		Limit:       limit,
	}
}

// ページ指定を丸める。limit <= 0 は全件、offset < 0 は 0、上限超えは上限。
func (e *Engine) window(page *PageSpec, total int) (offset int, limit int) {
	if page == nil {
		return 0, total
	}
	offset = max(page.Offset, 0)
	switch {
	case page.Limit <= 0:
		limit = total
	case page.Limit > e.maxLimit:
		limit = e.maxLimit
	default:
		limit = page.Limit
	}
	return offset, limit
}
