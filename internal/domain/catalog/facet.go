package catalog

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
)

// 価格帯の既定の境界（上限・未満）。最小通貨単位。
var DefaultPriceBuckets = []int64{5000, 10000, 20000, 50000}

// 評価は「N 以上」の累積で数える
var ratingThresholds = []int{4, 3, 2, 1}

const (
	StockIn  = "in_stock"
	StockOut = "out_of_stock"
)

// 境界を昇順・重複なし・正の値だけにする
func normalizeBuckets(bounds []int64) []int64 {
	out := make([]int64, 0, len(bounds))
	for _, b := range bounds {
		if b > 0 {
			out = append(out, b)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// "0-4999", "5000-9999", ..., "50000+"
func bucketLabels(bounds []int64) []string {
	labels := make([]string, 0, len(bounds)+1)
	var lower int64
	for _, b := range bounds {
		labels = append(labels, strconv.FormatInt(lower, 10)+"-"+strconv.FormatInt(b-1, 10))
		lower = b
	}
	return append(labels, strconv.FormatInt(lower, 10)+"+")
}

func bucketIndex(bounds []int64, price int64) int {
	return sort.Search(len(bounds), func(i int) bool { return price < bounds[i] })
}

type facetAggregator struct {
	bounds []int64
	labels []string
	counts FacetCounts
	// 正規化キー → 表示用の綴り。絞り込みと同じく大小文字・前後空白を区別しない
	spell map[Dimension]map[string]string
}

// 固定キー（価格帯・評価・在庫）は 0 件でも必ず入れる
func newFacetAggregator(bounds []int64) *facetAggregator {
	a := &facetAggregator{
		bounds: bounds,
		labels: bucketLabels(bounds),
		counts: FacetCounts{
			DimBrand:    {},
			DimCategory: {},
			DimTag:      {},
			DimPrice:    {},
			DimRating:   {},
			DimStock:    {StockIn: 0, StockOut: 0},
		},
		spell: map[Dimension]map[string]string{
			DimBrand:    {},
			DimCategory: {},
			DimTag:      {},
		},
	}
	for _, l := range a.labels {
		a.counts[DimPrice][l] = 0
	}
	for _, n := range ratingThresholds {
		a.counts[DimRating][strconv.Itoa(n)] = 0
	}
	return a
}

// 自分の次元以外の条件をすべて満たすなら、その次元に数える。
// 次元の条件を外してフィルタし直した件数と同じになる。
func (a *facetAggregator) add(it model.Product, mask uint8) {
	if mask&^failBrand == 0 {
		a.bump(DimBrand, it.Brand)
	}
	if mask&^failCategory == 0 {
		a.bump(DimCategory, it.Category)
	}
	if mask&^failPrice == 0 {
		a.counts[DimPrice][a.labels[bucketIndex(a.bounds, it.EffectivePrice())]]++
	}
	if mask&^failRating == 0 {
		r := it.RatingValue()
		for _, n := range ratingThresholds {
			if r >= float64(n) {
				a.counts[DimRating][strconv.Itoa(n)]++
			}
		}
	}
	if mask&^failStock == 0 {
		if it.InStock() {
			a.counts[DimStock][StockIn]++
		} else {
			a.counts[DimStock][StockOut]++
		}
	}
	if mask&^failTag == 0 {
		seen := make(map[string]struct{}, len(it.Tags))
		for _, t := range it.Tags {
			k := normalizeKey(t)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			a.bump(DimTag, t)
		}
	}
}

// 最初に数えた綴りをそのキーの表示名にする
func (a *facetAggregator) bump(d Dimension, raw string) {
	k := normalizeKey(raw)
	label, ok := a.spell[d][k]
	if !ok {
		label = strings.TrimSpace(raw)
		a.spell[d][k] = label
	}
	a.counts[d][label]++
}

// Facets はファセット件数だけを計算する。
func (e *Engine) Facets(snapshot []model.Product, f FilterCriteria) FacetCounts {
	p := compile(f)
	agg := newFacetAggregator(e.bounds)
	for _, it := range snapshot {
		if !p.matchText(it) {
			continue
		}
		agg.add(it, p.failures(it))
	}
	return agg.counts
}
