package catalog

import (
	"cmp"
	"slices"
	"strings"

	"storefront/internal/domain/model"
)

// 主キーの比較（昇順の意味）。向きとタイブレークは compare でまとめて扱う。
var comparators = map[SortKey]func(a, b model.Product) int{
	SortByName: func(a, b model.Product) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	SortByPrice: func(a, b model.Product) int {
		return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
	},
	SortByRating: func(a, b model.Product) int {
		return cmp.Compare(a.RatingValue(), b.RatingValue())
	},
	SortByCreatedAt: func(a, b model.Product) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	// false < true。desc で featured が先頭に来る
	SortByFeatured: func(a, b model.Product) int {
		return cmp.Compare(boolRank(a.Featured), boolRank(b.Featured))
	},
	SortByStock: func(a, b model.Product) int {
		return cmp.Compare(a.Stock, b.Stock)
	},
	SortBySales: func(a, b model.Product) int {
		return cmp.Compare(a.Sales, b.Sales)
	},
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func compare(a, b model.Product, s SortSpec) int {
	//作成日時なしは向きに関係なく末尾
	if s.Key == SortByCreatedAt {
		az, bz := a.CreatedAt.IsZero(), b.CreatedAt.IsZero()
		if az != bz {
			if az {
				return 1
			}
			return -1
		}
	}

	c := comparators[s.Key](a, b)
	if s.Direction == Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	//同値なら id 昇順
	return strings.Compare(a.ID, b.ID)
}

// SortProducts は items をその場で並び替える。id 重複時は入力順を保つ。
func SortProducts(items []model.Product, s SortSpec) {
	s = s.normalize()
	slices.SortStableFunc(items, func(a, b model.Product) int {
		return compare(a, b, s)
	})
}
