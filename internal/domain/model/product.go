package model

import (
	"math"
	"time"
)

// 商品（カタログの1件）。
// 価格は最小通貨単位（円・セント）で持つ。
type Product struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Brand         string    `gorm:"type:varchar(100);index" json:"brand"`
	Category      string    `gorm:"type:varchar(100);index" json:"category"`
	Price         int64     `gorm:"not null" json:"price"`
	DiscountPrice *int64    `json:"discountPrice,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	ReviewCount   int64     `gorm:"not null;default:0" json:"reviewCount"`
	Stock         int64     `gorm:"not null;default:0" json:"stock"`
	Sales         int64     `gorm:"not null;default:0" json:"sales"`
	Featured      bool      `gorm:"not null;default:false" json:"featured"`
	IsActive      bool      `gorm:"not null" json:"isActive"`
	Tags          []string  `gorm:"serializer:json;type:text" json:"tags,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// 実売価格。割引価格が 0 以上かつ定価未満のときだけ採用する。
func (p Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice >= 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	if p.Price < 0 {
		return 0
	}
	return p.Price
}

// 評価が無い（NaN含む）商品は 0 扱い
func (p Product) RatingValue() float64 {
	if p.Rating == nil || math.IsNaN(*p.Rating) {
		return 0
	}
	return *p.Rating
}

func (p Product) InStock() bool {
	return p.Stock > 0
}
