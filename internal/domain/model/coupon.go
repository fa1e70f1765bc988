package model

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// クーポン
// codeは大文字で保存、current_usesはmax_usesを超えない
type Coupon struct {
	ID            string       `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string       `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Description   string       `gorm:"type:text" json:"description"`
	DiscountType  DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue float64      `gorm:"not null" json:"discount_value"`
	MinOrderValue *float64     `json:"min_order_value,omitempty"`
	MaxUses       *int64       `json:"max_uses,omitempty"`
	CurrentUses   int64        `gorm:"not null;default:0" json:"current_uses"`
	ValidFrom     time.Time    `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time    `gorm:"not null" json:"valid_until"`

	//空なら全商品に適用
	ApplicableCategories pq.StringArray `gorm:"type:text[]" json:"applicable_categories"`
	ApplicableProducts   pq.StringArray `gorm:"type:text[]" json:"applicable_products"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 保存・検索用にコードを正規化
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
