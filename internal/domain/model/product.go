package model

import (
	"time"

	"gorm.io/gorm"
)

// サブスクリプション期間
type SubscriptionType string

const (
	SubscriptionNone     SubscriptionType = ""
	Subscription1Month   SubscriptionType = "1_month"
	Subscription3Months  SubscriptionType = "3_months"
	Subscription6Months  SubscriptionType = "6_months"
	Subscription12Months SubscriptionType = "12_months"
)

// 既知の期間か（空＝サブスクなしもOK）
func (s SubscriptionType) IsValid() bool {
	switch s {
	case SubscriptionNone, Subscription1Month, Subscription3Months, Subscription6Months, Subscription12Months:
		return true
	}
	return false
}

// ミステリーボックス商品
// 注文時に価格はOrderItemへコピーされる
type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Category    string  `gorm:"type:varchar(100);not null;index" json:"category"`
	Price       float64 `gorm:"not null" json:"price"`

	//期間ごとのサブスク価格（未設定ならPrice）
	Price1Month   *float64 `gorm:"column:price_1_month" json:"price_1_month,omitempty"`
	Price3Months  *float64 `gorm:"column:price_3_months" json:"price_3_months,omitempty"`
	Price6Months  *float64 `gorm:"column:price_6_months" json:"price_6_months,omitempty"`
	Price12Months *float64 `gorm:"column:price_12_months" json:"price_12_months,omitempty"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 明細の単価を決める
func (p Product) UnitPrice(sub SubscriptionType) float64 {
	var v *float64
	switch sub {
	case Subscription1Month:
		v = p.Price1Month
	case Subscription3Months:
		v = p.Price3Months
	case Subscription6Months:
		v = p.Price6Months
	case Subscription12Months:
		v = p.Price12Months
	}
	if v != nil {
		return *v
	}
	return p.Price
}
