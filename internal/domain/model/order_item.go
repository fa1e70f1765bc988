package model

import "time"

// 注文明細（チェックアウト時点のスナップショット）
type OrderItem struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          string           `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        string           `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName      string           `gorm:"type:varchar(255);not null" json:"product_name"`
	Category         string           `gorm:"type:varchar(100);not null" json:"category"`
	SubscriptionType SubscriptionType `gorm:"type:varchar(20);not null;default:''" json:"subscription_type,omitempty"`
	UnitPrice        float64          `gorm:"not null" json:"unit_price"`
	Quantity         int64            `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}
