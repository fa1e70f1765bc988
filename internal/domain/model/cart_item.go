package model

import "time"

// カートの明細
// (cart_id, product_id, subscription_type)で一意、同じなら数量加算
type CartItem struct {
	ID               int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID           string           `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_line" json:"cart_id"`
	ProductID        string           `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_line" json:"product_id"`
	SubscriptionType SubscriptionType `gorm:"type:varchar(20);not null;default:'';uniqueIndex:ux_cart_items_line" json:"subscription_type,omitempty"`
	Quantity         int64            `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
