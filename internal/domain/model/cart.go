package model

import "time"

// セッションごとのカート
// 注文後も行は消さず、明細とクーポンだけリセットする
type Cart struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *int64    `gorm:"index" json:"user_id,omitempty"`
	SessionID  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"session_id"`
	CouponCode *string   `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
