package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 管理画面から設定できる6つのステータスか
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 厳格モードで許可する遷移
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// from→toへ遷移できるか（同じステータスは常にOK）
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusError   PaymentStatus = "error"
	PaymentStatusExpired PaymentStatus = "expired"
)

type PaymentMethod string

const (
	// Stripe Checkoutへリダイレクト
	PaymentMethodStripe PaymentMethod = "stripe"

	// 手動決済（店側で確認）
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodMBWay          PaymentMethod = "mbway"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodBankTransfer, PaymentMethodMBWay, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// 外部の決済画面が必要か
func (m PaymentMethod) IsHosted() bool {
	return m == PaymentMethodStripe
}

// 注文
// 作成後に変わるのはpayment_status/order_status（と追跡番号）だけ
type Order struct {
	ID               string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           *int64        `gorm:"index" json:"user_id,omitempty"`
	SessionID        string        `gorm:"type:varchar(255);not null;index" json:"session_id"`
	CustomerEmail    string        `gorm:"type:varchar(255)" json:"customer_email"`
	Subtotal         float64       `gorm:"not null" json:"subtotal"`
	DiscountAmount   float64       `gorm:"not null" json:"discount_amount"`
	VATAmount        float64       `gorm:"column:vat_amount;not null" json:"vat_amount"`
	ShippingCost     float64       `gorm:"not null" json:"shipping_cost"`
	TotalAmount      float64       `gorm:"not null" json:"total_amount"`
	CouponCode       *string       `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	ShippingAddress  string        `gorm:"type:text;not null" json:"shipping_address"`
	Phone            string        `gorm:"type:varchar(30);not null" json:"phone"`
	TaxID            *string       `gorm:"type:varchar(20)" json:"tax_id,omitempty"`
	PaymentMethod    PaymentMethod `gorm:"type:varchar(30);not null" json:"payment_method"`
	ShippingMethod   string        `gorm:"type:varchar(30);not null" json:"shipping_method"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	OrderStatus      OrderStatus   `gorm:"type:varchar(20);not null;index" json:"order_status"`
	PaymentSessionID *string       `gorm:"type:varchar(255);uniqueIndex" json:"payment_session_id,omitempty"`
	TrackingNumber   *string       `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
