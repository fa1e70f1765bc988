package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	repo "github.com/edupode/mysterybox/internal/repository"
)

// 購入者向けの注文参照
type OrderUsecase struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func NewOrderUsecase(orders repo.OrderRepository, orderItems repo.OrderItemRepository) *OrderUsecase {
	return &OrderUsecase{orders: orders, orderItems: orderItems}
}

type OrderItemOutput struct {
	ProductID        string                 `json:"product_id"`
	Name             string                 `json:"name"`
	Category         string                 `json:"category"`
	SubscriptionType model.SubscriptionType `json:"subscription_type,omitempty"`
	UnitPrice        float64                `json:"unit_price"`
	Quantity         int64                  `json:"quantity"`
}

type OrderOutput struct {
	ID              string              `json:"id"`
	UserID          *int64              `json:"user_id,omitempty"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	OrderStatus     model.OrderStatus   `json:"order_status"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	ShippingMethod  string              `json:"shipping_method"`
	Subtotal        float64             `json:"subtotal"`
	Discount        float64             `json:"discount"`
	VAT             float64             `json:"vat"`
	Shipping        float64             `json:"shipping"`
	Total           float64             `json:"total"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	ShippingAddress string              `json:"shipping_address"`
	Phone           string              `json:"phone"`
	TaxID           *string             `json:"tax_id,omitempty"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemOutput   `json:"items"`
}

// ログインユーザーの注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := u.orderItems.ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}

// ユーザー本人かカートのセッションが一致するときだけ返す。他人の注文は404
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string, userID *int64, sessionID string) (OrderOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	ownedByUser := userID != nil && o.UserID != nil && *o.UserID == *userID
	ownedBySession := sessionID != "" && o.SessionID == sessionID
	if !ownedByUser && !ownedBySession {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:        it.ProductID,
			Name:             it.ProductName,
			Category:         it.Category,
			SubscriptionType: it.SubscriptionType,
			UnitPrice:        pricing.Round2(it.UnitPrice),
			Quantity:         it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerEmail:   o.CustomerEmail,
		OrderStatus:     o.OrderStatus,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		ShippingMethod:  o.ShippingMethod,
		Subtotal:        pricing.Round2(o.Subtotal),
		Discount:        pricing.Round2(o.DiscountAmount),
		VAT:             pricing.Round2(o.VATAmount),
		Shipping:        pricing.Round2(o.ShippingCost),
		Total:           pricing.Round2(o.TotalAmount),
		CouponCode:      o.CouponCode,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		TaxID:           o.TaxID,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
