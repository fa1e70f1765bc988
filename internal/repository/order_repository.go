package repository

import (
	"context"

	"github.com/edupode/mysterybox/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByPaymentSessionID(ctx context.Context, sessionID string) (model.Order, error)

	// 新しい順
	ListAll(ctx context.Context) ([]model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)

	// trackingがnilなら追跡番号は変えない
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, tracking *string) error
	UpdatePaymentStatus(ctx context.Context, orderID string, status model.PaymentStatus) error

	// 未払いのときだけpaidにする。更新できた呼び出しだけtrue
	MarkPaidIfPending(ctx context.Context, orderID string) (bool, error)
}
