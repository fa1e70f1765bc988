package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	"github.com/edupode/mysterybox/internal/infra/payment"
	repo "github.com/edupode/mysterybox/internal/repository"

	"github.com/rs/zerolog/log"
)

// 決済ステータスの短期キャッシュ（Redis無しならnil）
type PaymentStatusCache interface {
	Get(ctx context.Context, sessionID string) (payment.SessionStatus, bool)
	Set(ctx context.Context, sessionID string, status payment.SessionStatus) error
}

type PaymentUsecase struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	carts       repo.CartRepository
	payments    payment.Provider
	cache       PaymentStatusCache
	notifier    Notifier
	clearCartOn config.ClearCartOn
}

func NewPaymentUsecase(
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	carts repo.CartRepository,
	payments payment.Provider,
	cache PaymentStatusCache,
	notifier Notifier,
	clearCartOn config.ClearCartOn,
) *PaymentUsecase {
	return &PaymentUsecase{
		orders:      orders,
		orderItems:  orderItems,
		carts:       carts,
		payments:    payments,
		cache:       cache,
		notifier:    notifier,
		clearCartOn: clearCartOn,
	}
}

type PaymentStatusOutput struct {
	OrderID       string              `json:"order_id"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	OrderStatus   model.OrderStatus   `json:"order_status"`
	Total         float64             `json:"total"`
}

// GET /payments/:session_id/status
// プロバイダがpaidを返したら注文を確定する。確定処理は1回だけ。
func (u *PaymentUsecase) GetPaymentStatus(ctx context.Context, sessionID string) (PaymentStatusOutput, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusBadRequest, "session id required")
	}

	o, err := u.orders.FindByPaymentSessionID(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return PaymentStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//支払い済みならプロバイダに聞かない
	if o.PaymentStatus == model.PaymentStatusPaid {
		return toPaymentStatusOutput(o), nil
	}

	status, err := u.providerStatus(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("payment status lookup failed")
		return PaymentStatusOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	switch status {
	case payment.SessionPaid:
		won, err := u.orders.MarkPaidIfPending(ctx, o.ID)
		if err != nil {
			return PaymentStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		o.PaymentStatus = model.PaymentStatusPaid
		if o.OrderStatus == model.OrderStatusPending {
			o.OrderStatus = model.OrderStatusConfirmed
		}
		if won {
			log.Info().Str("order_id", o.ID).Msg("payment confirmed")
			u.afterPaid(ctx, o)
		}

	case payment.SessionExpired:
		if o.PaymentStatus != model.PaymentStatusExpired {
			if err := u.orders.UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusExpired); err != nil {
				return PaymentStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			o.PaymentStatus = model.PaymentStatusExpired
		}
	}

	return toPaymentStatusOutput(o), nil
}

func (u *PaymentUsecase) providerStatus(ctx context.Context, sessionID string) (payment.SessionStatus, error) {
	if u.cache != nil {
		if st, ok := u.cache.Get(ctx, sessionID); ok {
			return st, nil
		}
	}

	st, err := u.payments.GetSessionStatus(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, sessionID, st); err != nil {
			log.Warn().Err(err).Msg("payment status cache set failed")
		}
	}
	return st, nil
}

// 確定した呼び出しだけが行う後処理。失敗はログのみ
func (u *PaymentUsecase) afterPaid(ctx context.Context, o model.Order) {
	items, err := u.orderItems.ListByOrderID(ctx, o.ID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("order items load failed")
	} else if err := u.notifier.OrderConfirmed(ctx, o, items); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("order confirmation email failed")
	}

	if u.clearCartOn != config.ClearCartOnPaymentConfirmed {
		return
	}
	cart, err := u.carts.FindBySessionID(ctx, o.SessionID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("cart lookup after payment failed")
		return
	}
	if err := u.carts.Reset(ctx, cart.ID); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("cart reset after payment failed")
	}
}

func toPaymentStatusOutput(o model.Order) PaymentStatusOutput {
	return PaymentStatusOutput{
		OrderID:       o.ID,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		Total:         pricing.Round2(o.TotalAmount),
	}
}
