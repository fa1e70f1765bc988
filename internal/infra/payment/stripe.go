package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider は Stripe Checkout（paymentモード）で決済します。
type StripeProvider struct {
	sc       *client.API
	currency string
}

func NewStripeProvider(secretKey, currency string) *StripeProvider {
	return &StripeProvider{
		sc:       client.New(secretKey, nil),
		currency: currency,
	}
}

// 注文合計を1行で請求する（支払額＝保存した合計）
func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("session_id", req.CartSessionID)

	s, err := p.sc.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("stripe create session: %w", err)
	}

	log.Debug().Str("order_id", req.OrderID).Str("payment_session_id", s.ID).Msg("stripe session created")
	return Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return "", fmt.Errorf("stripe get session: %w", err)
	}
	return statusFromStripe(s.Status, s.PaymentStatus), nil
}

func statusFromStripe(status stripe.CheckoutSessionStatus, paid stripe.CheckoutSessionPaymentStatus) SessionStatus {
	switch {
	case paid == stripe.CheckoutSessionPaymentStatusPaid,
		paid == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return SessionPaid
	case status == stripe.CheckoutSessionStatusExpired:
		return SessionExpired
	default:
		return SessionPending
	}
}
