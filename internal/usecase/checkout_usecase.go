package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	"github.com/edupode/mysterybox/internal/infra/payment"
	repo "github.com/edupode/mysterybox/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CheckoutUsecase はカートから注文を作る。
// DBへの書き込みは最後のトランザクション1回だけで、
// それより前の失敗ではクーポン予約を戻す。
type CheckoutUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
	coupons   repo.CouponRepository
	resolver  CouponResolver
	payments  payment.Provider
	notifier  Notifier
	store     config.StoreConfig

	now   func() time.Time
	newID func() string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	products repo.ProductRepository,
	coupons repo.CouponRepository,
	resolver CouponResolver,
	payments payment.Provider,
	notifier Notifier,
	store config.StoreConfig,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:        tx,
		carts:     carts,
		cartItems: cartItems,
		products:  products,
		coupons:   coupons,
		resolver:  resolver,
		payments:  payments,
		notifier:  notifier,
		store:     store,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type CheckoutInput struct {
	SessionID       string
	UserID          *int64
	Email           string
	ShippingAddress string
	Phone           string
	TaxID           string
	PaymentMethod   string
	ShippingMethod  string
	SuccessURL      string
	CancelURL       string
}

type CheckoutOutput struct {
	OrderID          string              `json:"order_id"`
	PaymentMethod    model.PaymentMethod `json:"payment_method"`
	PaymentStatus    model.PaymentStatus `json:"payment_status"`
	OrderStatus      model.OrderStatus   `json:"order_status"`
	PaymentSessionID *string             `json:"payment_session_id,omitempty"`
	RedirectURL      string              `json:"redirect_url,omitempty"`
	CouponCode       *string             `json:"coupon_code,omitempty"`
	Subtotal         float64             `json:"subtotal"`
	Discount         float64             `json:"discount"`
	VAT              float64             `json:"vat"`
	Shipping         float64             `json:"shipping"`
	Total            float64             `json:"total"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	//入力チェック（ここで落ちたら何も書かない）
	method, shipping, err := validateCheckoutInput(in)
	if err != nil {
		return CheckoutOutput{}, err
	}

	//カート
	cart, err := u.carts.FindBySessionID(ctx, in.SessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	items, err := u.cartItems.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	lines, _, err := resolveLines(ctx, u.products, items)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//クーポン（失敗しても割引なしで続行）
	discount := u.resolveDiscount(ctx, cart, lines)

	//使用回数を先に確保。取れなければ割引なしで再計算
	if discount.Code != "" {
		ok, err := u.coupons.IncrementUsageIfAvailable(ctx, discount.Code)
		if err != nil {
			log.Warn().Err(err).Str("coupon", discount.Code).Msg("coupon reservation failed")
		}
		if err != nil || !ok {
			discount = Discount{}
		}
	}
	quote := pricing.Calculate(lines, discount.Amount, shipping)

	//0€の注文はStripeに渡せない
	if method.IsHosted() && pricing.MinorUnits(quote.Total) <= 0 {
		u.releaseCoupon(ctx, discount.Code)
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "order total is zero; choose a manual payment method")
	}

	orderID := u.newID()
	order := model.Order{
		ID:              orderID,
		UserID:          in.UserID,
		SessionID:       in.SessionID,
		CustomerEmail:   strings.TrimSpace(in.Email),
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.Discount,
		VATAmount:       quote.VAT,
		ShippingCost:    quote.Shipping,
		TotalAmount:     quote.Total,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Phone:           strings.TrimSpace(in.Phone),
		PaymentMethod:   method,
		ShippingMethod:  shipping.Code,
		PaymentStatus:   model.PaymentStatusPending,
		OrderStatus:     model.OrderStatusPending,
	}
	if discount.Code != "" {
		code := discount.Code
		order.CouponCode = &code
	}
	if taxID := strings.TrimSpace(in.TaxID); taxID != "" {
		order.TaxID = &taxID
	}

	//外部決済ページ
	var redirectURL string
	if method.IsHosted() {
		session, err := u.payments.CreateSession(ctx, payment.SessionRequest{
			OrderID:       orderID,
			CartSessionID: in.SessionID,
			CustomerEmail: order.CustomerEmail,
			Description:   fmt.Sprintf("Mystery Box #%s", shortOrderID(orderID)),
			AmountMinor:   pricing.MinorUnits(quote.Total),
			SuccessURL:    u.successURL(in.SuccessURL),
			CancelURL:     u.cancelURL(in.CancelURL),
		})
		if err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("payment session creation failed")
			u.releaseCoupon(ctx, discount.Code)
			return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider error")
		}
		order.PaymentSessionID = &session.ID
		redirectURL = session.URL
	}

	orderItems := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Category:         l.Category,
			SubscriptionType: l.SubscriptionType,
			UnitPrice:        l.UnitPrice,
			Quantity:         l.Quantity,
		})
	}

	//確定（注文・明細・カートのリセットを1トランザクションで）
	clearNow := !method.IsHosted() || u.store.ClearCartOn == config.ClearCartOnOrderCreated
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}
		if clearNow {
			return r.Carts().Reset(ctx, cart.ID)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("order commit failed")
		u.releaseCoupon(ctx, discount.Code)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	log.Info().
		Str("order_id", orderID).
		Str("payment_method", string(method)).
		Float64("total", pricing.Round2(quote.Total)).
		Msg("order created")

	//手動決済はこの時点で受付メール
	if !method.IsHosted() {
		if err := u.notifier.OrderConfirmed(ctx, order, orderItems); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("order confirmation email failed")
		}
	}

	return CheckoutOutput{
		OrderID:          orderID,
		PaymentMethod:    method,
		PaymentStatus:    order.PaymentStatus,
		OrderStatus:      order.OrderStatus,
		PaymentSessionID: order.PaymentSessionID,
		RedirectURL:      redirectURL,
		CouponCode:       order.CouponCode,
		Subtotal:         pricing.Round2(quote.Subtotal),
		Discount:         pricing.Round2(quote.Discount),
		VAT:              pricing.Round2(quote.VAT),
		Shipping:         pricing.Round2(quote.Shipping),
		Total:            pricing.Round2(quote.Total),
	}, nil
}

func validateCheckoutInput(in CheckoutInput) (model.PaymentMethod, pricing.ShippingMethod, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "session id required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "shipping address required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := netmail.ParseAddress(email); err != nil {
			return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "invalid email")
		}
	}
	if err := pricing.ValidateNIF(in.TaxID); err != nil {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "invalid tax id")
	}

	method := model.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !method.IsValid() {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}
	shipping, err := pricing.LookupShipping(strings.TrimSpace(in.ShippingMethod))
	if err != nil {
		return "", pricing.ShippingMethod{}, NewHTTPError(http.StatusBadRequest, "invalid shipping method")
	}
	return method, shipping, nil
}

func (u *CheckoutUsecase) resolveDiscount(ctx context.Context, cart model.Cart, lines []pricing.Line) Discount {
	if cart.CouponCode == nil || *cart.CouponCode == "" {
		return Discount{}
	}
	d, err := u.resolver.Resolve(ctx, *cart.CouponCode, lines, pricing.Subtotal(lines), u.now())
	if err != nil {
		log.Debug().Err(err).Str("coupon", *cart.CouponCode).Msg("coupon ignored at checkout")
		return Discount{}
	}
	return d
}

// 予約の取り消し。失敗はログのみ
func (u *CheckoutUsecase) releaseCoupon(ctx context.Context, code string) {
	if code == "" {
		return
	}
	if err := u.coupons.ReleaseUsage(ctx, code); err != nil {
		log.Error().Err(err).Str("coupon", code).Msg("coupon release failed")
	}
}

func (u *CheckoutUsecase) successURL(v string) string {
	if v != "" {
		return v
	}
	return u.store.FrontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

func (u *CheckoutUsecase) cancelURL(v string) string {
	if v != "" {
		return v
	}
	return u.store.FrontendURL + "/checkout/cancel"
}

func shortOrderID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
