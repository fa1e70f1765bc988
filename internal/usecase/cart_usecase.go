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

	"github.com/rs/zerolog/log"
)

// CartUsecase は /cart の業務ロジックです。
// カートは X-Session-ID ごとに1つ。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	coupons      CouponResolver
	now          func() time.Time
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	coupons CouponResolver,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		coupons:      coupons,
		now:          time.Now,
	}
}

type CartItemResponse struct {
	ID               int64                  `json:"id"`
	ProductID        string                 `json:"product_id"`
	Name             string                 `json:"name"`
	Category         string                 `json:"category"`
	SubscriptionType model.SubscriptionType `json:"subscription_type,omitempty"`
	UnitPrice        float64                `json:"unit_price"`
	Quantity         int64                  `json:"quantity"`
	LineTotal        float64                `json:"line_total"`
}

// 送料はチェックアウトで決まるので含めない
type CartResponse struct {
	ID          string             `json:"id"`
	SessionID   string             `json:"session_id"`
	Items       []CartItemResponse `json:"items"`
	CouponCode  *string            `json:"coupon_code,omitempty"`
	CouponError string             `json:"coupon_error,omitempty"`
	Subtotal    float64            `json:"subtotal"`
	Discount    float64            `json:"discount"`
	VAT         float64            `json:"vat"`
	Total       float64            `json:"total"`
}

type AddCartInput struct {
	ProductID        string
	Quantity         int64
	SubscriptionType string
}

type UpdateCartItemInput struct {
	Quantity int64
}

// カート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string, userID *int64) (CartResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session id required")
	}

	cart, err := u.cartRepo.GetOrCreateBySessionID(ctx, sessionID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart)
}

// カートに追加（同一商品・同一期間は数量加算）
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, userID *int64, in AddCartInput) (CartResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session id required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	sub := model.SubscriptionType(strings.TrimSpace(in.SubscriptionType))
	if !sub.IsValid() {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid subscription_type")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	cart, err := u.cartRepo.GetOrCreateBySessionID(ctx, sessionID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, p.ID, sub, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// 数量変更（このセッションのカートの明細だけ）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.ownedItemCart(ctx, sessionID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, sessionID string, cartItemID int64) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := u.ownedItemCart(ctx, sessionID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// クーポンを今のカートで検証してから保存
func (u *CartUsecase) ApplyCoupon(ctx context.Context, sessionID string, code string) (CartResponse, error) {
	code = model.NormalizeCouponCode(code)
	if code == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "code required")
	}

	cart, err := u.findCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	lines, _, err := resolveLines(ctx, u.productRepo, items)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(lines) == 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	if _, err := u.coupons.Resolve(ctx, code, lines, pricing.Subtotal(lines), u.now()); err != nil {
		return CartResponse{}, couponHTTPError(err)
	}

	if err := u.cartRepo.SetCoupon(ctx, cart.ID, &code); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	cart.CouponCode = &code

	return u.buildCartResponse(ctx, cart)
}

func (u *CartUsecase) RemoveCoupon(ctx context.Context, sessionID string) (CartResponse, error) {
	cart, err := u.findCart(ctx, sessionID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartRepo.SetCoupon(ctx, cart.ID, nil); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	cart.CouponCode = nil

	return u.buildCartResponse(ctx, cart)
}

func (u *CartUsecase) findCart(ctx context.Context, sessionID string) (model.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "session id required")
	}
	cart, err := u.cartRepo.FindBySessionID(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}

// 明細がこのセッションのカートのものか確認
func (u *CartUsecase) ownedItemCart(ctx context.Context, sessionID string, cartItemID int64) (model.Cart, error) {
	cart, err := u.findCart(ctx, sessionID)
	if err != nil {
		return model.Cart{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.CartID != cart.ID {
		return model.Cart{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return cart, nil
}

// 明細と試算（送料抜き）をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines, kept, err := resolveLines(ctx, u.productRepo, items)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(lines))
	for i, l := range lines {
		respItems = append(respItems, CartItemResponse{
			ID:               kept[i].ID,
			ProductID:        l.ProductID,
			Name:             l.ProductName,
			Category:         l.Category,
			SubscriptionType: l.SubscriptionType,
			UnitPrice:        pricing.Round2(l.UnitPrice),
			Quantity:         l.Quantity,
			LineTotal:        pricing.Round2(l.UnitPrice * float64(l.Quantity)),
		})
	}

	resp := CartResponse{
		ID:         cart.ID,
		SessionID:  cart.SessionID,
		Items:      respItems,
		CouponCode: cart.CouponCode,
	}

	//クーポンは使用回数を増やさずに試算だけ
	var discount float64
	if cart.CouponCode != nil && len(lines) > 0 {
		d, err := u.coupons.Resolve(ctx, *cart.CouponCode, lines, pricing.Subtotal(lines), u.now())
		if err != nil {
			log.Debug().Err(err).Str("cart_id", cart.ID).Msg("coupon not applied to cart preview")
			resp.CouponError = err.Error()
		} else {
			discount = d.Amount
		}
	}

	q := pricing.Preview(lines, discount)
	resp.Subtotal = pricing.Round2(q.Subtotal)
	resp.Discount = pricing.Round2(q.Discount)
	resp.VAT = pricing.Round2(q.VAT)
	resp.Total = pricing.Round2(q.Total)

	return resp, nil
}
