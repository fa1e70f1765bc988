package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	repo "github.com/edupode/mysterybox/internal/repository"

	"github.com/lib/pq"
)

// クーポン適用の結果
type Discount struct {
	Code   string
	Amount float64
}

// カート・チェックアウトが使うクーポン解決
type CouponResolver interface {
	Resolve(ctx context.Context, code string, lines []pricing.Line, subtotal float64, now time.Time) (Discount, error)
}

type CouponUsecase struct {
	coupons   repo.CouponRepository
	auditRepo repo.AuditLogRepository
	now       func() time.Time
}

func NewCouponUsecase(coupons repo.CouponRepository, auditRepo repo.AuditLogRepository) *CouponUsecase {
	return &CouponUsecase{coupons: coupons, auditRepo: auditRepo, now: time.Now}
}

type CouponOutput struct {
	Code          string             `json:"code"`
	Description   string             `json:"description"`
	DiscountType  model.DiscountType `json:"discount_type"`
	DiscountValue float64            `json:"discount_value"`
	MinOrderValue *float64           `json:"min_order_value,omitempty"`
	ValidUntil    time.Time          `json:"valid_until"`
}

// Resolve はゲート1（コード検索）から順に確認し、割引額を返す。
// どのゲートで落ちても Discount はゼロ値。
func (u *CouponUsecase) Resolve(ctx context.Context, code string, lines []pricing.Line, subtotal float64, now time.Time) (Discount, error) {
	code = model.NormalizeCouponCode(code)
	if code == "" {
		return Discount{}, pricing.ErrCouponNotFound
	}

	c, err := u.coupons.FindActiveByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return Discount{}, pricing.ErrCouponNotFound
	}
	if err != nil {
		return Discount{}, err
	}

	amount, err := pricing.Resolve(&c, lines, subtotal, now)
	if err != nil {
		return Discount{}, err
	}
	return Discount{Code: c.Code, Amount: amount}, nil
}

// GET /coupons/:code/validate
// 日付と使用回数だけを見る（カートの中身は見ない）
func (u *CouponUsecase) Validate(ctx context.Context, code string) (CouponOutput, error) {
	code = model.NormalizeCouponCode(code)
	if code == "" {
		return CouponOutput{}, NewHTTPError(http.StatusBadRequest, "code required")
	}

	c, err := u.coupons.FindActiveByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return CouponOutput{}, NewHTTPError(http.StatusNotFound, "coupon not found")
	}
	if err != nil {
		return CouponOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := pricing.CheckValidity(&c, u.now()); err != nil {
		return CouponOutput{}, couponHTTPError(err)
	}
	return toCouponOutput(c), nil
}

type AdminCreateCouponInput struct {
	Code                 string
	Description          string
	DiscountType         string
	DiscountValue        float64
	MinOrderValue        *float64
	MaxUses              *int64
	ValidFrom            time.Time
	ValidUntil           time.Time
	ApplicableCategories []string
	ApplicableProducts   []string
}

func (u *CouponUsecase) AdminCreateCoupon(ctx context.Context, adminUserID int64, in AdminCreateCouponInput) (model.Coupon, error) {
	if adminUserID <= 0 {
		return model.Coupon{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	code := model.NormalizeCouponCode(in.Code)
	if code == "" || len(code) > 64 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	dt := model.DiscountType(strings.TrimSpace(in.DiscountType))
	switch dt {
	case model.DiscountPercentage:
		if in.DiscountValue <= 0 || in.DiscountValue > 100 {
			return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "percentage must be in (0, 100]")
		}
	case model.DiscountFixed:
		if in.DiscountValue <= 0 {
			return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "discount_value must be > 0")
		}
	default:
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid discount_type")
	}
	if in.MinOrderValue != nil && *in.MinOrderValue < 0 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "min_order_value must be >= 0")
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "max_uses must be >= 1")
	}
	if in.ValidFrom.IsZero() || in.ValidUntil.IsZero() || !in.ValidUntil.After(in.ValidFrom) {
		return model.Coupon{}, NewHTTPError(http.StatusBadRequest, "invalid validity window")
	}

	c, err := u.coupons.Create(ctx, model.Coupon{
		Code:                 code,
		Description:          strings.TrimSpace(in.Description),
		DiscountType:         dt,
		DiscountValue:        in.DiscountValue,
		MinOrderValue:        in.MinOrderValue,
		MaxUses:              in.MaxUses,
		ValidFrom:            in.ValidFrom,
		ValidUntil:           in.ValidUntil,
		ApplicableCategories: pq.StringArray(in.ApplicableCategories),
		ApplicableProducts:   pq.StringArray(in.ApplicableProducts),
		IsActive:             true,
	})
	if errors.Is(err, repo.ErrConflict) {
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "coupon code already exists")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	after, _ := json.Marshal(c)
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionCreateCoupon,
		ResourceType: model.AuditResourceCoupon,
		ResourceID:   c.ID,
		AfterJSON:    string(after),
		CreatedAt:    u.now(),
	}); err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return c, nil
}

func (u *CouponUsecase) AdminListCoupons(ctx context.Context) ([]model.Coupon, error) {
	list, err := u.coupons.List(ctx)
	if err != nil {
		return []model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

// ゲートのエラーを400/404に変換
func couponHTTPError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrCouponNotFound):
		return NewHTTPError(http.StatusNotFound, "coupon not found")
	case errors.Is(err, pricing.ErrCouponExpired),
		errors.Is(err, pricing.ErrCouponExhausted),
		errors.Is(err, pricing.ErrCouponNotApplicable),
		errors.Is(err, pricing.ErrCouponMinOrder),
		errors.Is(err, pricing.ErrCouponMalformed):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}

func toCouponOutput(c model.Coupon) CouponOutput {
	return CouponOutput{
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		MinOrderValue: c.MinOrderValue,
		ValidUntil:    c.ValidUntil,
	}
}
