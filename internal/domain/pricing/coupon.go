package pricing

import (
	"errors"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
)

// どれも「割引なし」。エラーにするか無視するかは呼び出し側で決める
var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponExhausted     = errors.New("coupon usage limit reached")
	ErrCouponNotApplicable = errors.New("coupon not applicable to cart items")
	ErrCouponMinOrder      = errors.New("order below coupon minimum")
	ErrCouponMalformed     = errors.New("coupon malformed")
)

// 期間チェック、使用回数チェックの順
func CheckValidity(c *model.Coupon, now time.Time) error {
	if c == nil {
		return ErrCouponNotFound
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return ErrCouponExpired
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return ErrCouponExhausted
	}
	return nil
}

// 対象の明細が1つでもあるか（対象リストが空なら全商品）
func Applies(c *model.Coupon, lines []Line) bool {
	if len(c.ApplicableCategories) == 0 && len(c.ApplicableProducts) == 0 {
		return true
	}
	for _, l := range lines {
		if contains(c.ApplicableCategories, l.Category) || contains(c.ApplicableProducts, l.ProductID) {
			return true
		}
	}
	return false
}

// 取得済みクーポンを検証して割引額を返す
func Resolve(c *model.Coupon, lines []Line, subtotal float64, now time.Time) (float64, error) {
	if err := CheckValidity(c, now); err != nil {
		return 0, err
	}
	if !Applies(c, lines) {
		return 0, ErrCouponNotApplicable
	}
	if c.MinOrderValue != nil && subtotal < *c.MinOrderValue {
		return 0, ErrCouponMinOrder
	}

	switch c.DiscountType {
	case model.DiscountPercentage:
		return subtotal * (c.DiscountValue / 100), nil
	case model.DiscountFixed:
		if c.DiscountValue > subtotal {
			return subtotal, nil
		}
		return c.DiscountValue, nil
	default:
		return 0, ErrCouponMalformed
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
