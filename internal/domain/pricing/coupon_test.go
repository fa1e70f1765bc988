package pricing

import (
	"testing"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func baseCoupon() *model.Coupon {
	return &model.Coupon{
		Code:          "SUMMER",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 10,
		ValidFrom:     now.Add(-24 * time.Hour),
		ValidUntil:    now.Add(24 * time.Hour),
		IsActive:      true,
	}
}

func premium20() *model.Coupon {
	c := baseCoupon()
	c.Code = "PREMIUM20"
	c.DiscountValue = 20
	c.MinOrderValue = ptrF(50)
	return c
}

var cartLines = []Line{
	{ProductID: "p-geek", Category: "geek", UnitPrice: 30, Quantity: 1},
	{ProductID: "p-beauty", Category: "beauty", UnitPrice: 20, Quantity: 2},
}

func TestResolve_Percentage(t *testing.T) {
	d, err := Resolve(baseCoupon(), cartLines, 70, now)
	assert.NoError(t, err)
	assert.InDelta(t, 7, d, 1e-9)
}

func TestResolve_FixedCappedAtSubtotal(t *testing.T) {
	c := baseCoupon()
	c.DiscountType = model.DiscountFixed
	c.DiscountValue = 100

	d, err := Resolve(c, cartLines, 70, now)
	assert.NoError(t, err)
	assert.Equal(t, 70.0, d)
}

func TestResolve_FixedBelowSubtotal(t *testing.T) {
	c := baseCoupon()
	c.DiscountType = model.DiscountFixed
	c.DiscountValue = 15

	d, err := Resolve(c, cartLines, 70, now)
	assert.NoError(t, err)
	assert.Equal(t, 15.0, d)
}

func TestResolve_Gates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Coupon)
		want   error
	}{
		{"not yet valid", func(c *model.Coupon) { c.ValidFrom = now.Add(time.Hour) }, ErrCouponExpired},
		{"expired", func(c *model.Coupon) { c.ValidUntil = now.Add(-time.Hour) }, ErrCouponExpired},
		{"exhausted", func(c *model.Coupon) { c.MaxUses = ptrI(3); c.CurrentUses = 3 }, ErrCouponExhausted},
		{"category mismatch", func(c *model.Coupon) { c.ApplicableCategories = pq.StringArray{"food"} }, ErrCouponNotApplicable},
		{"below minimum", func(c *model.Coupon) { c.MinOrderValue = ptrF(100) }, ErrCouponMinOrder},
		{"unknown type", func(c *model.Coupon) { c.DiscountType = "bogo" }, ErrCouponMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			tt.mutate(c)

			d, err := Resolve(c, cartLines, 70, now)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, d)
		})
	}
}

// 期限切れは使用回数や最低金額が通っても弾く
func TestResolve_DateGateBeforeOthers(t *testing.T) {
	c := baseCoupon()
	c.ValidUntil = now.Add(-time.Minute)
	c.MaxUses = ptrI(10)
	c.CurrentUses = 1

	_, err := Resolve(c, cartLines, 70, now)
	assert.ErrorIs(t, err, ErrCouponExpired)
}

// 使用上限は日付が有効でも弾く
func TestResolve_UsageGateRegardlessOfDate(t *testing.T) {
	c := baseCoupon()
	c.MaxUses = ptrI(5)
	c.CurrentUses = 5

	_, err := Resolve(c, cartLines, 70, now)
	assert.ErrorIs(t, err, ErrCouponExhausted)
}

func TestApplies_AnyMatch(t *testing.T) {
	c := baseCoupon()
	c.ApplicableCategories = pq.StringArray{"beauty"}
	assert.True(t, Applies(c, cartLines))

	c = baseCoupon()
	c.ApplicableProducts = pq.StringArray{"p-geek"}
	assert.True(t, Applies(c, cartLines))

	c = baseCoupon()
	c.ApplicableCategories = pq.StringArray{"food"}
	c.ApplicableProducts = pq.StringArray{"p-other"}
	assert.False(t, Applies(c, cartLines))
}

func TestCheckValidity_NilCoupon(t *testing.T) {
	assert.ErrorIs(t, CheckValidity(nil, now), ErrCouponNotFound)
}
