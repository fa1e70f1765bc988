package repository

import (
	"context"

	"github.com/edupode/mysterybox/internal/domain/model"
)

type CouponRepository interface {
	// 有効（is_active）なクーポンをコードで取得
	FindActiveByCode(ctx context.Context, code string) (model.Coupon, error)
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)

	// 上限に達していないときだけ current_uses を+1
	IncrementUsageIfAvailable(ctx context.Context, code string) (bool, error)
	// 予約の取り消し（0未満にはしない）
	ReleaseUsage(ctx context.Context, code string) error
}
