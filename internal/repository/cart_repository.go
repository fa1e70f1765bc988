package repository

import (
	"context"

	"github.com/edupode/mysterybox/internal/domain/model"
)

type CartRepository interface {
	// セッションのカートを取得し、無ければ作成（userIDがあれば紐付け）
	GetOrCreateBySessionID(ctx context.Context, sessionID string, userID *int64) (model.Cart, error)
	FindBySessionID(ctx context.Context, sessionID string) (model.Cart, error)
	// nilで解除
	SetCoupon(ctx context.Context, cartID string, code *string) error
	// 明細とクーポンを消す（カート自体は残す）
	Reset(ctx context.Context, cartID string) error
}
