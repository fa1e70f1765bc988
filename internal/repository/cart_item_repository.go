package repository

import (
	"context"

	"github.com/edupode/mysterybox/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	// 同一商品・同一期間はプラス
	UpsertByCartAndProduct(ctx context.Context, cartID string, productID string, sub model.SubscriptionType, addQty int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
}
