package usecase

import (
	"context"
	"errors"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	repo "github.com/edupode/mysterybox/internal/repository"
)

// 価格を決められる明細だけを返す（削除・非公開の商品は飛ばす）
func resolveLines(ctx context.Context, products repo.ProductRepository, items []model.CartItem) ([]pricing.Line, []model.CartItem, error) {
	lines := make([]pricing.Line, 0, len(items))
	kept := make([]model.CartItem, 0, len(items))

	for _, it := range items {
		p, err := products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if !p.IsActive {
			continue
		}

		lines = append(lines, pricing.Line{
			ProductID:        p.ID,
			ProductName:      p.Name,
			Category:         p.Category,
			SubscriptionType: it.SubscriptionType,
			UnitPrice:        p.UnitPrice(it.SubscriptionType),
			Quantity:         it.Quantity,
		})
		kept = append(kept, it)
	}
	return lines, kept, nil
}
