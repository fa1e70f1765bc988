package repository

import (
	"context"
	"errors"

	"github.com/edupode/mysterybox/internal/domain/model"
	repo "github.com/edupode/mysterybox/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CouponGormRepository struct {
	db *gorm.DB
}

func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

// 有効なクーポンをコードで取得
func (r *CouponGormRepository) FindActiveByCode(ctx context.Context, code string) (model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", model.NormalizeCouponCode(code), true).
		First(&c).Error
	if isNotFound(err) {
		return model.Coupon{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) Create(ctx context.Context, c model.Coupon) (model.Coupon, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Code = model.NormalizeCouponCode(c.Code)
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Coupon{}, repo.ErrConflict
		}
		return model.Coupon{}, err
	}
	return c, nil
}

func (r *CouponGormRepository) List(ctx context.Context) ([]model.Coupon, error) {
	var list []model.Coupon
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return []model.Coupon{}, err
	}
	return list, nil
}

// 上限に達していないときだけ使用回数を+1
func (r *CouponGormRepository) IncrementUsageIfAvailable(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("code = ? AND is_active = ? AND (max_uses IS NULL OR current_uses < max_uses)", model.NormalizeCouponCode(code), true).
		UpdateColumn("current_uses", gorm.Expr("current_uses + ?", 1))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 予約戻し（決済失敗など）
func (r *CouponGormRepository) ReleaseUsage(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("code = ? AND current_uses > 0", model.NormalizeCouponCode(code)).
		UpdateColumn("current_uses", gorm.Expr("current_uses - ?", 1))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
