package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/triage"
	repo "github.com/edupode/mysterybox/internal/repository"

	"github.com/rs/zerolog/log"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	notifier  Notifier
	// trueなら遷移表にない変更を拒否
	strict bool
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, notifier Notifier, strict bool) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, notifier: notifier, strict: strict}
}

type AdminUpdateOrderStatusInput struct {
	Status         string
	TrackingNumber *string
}

// 注文一覧（配達済み・キャンセルは出さず、発送済みは下に）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAll(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		visible := triage.Partition(orders)
		outs = make([]OrderOutput, 0, len(visible))
		for _, o := range visible {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

type statusSnapshot struct {
	Status         model.OrderStatus `json:"status"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
}

// ステータス更新（発送時はメール）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID string, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.IsValid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var tracking *string
	if in.TrackingNumber != nil {
		if t := strings.TrimSpace(*in.TrackingNumber); t != "" {
			tracking = &t
		}
	}

	var updated model.Order
	var shippedNow bool

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.OrderStatus == newStatus && tracking == nil {
			updated = o
			return nil
		}
		if u.strict && !model.CanTransition(o.OrderStatus, newStatus) {
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		before, _ := json.Marshal(statusSnapshot{Status: o.OrderStatus, TrackingNumber: o.TrackingNumber})

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus, tracking); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		shippedNow = newStatus == model.OrderStatusShipped && o.OrderStatus != model.OrderStatusShipped
		o.OrderStatus = newStatus
		if tracking != nil {
			o.TrackingNumber = tracking
		}
		updated = o

		// 監査ログ（UPDATE_ORDER_STATUS）
		after, _ := json.Marshal(statusSnapshot{Status: o.OrderStatus, TrackingNumber: o.TrackingNumber})
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		return err
	}

	if shippedNow {
		if err := u.notifier.OrderShipped(ctx, updated); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("shipping email failed")
		}
	}
	return nil
}
