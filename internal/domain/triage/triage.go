// 管理画面の注文一覧を対応順に並べる
package triage

import "github.com/edupode/mysterybox/internal/domain/model"

// 一覧から外す終端ステータスか
func Hidden(s model.OrderStatus) bool {
	return s == model.OrderStatusDelivered || s == model.OrderStatusCancelled
}

// delivered/cancelledを除き、shippedを後ろへ回す（グループ内の順序は保持）
func Partition(orders []model.Order) []model.Order {
	top := make([]model.Order, 0, len(orders))
	var bottom []model.Order

	for _, o := range orders {
		switch {
		case Hidden(o.OrderStatus):
			continue
		case o.OrderStatus == model.OrderStatusShipped:
			bottom = append(bottom, o)
		default:
			top = append(top, o)
		}
	}
	return append(top, bottom...)
}
