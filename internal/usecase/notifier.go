package usecase

import (
	"context"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	"github.com/edupode/mysterybox/internal/infra/mail"

	"github.com/shopspring/decimal"
)

// 注文メールの送信口。失敗しても注文処理は止めない（呼び出し側でログ）
type Notifier interface {
	OrderConfirmed(ctx context.Context, o model.Order, items []model.OrderItem) error
	OrderShipped(ctx context.Context, o model.Order) error
}

type MailNotifier struct {
	sender mail.Sender
}

func NewMailNotifier(sender mail.Sender) *MailNotifier {
	return &MailNotifier{sender: sender}
}

func (n *MailNotifier) OrderConfirmed(ctx context.Context, o model.Order, items []model.OrderItem) error {
	//メールアドレス無しの注文は送らない
	if o.CustomerEmail == "" {
		return nil
	}

	views := make([]mail.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, mail.ItemView{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Total:     money(it.UnitPrice * float64(it.Quantity)),
		})
	}

	subject, html, err := mail.RenderOrderConfirmation(mail.OrderConfirmationView{
		OrderID:         o.ID,
		Items:           views,
		Subtotal:        money(o.Subtotal),
		Discount:        money(o.DiscountAmount),
		HasDiscount:     o.DiscountAmount > 0,
		VAT:             money(o.VATAmount),
		Shipping:        money(o.ShippingCost),
		Total:           money(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
	})
	if err != nil {
		return err
	}

	_, err = n.sender.Send(ctx, o.CustomerEmail, subject, html)
	return err
}

func (n *MailNotifier) OrderShipped(ctx context.Context, o model.Order) error {
	if o.CustomerEmail == "" {
		return nil
	}

	tracking := ""
	if o.TrackingNumber != nil {
		tracking = *o.TrackingNumber
	}
	subject, html, err := mail.RenderShippingNotification(mail.ShippingNotificationView{
		OrderID:         o.ID,
		TrackingNumber:  tracking,
		ShippingAddress: o.ShippingAddress,
	})
	if err != nil {
		return err
	}

	_, err = n.sender.Send(ctx, o.CustomerEmail, subject, html)
	return err
}

// 表示用に小数2桁の文字列
func money(v float64) string {
	return decimal.NewFromFloat(pricing.Round2(v)).StringFixed(2)
}
