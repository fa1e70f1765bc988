// 小計・割引・IVA・送料・合計の計算（DBには触らない）
package pricing

import "github.com/edupode/mysterybox/internal/domain/model"

// ポルトガルのIVA（全注文一律）
const VATRate = 0.23

// 単価決定済みのカート明細
type Line struct {
	ProductID        string
	ProductName      string
	Category         string
	SubscriptionType model.SubscriptionType
	UnitPrice        float64
	Quantity         int64
}

// 金額の内訳（丸めていない値）
type Quote struct {
	Subtotal float64
	Discount float64
	VAT      float64
	Shipping float64
	Total    float64
}

// 単価×数量の合計
func Subtotal(lines []Line) float64 {
	var s float64
	for _, l := range lines {
		s += l.UnitPrice * float64(l.Quantity)
	}
	return s
}

// 割引決定済みで計算する（小計を超える割引はここでは丸めない）
func Calculate(lines []Line, discount float64, method ShippingMethod) Quote {
	subtotal := Subtotal(lines)
	net := subtotal - discount
	vat := net * VATRate
	shipping := ShippingCost(method, net)

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		VAT:      vat,
		Shipping: shipping,
		Total:    net + vat + shipping,
	}
}

// カート画面用（送料なし）
func Preview(lines []Line, discount float64) Quote {
	subtotal := Subtotal(lines)
	net := subtotal - discount
	vat := net * VATRate
	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		VAT:      vat,
		Total:    net + vat,
	}
}
