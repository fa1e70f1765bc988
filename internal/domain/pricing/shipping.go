package pricing

import (
	"errors"
	"sort"
)

var ErrUnknownShippingMethod = errors.New("unknown shipping method")

// 配送方法（固定テーブルの1行）
// FreeThresholdがあれば (小計 - 割引) がそれ以上で送料0
type ShippingMethod struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	FreeThreshold *float64 `json:"free_threshold,omitempty"`
	EstimatedDays string   `json:"estimated_days"`
}

func threshold(v float64) *float64 { return &v }

var shippingMethods = map[string]ShippingMethod{
	"standard": {Code: "standard", Name: "Envio Standard", Price: 4.99, FreeThreshold: threshold(50), EstimatedDays: "3-5"},
	"express":  {Code: "express", Name: "Envio Expresso", Price: 9.99, EstimatedDays: "1-2"},
	"free":     {Code: "free", Name: "Envio Gratuito", Price: 0, EstimatedDays: "5-7"},
}

// コードから配送方法を引く
func LookupShipping(code string) (ShippingMethod, error) {
	m, ok := shippingMethods[code]
	if !ok {
		return ShippingMethod{}, ErrUnknownShippingMethod
	}
	return m, nil
}

// 料金の安い順
func ShippingMethods() []ShippingMethod {
	out := make([]ShippingMethod, 0, len(shippingMethods))
	for _, m := range shippingMethods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// 無料配送と送料無料ラインを適用した送料
func ShippingCost(m ShippingMethod, net float64) float64 {
	if m.Price == 0 {
		return 0
	}
	if m.FreeThreshold != nil && net >= *m.FreeThreshold {
		return 0
	}
	return m.Price
}
