package pricing

import "github.com/shopspring/decimal"

// 表示用の丸め（計算途中では使わない）
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ユーロをセントに（決済プロバイダ用）
func MinorUnits(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}
