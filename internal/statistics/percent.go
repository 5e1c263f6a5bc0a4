package statistics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent is part/total*100 rounded half-up to one decimal, 0 for an empty
// total and clamped to [0,100].
func Percent(part, total int64) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	v, _ := decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(1).Float64()
	return v
}
