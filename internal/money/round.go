package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half up, so Round(-2.5) == -2 and Round(2.5) == 3.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// ClampPercent bounds x to [0, 100].
func ClampPercent(x float64) float64 {
	return Clamp(x, 0, 100)
}
