package pricing

import "math"

// Round2 rounds a monetary amount to 2 decimal places, half-up at the cent.
// Rounding happens at every pricing checkpoint (discount calculation, coupon
// allocation), not only at display time, so stored figures always foot.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
