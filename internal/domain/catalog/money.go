package catalog

import "math"

// MinorUnits converts a major-unit price to cents, rounding half away from zero.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
