package utils

// Clamp returns min if value is lesser than min, max if value is greater them max, or the value
// if it is in between min and max.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
