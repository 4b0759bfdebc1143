package sanitizer

import "math"

type Float interface {
	~float32 | ~float64
}

// RoundToDecimalPlaces rounds half away from zero. Negative places count as 0.
func RoundToDecimalPlaces[T Float](value T, places int) T {
	if places < 0 {
		places = 0
	}
	multiplier := math.Pow(10, float64(places))
	return T(math.Round(float64(value)*multiplier) / multiplier)
}

// Measurement rounds a body measurement to one decimal place.
func Measurement(v float64) float64 {
	return RoundToDecimalPlaces(v, 1)
}
