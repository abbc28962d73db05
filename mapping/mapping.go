// Package mapping holds the small numeric helpers shared by the input and
// actuator paths.
package mapping

import "golang.org/x/exp/constraints"

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Constrain clamps value to [min, max].
func Constrain[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Range maps value from [fromMin, fromMax] onto [toMin, toMax].
// Integer types truncate toward zero; the multiplication happens before the
// division so integer precision is kept.
func Range[T Number](value, fromMin, fromMax, toMin, toMax T) T {
	return (value-fromMin)*(toMax-toMin)/(fromMax-fromMin) + toMin
}

// Deadband reports whether value lies strictly within band of center.
func Deadband[T constraints.Signed | constraints.Float](value, center, band T) bool {
	d := value - center
	if d < 0 {
		d = -d
	}
	return d < band
}
