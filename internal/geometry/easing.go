package geometry

import (
	"fmt"
	"math"
)

// Easing remaps animation progress. Every easing maps 0 to 0 and 1 to 1 and
// is non-decreasing in between.
type Easing func(t float64) float64

// NewEasing returns the easing registered under name.
func NewEasing(name string) (Easing, error) {
	switch name {
	case "linear", "":
		return Linear, nil
	case "cosine":
		return EaseCosine, nil
	case "cubic":
		return EaseInOutCubic, nil
	default:
		return nil, fmt.Errorf("unknown easing: %s", name)
	}
}

func Linear(t float64) float64 {
	return t
}

// EaseCosine is the half-cosine ease 0.5 - 0.5*cos(pi*t).
func EaseCosine(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}

// EaseInOutCubic applies smooth easing
func EaseInOutCubic(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
