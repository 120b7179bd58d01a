package mathutil

import "math"

// KaiserWindow returns a symmetric Kaiser window of n points:
//
//	w[i] = I₀(β·sqrt(1 - r²)) / I₀(β), r = 2i/(n-1) - 1
func KaiserWindow(n int, beta float64) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	denom := BesselI0(beta)
	span := float64(n - 1)
	for i := range w {
		r := 2*float64(i)/span - 1
		w[i] = BesselI0(beta*math.Sqrt(max(0, 1-r*r))) / denom
	}
	return w
}

// FadeOut returns the falling half of a Kaiser window: n gains from 1 down
// towards 0, for tapering the end of a truncated impulse response.
func FadeOut(n int, beta float64) []float64 {
	if n <= 0 {
		return nil
	}
	full := KaiserWindow(halfWindowFactor*n+1, beta)
	return full[n : halfWindowFactor*n]
}
