package otg

import "math"

// solveQuadratic returns the real roots of a*x^2 + b*x + c, using the
// numerically stable form of the quadratic formula. n reports how many of the
// returned values are valid; with two roots, x1 <= x2.
func solveQuadratic(a, b, c float64) (x1, x2 float64, n int) {
	if a == 0 {
		if b == 0 {
			return 0, 0, 0
		}
		return -c / b, 0, 1
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, 0
	}
	q := -(b + math.Copysign(math.Sqrt(disc), b)) / 2
	x1 = q / a
	if q != 0 {
		x2 = c / q
	} else {
		x2 = 0
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if disc == 0 {
		return x1, x1, 1
	}
	return x1, x2, 2
}

const (
	rootScanSamples  = 32
	rootBisectRounds = 64
)

// bracketRoots samples f at rootScanSamples points over [lo, hi] and refines
// every sign change by bisection. NaN samples are skipped, so f may be
// undefined on part of the interval. Found roots are appended to out. The
// iteration count is fixed, keeping the worst-case runtime bounded.
func bracketRoots(f func(float64) float64, lo, hi float64, out []float64) []float64 {
	if !(hi > lo) {
		return out
	}
	step := (hi - lo) / float64(rootScanSamples)
	xPrev := lo
	yPrev := f(lo)
	for i := 1; i <= rootScanSamples; i++ {
		x := lo + float64(i)*step
		if i == rootScanSamples {
			x = hi
		}
		y := f(x)
		if math.IsNaN(y) {
			xPrev, yPrev = x, y
			continue
		}
		if math.IsNaN(yPrev) {
			xPrev, yPrev = x, y
			continue
		}
		if yPrev == 0 {
			out = append(out, xPrev)
		} else if yPrev*y < 0 {
			out = append(out, bisect(f, xPrev, x, yPrev))
		}
		xPrev, yPrev = x, y
	}
	if yPrev == 0 && !math.IsNaN(yPrev) {
		out = append(out, xPrev)
	}
	return out
}

// bisect refines a bracketed sign change of f to floating-point resolution.
func bisect(f func(float64) float64, lo, hi, yLo float64) float64 {
	for i := 0; i < rootBisectRounds; i++ {
		mid := (lo + hi) / 2
		if mid == lo || mid == hi {
			break
		}
		y := f(mid)
		if y == 0 {
			return mid
		}
		if (y < 0) == (yLo < 0) {
			lo, yLo = mid, y
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
