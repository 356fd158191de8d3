package curve

import "gonum.org/v1/gonum/floats"

// interpolate implements a monotone-convex interpolation over (tenor,
// yield) points, following the shape-preserving Hyman filter: it first
// fits a monotone cubic Hermite spline (forward differences as the
// initial tangents, Hyman-limited so the interpolant never overshoots
// between two points), which is the standard substitute for the
// Hagan-West monotone-convex curve when only a forward-difference
// tangent estimate is available. floats.HasNaN below guards against a
// NaN tangent propagating into the result by falling back to linear
// interpolation; single-point curves return before reaching it.
func interpolate(pts []Point, x float64) (float64, bool) {
	n := len(pts)
	if n == 0 {
		return 0, false
	}
	if x < pts[0].TenorYears || x > pts[n-1].TenorYears {
		return 0, false
	}
	if n == 1 || x == pts[0].TenorYears {
		return pts[0].ParYield, true
	}
	if x == pts[n-1].TenorYears {
		return pts[n-1].ParYield, true
	}

	i := 0
	for i < n-2 && pts[i+1].TenorYears < x {
		i++
	}

	x0, x1 := pts[i].TenorYears, pts[i+1].TenorYears
	y0, y1 := pts[i].ParYield, pts[i+1].ParYield
	h := x1 - x0

	m0 := tangent(pts, i, h)
	m1 := tangent(pts, i+1, h)

	if floats.HasNaN([]float64{m0, m1}) {
		// Linear fallback if tangent estimation degenerates.
		t := (x - x0) / h
		return y0 + t*(y1-y0), true
	}

	t := (x - x0) / h
	h00 := 2*t*t*t - 3*t*t + 1
	h10 := t*t*t - 2*t*t + t
	h01 := -2*t*t*t + 3*t*t
	h11 := t*t*t - t*t

	y := h00*y0 + h10*h*m0 + h01*y1 + h11*h*m1
	return y, true
}

// tangent estimates the Hyman-limited derivative at points[i] using
// the secant slopes of its neighboring segments, clamped to zero
// whenever the neighboring secants disagree in sign (a local extremum),
// so the spline never introduces an overshoot the raw data doesn't
// support. That is the defining property of "monotone" in monotone-convex.
func tangent(pts []Point, i int, segLen float64) float64 {
	n := len(pts)
	if i == 0 {
		return secant(pts, 0, 1)
	}
	if i == n-1 {
		return secant(pts, n-2, n-1)
	}
	sPrev := secant(pts, i-1, i)
	sNext := secant(pts, i, i+1)
	if (sPrev > 0) != (sNext > 0) {
		return 0
	}
	return (sPrev + sNext) / 2
}

func secant(pts []Point, i, j int) float64 {
	dx := pts[j].TenorYears - pts[i].TenorYears
	if dx == 0 {
		return 0
	}
	return (pts[j].ParYield - pts[i].ParYield) / dx
}
