package otg

import "math"

// The brake pre-trajectory returns a start state that violates (or is about
// to violate) the kinematic limits to the feasible envelope, using at most
// two constant-jerk arcs. It always succeeds by construction; unused arcs
// have zero duration. A small epsilon keeps the post-brake state strictly
// inside the envelope so the main solvers never see a boundary violation.

// brakePosition computes the brake arcs for the position interface, where
// both velocity and acceleration bounds apply.
func brakePosition(v0, a0, vMax, vMin, aMax, aMin, jMax float64) (tb, jb [2]float64) {
	switch {
	case a0 > aMax:
		return accelerationBrake(v0, a0, vMax, vMin, aMax, aMin, jMax)
	case a0 < aMin:
		tb, jb = accelerationBrake(-v0, -a0, -vMin, -vMax, -aMin, -aMax, jMax)
		jb[0], jb[1] = -jb[0], -jb[1]
		return tb, jb
	case v0 > vMax || (a0 > 0 && v0+a0*a0/(2*jMax) > vMax):
		return velocityBrake(v0, a0, vMax, vMin, aMin, jMax)
	case v0 < vMin || (a0 < 0 && v0-a0*a0/(2*jMax) < vMin):
		tb, jb = velocityBrake(-v0, -a0, -vMin, -vMax, -aMax, jMax)
		jb[0], jb[1] = -jb[0], -jb[1]
		return tb, jb
	}
	return tb, jb
}

// brakeVelocity computes the brake arcs for the velocity interface, where
// only the acceleration bounds apply.
func brakeVelocity(a0, aMax, aMin, jMax float64) (tb, jb [2]float64) {
	if a0 > aMax {
		jb[0] = -jMax
		tb[0] = (a0-aMax)/jMax + epsBrake
	} else if a0 < aMin {
		jb[0] = jMax
		tb[0] = (aMin-a0)/jMax + epsBrake
	}
	return tb, jb
}

// accelerationBrake handles a0 > aMax: ramp the acceleration back to the
// bound, then keep braking if the velocity is still headed past vMax.
func accelerationBrake(v0, a0, vMax, vMin, aMax, aMin, jMax float64) (tb, jb [2]float64) {
	jb[0] = -jMax
	tb[0] = (a0-aMax)/jMax + epsBrake

	_, v1, a1 := integrate(tb[0], 0, v0, a0, jb[0])

	// With the acceleration at its bound and still positive, the velocity
	// keeps growing; if it would coast past vMax even when ramping the
	// acceleration straight to zero, continue the downward jerk.
	if v1+a1*a1/(2*jMax) > vMax {
		jb[1] = -jMax
		tb[1] = clampBrakeArc(v1, a1, vMax, vMin, aMin, jMax)
	}
	return tb, jb
}

// velocityBrake handles an in-bounds acceleration with the velocity beyond
// (or headed beyond) vMax: jerk downward until the velocity recovers, the
// acceleration bound is hit, or further braking would undershoot vMin.
func velocityBrake(v0, a0, vMax, vMin, aMin, jMax float64) (tb, jb [2]float64) {
	jb[0] = -jMax
	tb[0] = clampBrakeArc(v0, a0, vMax, vMin, aMin, jMax)

	var v1, a1 float64
	_, v1, a1 = integrate(tb[0], 0, v0, a0, jb[0])

	// The first arc stopped on the acceleration bound with the velocity
	// still high: hold the bound until the velocity recovers.
	if v1 > vMax && a1 < 0 {
		jb[1] = 0
		tToVMax := (v1 - vMax) / -a1
		tToVMinMargin := (v1 - vMin - a1*a1/(2*jMax)) / -a1
		tb[1] = math.Max(math.Min(tToVMax+epsBrake, tToVMinMargin-epsBrake), 0)
	}
	return tb, jb
}

// clampBrakeArc returns the duration of a downward-jerk arc from (v0, a0),
// stopping at the first of: the velocity reaching vMax, the acceleration
// reaching aMin, or the point past which ramping the acceleration back to
// zero would leave the velocity below vMin.
func clampBrakeArc(v0, a0, vMax, vMin, aMin, jMax float64) float64 {
	tToAMin := (a0 - aMin) / jMax

	tToVMax := math.Inf(1)
	if disc := a0*a0 + 2*jMax*(v0-vMax); disc >= 0 {
		tToVMax = (a0 + math.Sqrt(disc)) / jMax
	}

	// Stop margin against vMin: braking to time t and then ramping the
	// acceleration back to zero loses a(t)^2/(2*jMax) of velocity; the
	// crossing below solves v(t) - a(t)^2/(2*jMax) = vMin.
	tToVMinMargin := math.Inf(1)
	if disc := a0*a0/2 + jMax*(v0-vMin); disc >= 0 {
		if t := (a0 + math.Sqrt(disc)) / jMax; t > 0 {
			tToVMinMargin = t
		}
	}

	return math.Max(math.Min(math.Min(tToVMax+epsBrake, tToAMin-epsBrake), tToVMinMargin-epsBrake), 0)
}

// applyBrake attaches the computed brake arcs to a profile and integrates
// them, returning the post-brake state that seeds the main solver.
func applyBrake(p *Profile, tb, jb [2]float64, p0, v0, a0 float64) (float64, float64, float64) {
	p.tBrakes = tb
	p.jBrakes = jb
	p.tBrake = tb[0] + tb[1]
	p.brake = p.tBrake > 0

	for i := 0; i < 2 && p.tBrakes[i] > 0; i++ {
		p.pBrakes[i] = p0
		p.vBrakes[i] = v0
		p.aBrakes[i] = a0
		p0, v0, a0 = integrate(p.tBrakes[i], p0, v0, a0, p.jBrakes[i])
	}
	return p0, v0, a0
}
