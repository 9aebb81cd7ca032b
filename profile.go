// Package otg generates time-optimal, jerk-limited trajectories for a set of
// independent degrees of freedom, online. Given the current kinematic state
// (position, velocity, acceleration) of every axis, a target state, and
// per-axis limits on velocity, acceleration, and jerk, it computes a
// time-synchronized trajectory that can be sampled at any instant. It is meant
// to be driven cyclically from a real-time control loop, typically with a
// 1 ms period; see Generator.
package otg

import (
	"math"
	"sort"
)

// Numerical tolerances shared by the solvers. These govern internal equality
// tests only and are deliberately not configurable.
const (
	epsSync   = 1e-12 // step-2 short-circuit duration comparisons
	epsPath   = 1e-10 // path boundary reduction consistency
	epsLimits = 1e-9  // kinematic limit checks
	epsBrake  = 2.2e-14
	epsTime   = 1e-12 // clamp for numerically negative arc durations

	// checkPrecision is the accepted boundary mismatch when validating a
	// candidate profile against its target state.
	checkPrecision = 1e-8

	// Candidates longer than this are numerically degenerate and rejected
	// outright; the configurable trajectory ceiling in the driver is much
	// smaller.
	maxProfileDuration = 1e12
)

// integrate advances a constant-jerk arc by dt and returns the new position,
// velocity, and acceleration.
func integrate(dt, p, v, a, j float64) (float64, float64, float64) {
	return p + dt*(v+dt*(a/2+dt*j/6)),
		v + dt*(a+dt*j/2),
		a + dt*j
}

// PositionExtrema describes the extreme positions reached by a single-axis
// profile and the times at which they occur.
type PositionExtrema struct {
	Min, Max   float64
	TMin, TMax float64
}

// Profile is the jerk-limited trajectory of a single degree of freedom: seven
// consecutive constant-jerk arcs, optionally preceded by a brake ramp of up
// to two arcs that returns an out-of-envelope start state to the feasible
// region. The state arrays hold the kinematic state at the start of each arc;
// pf, vf, af is the state after the last arc.
type Profile struct {
	t    [7]float64
	tSum [7]float64
	j    [7]float64
	p    [7]float64
	v    [7]float64
	a    [7]float64

	pf, vf, af float64

	brake   bool
	tBrake  float64
	tBrakes [2]float64
	jBrakes [2]float64
	pBrakes [2]float64
	vBrakes [2]float64
	aBrakes [2]float64
}

// Duration returns the total duration of the seven arcs, excluding any brake
// pre-trajectory.
func (p *Profile) Duration() float64 {
	return p.tSum[6]
}

func (p *Profile) setStart(p0, v0, a0 float64) {
	p.p[0], p.v[0], p.a[0] = p0, v0, a0
}

// setJerkPattern installs the canonical sign pattern jf, 0, -jf, 0, -jf, 0, jf.
func (p *Profile) setJerkPattern(jf float64) {
	p.j = [7]float64{jf, 0, -jf, 0, -jf, 0, jf}
}

// StateAtTime samples the profile at t relative to the start of the first
// arc. Past the final arc the state is held under constant acceleration.
// Negative t is not meaningful.
func (p *Profile) StateAtTime(t float64) (pos, vel, acc float64) {
	if t >= p.tSum[6] {
		return integrate(t-p.tSum[6], p.pf, p.vf, p.af, 0)
	}
	i := sort.SearchFloat64s(p.tSum[:], t)
	if i >= 7 {
		i = 6
	}
	local := t
	if i > 0 {
		local = t - p.tSum[i-1]
	}
	return integrate(local, p.p[i], p.v[i], p.a[i], p.j[i])
}

// check integrates a candidate whose jerks, durations, and start state are
// set, and accepts it when all durations are non-negative, the final state
// matches the target, the acceleration stays within bounds throughout, and
// the velocity stays within bounds from the fourth arc onward. Durations that are negative by no more than epsTime are clamped
// to zero. When position is false only the velocity and acceleration targets
// are verified (velocity-interface profiles).
func (p *Profile) check(pf, vf, af, vUp, vDown, aUp, aDown float64, position bool) bool {
	total := 0.0
	for i := 0; i < 7; i++ {
		if p.t[i] < 0 {
			if p.t[i] < -epsTime {
				return false
			}
			p.t[i] = 0
		}
		total += p.t[i]
		p.tSum[i] = total
	}
	if total > maxProfileDuration || math.IsNaN(total) {
		return false
	}

	for i := 0; i < 6; i++ {
		p.p[i+1], p.v[i+1], p.a[i+1] = integrate(p.t[i], p.p[i], p.v[i], p.a[i], p.j[i])
	}
	p.pf, p.vf, p.af = integrate(p.t[6], p.p[6], p.v[6], p.a[6], p.j[6])

	if position && math.Abs(p.pf-pf) > checkPrecision*math.Max(1, math.Abs(pf)) {
		return false
	}
	if math.Abs(p.vf-vf) > checkPrecision*math.Max(1, math.Abs(vf)) {
		return false
	}
	if math.Abs(p.af-af) > checkPrecision*math.Max(1, math.Abs(af)) {
		return false
	}

	for i := 0; i < 7; i++ {
		if p.a[i] > aUp+epsLimits || p.a[i] < aDown-epsLimits {
			return false
		}
		// The velocity limit may be broken over the first three arcs when a
		// braked start state is still recovering; from the cruise arc onward
		// it must hold, including the extremum inside an arc, which sits
		// where the acceleration crosses zero.
		if i < 3 {
			continue
		}
		if p.v[i] > vUp+epsLimits || p.v[i] < vDown-epsLimits {
			return false
		}
		if p.j[i] != 0 {
			if tExt := -p.a[i] / p.j[i]; tExt > 0 && tExt < p.t[i] {
				vExt := p.v[i] - p.a[i]*p.a[i]/(2*p.j[i])
				if vExt > vUp+epsLimits || vExt < vDown-epsLimits {
					return false
				}
			}
		}
	}
	if p.af > aUp+epsLimits || p.af < aDown-epsLimits {
		return false
	}
	if p.vf > vUp+epsLimits || p.vf < vDown-epsLimits {
		return false
	}
	return true
}

// mirror reflects the profile through the origin. The step solvers work in a
// single orientation and mirror the inputs for the opposite direction; a
// candidate accepted on mirrored inputs is mirrored back before use.
func (p *Profile) mirror() {
	for i := 0; i < 7; i++ {
		p.j[i] = -p.j[i]
		p.p[i] = -p.p[i]
		p.v[i] = -p.v[i]
		p.a[i] = -p.a[i]
	}
	p.pf, p.vf, p.af = -p.pf, -p.vf, -p.af
}

// peakJerk returns the largest jerk magnitude used by any arc.
func (p *Profile) peakJerk() float64 {
	peak := 0.0
	for i := 0; i < 7; i++ {
		if j := math.Abs(p.j[i]); j > peak {
			peak = j
		}
	}
	return peak
}

// PositionExtrema returns the minimum and maximum position over the seven
// arcs together with the times at which they occur. Extrema can sit at arc
// boundaries or at interior points where the velocity crosses zero.
func (p *Profile) PositionExtrema() PositionExtrema {
	ext := PositionExtrema{Min: math.Inf(1), Max: math.Inf(-1)}
	consider := func(t, pos float64) {
		if pos < ext.Min {
			ext.Min = pos
			ext.TMin = t
		}
		if pos > ext.Max {
			ext.Max = pos
			ext.TMax = t
		}
	}

	tStart := 0.0
	for i := 0; i < 7; i++ {
		consider(tStart, p.p[i])

		// Interior stationary points: roots of v + a*tau + j*tau^2/2 inside
		// the arc.
		if p.j[i] != 0 {
			r1, r2, n := solveQuadratic(p.j[i]/2, p.a[i], p.v[i])
			for k, r := range [2]float64{r1, r2} {
				if k >= n {
					break
				}
				if r > 0 && r < p.t[i] {
					pos, _, _ := integrate(r, p.p[i], p.v[i], p.a[i], p.j[i])
					consider(tStart+r, pos)
				}
			}
		} else if p.a[i] != 0 {
			if r := -p.v[i] / p.a[i]; r > 0 && r < p.t[i] {
				pos, _, _ := integrate(r, p.p[i], p.v[i], p.a[i], 0)
				consider(tStart+r, pos)
			}
		}
		tStart += p.t[i]
	}
	consider(p.tSum[6], p.pf)
	return ext
}
