package otg

import "math"

// positionStep1 finds the time-optimal single-axis profile to a target
// position, velocity, and acceleration. It enumerates the seven-arc profile
// families in both directions: for each combination of reached limits
// (velocity cruise, first and second acceleration plateau) the remaining arc
// durations close against the kinematic boundary conditions, either in closed
// form or through a bracketed scalar root. Every candidate is validated by
// integration before it enters the feasible set; the set then yields the
// minimum-time profile and the blocked-duration intervals of the axis.
//
// The solver works in a single orientation; the opposite direction runs on
// mirrored inputs and mirrors accepted candidates back.
type positionStep1 struct {
	p0, v0, a0 float64
	pf, vf, af float64

	vMax, vMin float64
	aMax, aMin float64
	jMax       float64

	flip bool
}

func (s *positionStep1) mirrored() positionStep1 {
	return positionStep1{
		p0: -s.p0, v0: -s.v0, a0: -s.a0,
		pf: -s.pf, vf: -s.vf, af: -s.af,
		vMax: -s.vMin, vMin: -s.vMax,
		aMax: -s.aMin, aMin: -s.aMax,
		jMax: s.jMax,
		flip: !s.flip,
	}
}

// getProfile computes the minimum-time profile and the block of the axis.
// The profile passed in provides the brake fields that candidates inherit;
// on success it is overwritten with the minimum-time result.
func (s *positionStep1) getProfile(p *Profile, blk *block) bool {
	var ps profileSet
	s.collect(p, &ps)
	m := s.mirrored()
	m.collect(p, &ps)

	if !newBlock(&ps, blk) {
		return false
	}
	*p = blk.pMin
	return true
}

func (s *positionStep1) collect(base *Profile, ps *profileSet) {
	s.timeVel(base, ps)
	s.timeAcc0Acc1(base, ps)
	s.timeAcc1(base, ps)
	s.timeAcc0(base, ps)
	s.timeNone(base, ps)
}

func (s *positionStep1) newCandidate(base *Profile) Profile {
	c := *base
	c.setStart(s.p0, s.v0, s.a0)
	c.setJerkPattern(s.jMax)
	return c
}

func (s *positionStep1) finish(p *Profile, ps *profileSet) {
	if p.check(s.pf, s.vf, s.af, s.vMax, s.vMin, s.aMax, s.aMin, true) {
		ps.add(p, s.flip)
	}
}

// integrateArcs chains the arcs [from, to] of p starting at the given state.
func integrateArcs(p *Profile, from, to int, pos, vel, acc float64) (float64, float64, float64) {
	for i := from; i <= to; i++ {
		pos, vel, acc = integrate(p.t[i], pos, vel, acc, p.j[i])
	}
	return pos, vel, acc
}

// upRamp fills arcs 0..2 so the velocity reaches vPlat with zero
// acceleration, plateauing at aMax only when the triangular peak would
// exceed it. Returns false when vPlat is unreachable in this orientation.
func (s *positionStep1) upRamp(p *Profile, vPlat float64) bool {
	peakSq := s.a0*s.a0/2 + s.jMax*(vPlat-s.v0)
	if peakSq < 0 {
		return false
	}
	peak := math.Sqrt(peakSq)
	if peak > s.aMax {
		if s.aMax <= 0 {
			return false
		}
		p.t[0] = (s.aMax - s.a0) / s.jMax
		p.t[1] = (vPlat-s.v0)/s.aMax + (s.a0*s.a0/2-s.aMax*s.aMax)/(s.aMax*s.jMax)
		p.t[2] = s.aMax / s.jMax
	} else {
		p.t[0] = (peak - s.a0) / s.jMax
		p.t[1] = 0
		p.t[2] = peak / s.jMax
	}
	return true
}

// downRamp fills arcs 4..6, taking the velocity from vPlat to the target
// with the negative-side acceleration.
func (s *positionStep1) downRamp(p *Profile, vPlat float64) bool {
	peakSq := s.af*s.af/2 + s.jMax*(vPlat-s.vf)
	if peakSq < 0 {
		return false
	}
	peak := -math.Sqrt(peakSq)
	if peak < s.aMin {
		if s.aMin >= 0 {
			return false
		}
		p.t[4] = -s.aMin / s.jMax
		p.t[5] = (s.vf-vPlat)/s.aMin + (s.aMin*s.aMin-s.af*s.af/2)/(s.aMin*s.jMax)
		p.t[6] = (s.af - s.aMin) / s.jMax
	} else {
		p.t[4] = -peak / s.jMax
		p.t[5] = 0
		p.t[6] = (s.af - peak) / s.jMax
	}
	return true
}

// timeVel covers every family with a velocity cruise at vMax; whether the
// acceleration plateaus are reached falls out of the ramp construction. The
// cruise duration closes against the remaining distance.
func (s *positionStep1) timeVel(base *Profile, ps *profileSet) {
	if s.vMax <= 0 {
		return
	}
	p := s.newCandidate(base)
	if !s.upRamp(&p, s.vMax) || !s.downRamp(&p, s.vMax) {
		return
	}
	pu, _, _ := integrateArcs(&p, 0, 2, s.p0, s.v0, s.a0)
	dd, _, _ := integrateArcs(&p, 4, 6, 0, s.vMax, 0)
	p.t[3] = (s.pf - pu - dd) / s.vMax
	s.finish(&p, ps)
}

// timeAcc0Acc1 covers both acceleration plateaus with no cruise. With the
// second plateau duration eliminated through the velocity constraint, the
// final position is exactly quadratic in the first plateau duration.
func (s *positionStep1) timeAcc0Acc1(base *Profile, ps *profileSet) {
	if s.aMax <= 0 || s.aMin >= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base)
	p.t[0] = (s.aMax - s.a0) / j
	p.t[2] = s.aMax / j
	p.t[3] = 0
	p.t[4] = -s.aMin / j
	p.t[6] = (s.af - s.aMin) / j

	dva := (2*s.aMax*s.aMax - s.a0*s.a0) / (2 * j)
	dvd := (s.af*s.af - 2*s.aMin*s.aMin) / (2 * j)
	k := s.vf - s.v0 - dva - dvd
	t5of := func(t1 float64) float64 { return (k - s.aMax*t1) / s.aMin }

	dist := func(t1 float64) float64 {
		p.t[1] = t1
		p.t[5] = t5of(t1)
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end
	}
	d0, d1, d2 := dist(0), dist(1), dist(2)
	qa := (d2 - 2*d1 + d0) / 2
	qb := d1 - d0 - qa
	r1, r2, n := solveQuadratic(qa, qb, d0-s.pf)
	for i, r := range [2]float64{r1, r2} {
		if i >= n || r < -epsTime {
			continue
		}
		c := p
		c.t[1] = r
		c.t[5] = t5of(r)
		s.finish(&c, ps)
	}
}

// timeAcc1 covers the second acceleration plateau only: the upward ramp is
// triangular with an unknown peak, closed by a bracketed root on the
// remaining distance.
func (s *positionStep1) timeAcc1(base *Profile, ps *profileSet) {
	if s.aMin >= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base)
	p.t[1] = 0
	p.t[3] = 0
	p.t[4] = -s.aMin / j
	p.t[6] = (s.af - s.aMin) / j

	build := func(x float64) {
		p.t[0] = (x - s.a0) / j
		p.t[2] = x / j
		vPlat := s.v0 + (2*x*x-s.a0*s.a0)/(2*j)
		p.t[5] = (s.vf-vPlat)/s.aMin + (s.aMin*s.aMin-s.af*s.af/2)/(s.aMin*j)
	}
	residual := func(x float64) float64 {
		build(x)
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, x := range bracketRoots(residual, math.Max(s.a0, 0), s.aMax, buf[:0]) {
		build(x)
		c := p
		s.finish(&c, ps)
	}
}

// timeAcc0 covers the first acceleration plateau only: the downward ramp is
// triangular with an unknown peak magnitude x.
func (s *positionStep1) timeAcc0(base *Profile, ps *profileSet) {
	if s.aMax <= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base)
	p.t[0] = (s.aMax - s.a0) / j
	p.t[2] = s.aMax / j
	p.t[3] = 0
	p.t[5] = 0

	build := func(x float64) {
		p.t[4] = x / j
		p.t[6] = (s.af + x) / j
		vPlat := s.vf - (s.af*s.af-2*x*x)/(2*j)
		p.t[1] = (vPlat-s.v0)/s.aMax + (s.a0*s.a0/2-s.aMax*s.aMax)/(s.aMax*j)
	}
	residual := func(x float64) float64 {
		build(x)
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, x := range bracketRoots(residual, math.Max(-s.af, 0), -s.aMin, buf[:0]) {
		build(x)
		c := p
		s.finish(&c, ps)
	}
}

// timeNone covers profiles that touch no limit: both ramps triangular, the
// two peaks linked through the velocity constraint.
func (s *positionStep1) timeNone(base *Profile, ps *profileSet) {
	j := s.jMax
	p := s.newCandidate(base)
	p.t[1] = 0
	p.t[3] = 0
	p.t[5] = 0

	build := func(x float64) bool {
		downSq := x*x - s.a0*s.a0/2 + s.af*s.af/2 - j*(s.vf-s.v0)
		if downSq < 0 {
			return false
		}
		down := math.Sqrt(downSq)
		p.t[0] = (x - s.a0) / j
		p.t[2] = x / j
		p.t[4] = down / j
		p.t[6] = (s.af + down) / j
		return true
	}
	residual := func(x float64) float64 {
		if !build(x) {
			return math.NaN()
		}
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, x := range bracketRoots(residual, math.Max(s.a0, 0), s.aMax, buf[:0]) {
		if !build(x) {
			continue
		}
		c := p
		s.finish(&c, ps)
	}
}
