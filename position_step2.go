package otg

import "math"

// positionStep2 recomputes a single-axis profile whose total duration equals
// a prescribed time exactly, for synchronizing a non-limiting axis to the
// common trajectory duration. The extra time constraint fixes one parameter
// that step 1 left free, so the families here carry a free cruise velocity or
// a free (scaled-down) jerk. Among the feasible candidates the one with the
// smallest peak jerk wins.
type positionStep2 struct {
	tf float64

	p0, v0, a0 float64
	pf, vf, af float64

	vMax, vMin float64
	aMax, aMin float64
	jMax       float64

	flip bool
}

// step2Best keeps the feasible candidate with the smallest peak jerk.
type step2Best struct {
	p     Profile
	found bool
}

func (b *step2Best) consider(c *Profile, mirrored bool) {
	cp := *c
	if mirrored {
		cp.mirror()
	}
	if !b.found || cp.peakJerk() < b.p.peakJerk() {
		b.p = cp
		b.found = true
	}
}

func (s *positionStep2) mirrored() positionStep2 {
	return positionStep2{
		tf: s.tf,
		p0: -s.p0, v0: -s.v0, a0: -s.a0,
		pf: -s.pf, vf: -s.vf, af: -s.af,
		vMax: -s.vMin, vMin: -s.vMax,
		aMax: -s.aMin, aMin: -s.aMax,
		jMax: s.jMax,
		flip: !s.flip,
	}
}

// getProfile overwrites p with a profile of duration tf, keeping its brake
// fields. Returns false when no family produces a feasible candidate.
func (s *positionStep2) getProfile(p *Profile) bool {
	var best step2Best
	s.collect(p, &best)
	m := s.mirrored()
	m.collect(p, &best)

	if !best.found {
		return false
	}
	*p = best.p
	return true
}

func (s *positionStep2) collect(base *Profile, best *step2Best) {
	s.timePlateausCruise(base, best)
	s.timeTriangularCruise(base, best)
	s.timeUpPlateauCruise(base, best)
	s.timeDownPlateauCruise(base, best)
	s.timePlateausScaledJerk(base, best)
	s.timeTriangularScaledJerk(base, best)
}

func (s *positionStep2) newCandidate(base *Profile, jf float64) Profile {
	c := *base
	c.setStart(s.p0, s.v0, s.a0)
	c.setJerkPattern(jf)
	return c
}

func (s *positionStep2) finish(p *Profile, best *step2Best) {
	if !p.check(s.pf, s.vf, s.af, s.vMax, s.vMin, s.aMax, s.aMin, true) {
		return
	}
	if math.Abs(p.tSum[6]-s.tf) > checkPrecision*math.Max(1, s.tf) {
		return
	}
	best.consider(p, s.flip)
}

// timePlateausCruise reaches both acceleration plateaus and cruises at a
// free velocity. With the second plateau and the cruise durations eliminated
// through the velocity and total-time constraints, the final position is
// exactly quadratic in the first plateau duration.
func (s *positionStep2) timePlateausCruise(base *Profile, best *step2Best) {
	if s.aMax <= 0 || s.aMin >= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base, j)
	p.t[0] = (s.aMax - s.a0) / j
	p.t[2] = s.aMax / j
	p.t[4] = -s.aMin / j
	p.t[6] = (s.af - s.aMin) / j

	tp := s.tf - (p.t[0] + p.t[2] + p.t[4] + p.t[6])
	if tp < -epsTime {
		return
	}
	dva := (2*s.aMax*s.aMax - s.a0*s.a0) / (2 * j)
	dvd := (s.af*s.af - 2*s.aMin*s.aMin) / (2 * j)
	k := s.vf - s.v0 - dva - dvd
	t5of := func(t1 float64) float64 { return (k - s.aMax*t1) / s.aMin }

	dist := func(t1 float64) float64 {
		p.t[1] = t1
		p.t[5] = t5of(t1)
		p.t[3] = tp - t1 - p.t[5]
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
		c.t[3] = tp - r - c.t[5]
		s.finish(&c, best)
	}
}

// timeTriangularCruise keeps both ramps triangular and closes the cruise
// duration against the total time; the peak is a bracketed root on the
// remaining distance.
func (s *positionStep2) timeTriangularCruise(base *Profile, best *step2Best) {
	j := s.jMax
	p := s.newCandidate(base, j)
	p.t[1] = 0
	p.t[5] = 0

	build := func(x float64) bool {
		downSq := s.af*s.af/2 + j*(s.v0+(2*x*x-s.a0*s.a0)/(2*j)-s.vf)
		if downSq < 0 {
			return false
		}
		down := math.Sqrt(downSq)
		p.t[0] = (x - s.a0) / j
		p.t[2] = x / j
		p.t[4] = down / j
		p.t[6] = (s.af + down) / j
		p.t[3] = s.tf - (p.t[0] + p.t[2] + p.t[4] + p.t[6])
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
		s.finish(&c, best)
	}
}

// timeUpPlateauCruise plateaus on the way up only; the first plateau
// duration is the free parameter.
func (s *positionStep2) timeUpPlateauCruise(base *Profile, best *step2Best) {
	if s.aMax <= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base, j)
	p.t[0] = (s.aMax - s.a0) / j
	p.t[2] = s.aMax / j
	p.t[5] = 0

	dva := (2*s.aMax*s.aMax - s.a0*s.a0) / (2 * j)
	build := func(t1 float64) bool {
		vPlat := s.v0 + dva + s.aMax*t1
		downSq := s.af*s.af/2 + j*(vPlat-s.vf)
		if downSq < 0 {
			return false
		}
		down := math.Sqrt(downSq)
		p.t[1] = t1
		p.t[4] = down / j
		p.t[6] = (s.af + down) / j
		p.t[3] = s.tf - (p.t[0] + t1 + p.t[2] + p.t[4] + p.t[6])
		return true
	}
	residual := func(t1 float64) float64 {
		if !build(t1) {
			return math.NaN()
		}
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, t1 := range bracketRoots(residual, 0, s.tf, buf[:0]) {
		if !build(t1) {
			continue
		}
		c := p
		s.finish(&c, best)
	}
}

// timeDownPlateauCruise plateaus on the way down only; the upward peak is
// the free parameter.
func (s *positionStep2) timeDownPlateauCruise(base *Profile, best *step2Best) {
	if s.aMin >= 0 {
		return
	}
	j := s.jMax
	p := s.newCandidate(base, j)
	p.t[1] = 0
	p.t[4] = -s.aMin / j
	p.t[6] = (s.af - s.aMin) / j

	build := func(x float64) {
		p.t[0] = (x - s.a0) / j
		p.t[2] = x / j
		vPlat := s.v0 + (2*x*x-s.a0*s.a0)/(2*j)
		p.t[5] = (s.vf-vPlat)/s.aMin + (s.aMin*s.aMin-s.af*s.af/2)/(s.aMin*j)
		p.t[3] = s.tf - (p.t[0] + p.t[2] + p.t[4] + p.t[5] + p.t[6])
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
		s.finish(&c, best)
	}
}

// timePlateausScaledJerk reaches both acceleration plateaus with no cruise;
// the jerk scales down as the free parameter. The plateau durations follow
// linearly from the velocity and total-time constraints.
func (s *positionStep2) timePlateausScaledJerk(base *Profile, best *step2Best) {
	if s.aMax <= 0 || s.aMin >= 0 {
		return
	}
	p := *base

	build := func(jf float64) {
		p = s.newCandidate(base, jf)
		p.t[0] = (s.aMax - s.a0) / jf
		p.t[2] = s.aMax / jf
		p.t[3] = 0
		p.t[4] = -s.aMin / jf
		p.t[6] = (s.af - s.aMin) / jf

		dva := (2*s.aMax*s.aMax - s.a0*s.a0) / (2 * jf)
		dvd := (s.af*s.af - 2*s.aMin*s.aMin) / (2 * jf)
		k := s.vf - s.v0 - dva - dvd
		tp := s.tf - (p.t[0] + p.t[2] + p.t[4] + p.t[6])
		p.t[1] = (k - s.aMin*tp) / (s.aMax - s.aMin)
		p.t[5] = tp - p.t[1]
	}
	residual := func(jf float64) float64 {
		build(jf)
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, jf := range bracketRoots(residual, s.jMax*1e-4, s.jMax, buf[:0]) {
		build(jf)
		c := p
		s.finish(&c, best)
	}
}

// timeTriangularScaledJerk touches no limit at all: both ramps triangular
// with the jerk scaled down. For a given jerk the upward peak follows from
// the total time by monotone bisection; the jerk is then the bracketed root
// of the remaining distance.
func (s *positionStep2) timeTriangularScaledJerk(base *Profile, best *step2Best) {
	p := *base

	build := func(jf, x float64) bool {
		downSq := x*x - s.a0*s.a0/2 + s.af*s.af/2 - jf*(s.vf-s.v0)
		if downSq < 0 {
			return false
		}
		down := math.Sqrt(downSq)
		p = s.newCandidate(base, jf)
		p.t[0] = (x - s.a0) / jf
		p.t[1] = 0
		p.t[2] = x / jf
		p.t[3] = 0
		p.t[4] = down / jf
		p.t[5] = 0
		p.t[6] = (s.af + down) / jf
		return true
	}
	total := func(jf, x float64) float64 {
		if !build(jf, x) {
			return math.NaN()
		}
		return p.t[0] + p.t[2] + p.t[4] + p.t[6]
	}

	// peakFor inverts the monotone total duration for a given jerk.
	peakFor := func(jf float64) (float64, bool) {
		lo, hi := math.Max(s.a0, 0), s.aMax
		tLo, tHi := total(jf, lo), total(jf, hi)
		if math.IsNaN(tLo) || math.IsNaN(tHi) || s.tf < tLo || s.tf > tHi {
			return 0, false
		}
		for i := 0; i < rootBisectRounds; i++ {
			mid := (lo + hi) / 2
			tMid := total(jf, mid)
			if math.IsNaN(tMid) || tMid < s.tf {
				lo = mid
			} else {
				hi = mid
			}
		}
		return (lo + hi) / 2, true
	}
	residual := func(jf float64) float64 {
		x, ok := peakFor(jf)
		if !ok || !build(jf, x) {
			return math.NaN()
		}
		end, _, _ := integrateArcs(&p, 0, 6, s.p0, s.v0, s.a0)
		return end - s.pf
	}

	var buf [rootScanSamples]float64
	for _, jf := range bracketRoots(residual, s.jMax*1e-4, s.jMax, buf[:0]) {
		x, ok := peakFor(jf)
		if !ok || !build(jf, x) {
			continue
		}
		c := p
		s.finish(&c, best)
	}
}
