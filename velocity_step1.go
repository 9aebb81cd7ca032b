package otg

import "math"

// velocityStep1 finds the time-optimal single-axis profile to a target
// velocity and acceleration. Only the acceleration and jerk limits apply; the
// profile occupies the first three arcs (ramp, optional plateau, ramp) and
// the position follows freely.
type velocityStep1 struct {
	p0, v0, a0 float64
	vf, af     float64

	aMax, aMin float64
	jMax       float64

	flip bool
}

func (s *velocityStep1) mirrored() velocityStep1 {
	return velocityStep1{
		p0: -s.p0, v0: -s.v0, a0: -s.a0,
		vf: -s.vf, af: -s.af,
		aMax: -s.aMin, aMin: -s.aMax,
		jMax: s.jMax,
		flip: !s.flip,
	}
}

func (s *velocityStep1) getProfile(p *Profile, blk *block) bool {
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

func (s *velocityStep1) collect(base *Profile, ps *profileSet) {
	peakSq := s.a0*s.a0/2 + s.af*s.af/2 + s.jMax*(s.vf-s.v0)
	if peakSq < 0 {
		return
	}
	peak := math.Sqrt(peakSq)

	p := *base
	p.setStart(s.p0, s.v0, s.a0)
	p.j = [7]float64{s.jMax, 0, -s.jMax, 0, 0, 0, 0}

	if peak > s.aMax {
		if s.aMax <= 0 {
			return
		}
		p.t[0] = (s.aMax - s.a0) / s.jMax
		p.t[1] = (s.vf-s.v0)/s.aMax - (2*s.aMax*s.aMax-s.a0*s.a0-s.af*s.af)/(2*s.jMax*s.aMax)
		p.t[2] = (s.aMax - s.af) / s.jMax
	} else {
		p.t[0] = (peak - s.a0) / s.jMax
		p.t[1] = 0
		p.t[2] = (peak - s.af) / s.jMax
	}

	if p.check(0, s.vf, s.af, math.Inf(1), math.Inf(-1), s.aMax, s.aMin, false) {
		ps.add(&p, s.flip)
	}
}
