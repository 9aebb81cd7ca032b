package otg

import "math"

// velocityStep2 recomputes a velocity-interface profile whose total duration
// equals a prescribed time. The plateau acceleration is the free parameter;
// eliminating the plateau duration through the total-time constraint leaves a
// quadratic.
type velocityStep2 struct {
	tf float64

	p0, v0, a0 float64
	vf, af     float64

	aMax, aMin float64
	jMax       float64

	flip bool
}

func (s *velocityStep2) mirrored() velocityStep2 {
	return velocityStep2{
		tf: s.tf,
		p0: -s.p0, v0: -s.v0, a0: -s.a0,
		vf: -s.vf, af: -s.af,
		aMax: -s.aMin, aMin: -s.aMax,
		jMax: s.jMax,
		flip: !s.flip,
	}
}

func (s *velocityStep2) getProfile(p *Profile) bool {
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

func (s *velocityStep2) collect(base *Profile, best *step2Best) {
	j := s.jMax

	// ap^2 - ap*(j*tf + a0 + af) + (a0^2 + af^2)/2 + j*(vf - v0) = 0
	b := -(j*s.tf + s.a0 + s.af)
	c := (s.a0*s.a0+s.af*s.af)/2 + j*(s.vf-s.v0)
	r1, r2, n := solveQuadratic(1, b, c)
	for i, ap := range [2]float64{r1, r2} {
		if i >= n {
			break
		}
		p := *base
		p.setStart(s.p0, s.v0, s.a0)
		p.j = [7]float64{j, 0, -j, 0, 0, 0, 0}
		p.t[0] = (ap - s.a0) / j
		p.t[2] = (ap - s.af) / j
		p.t[1] = s.tf - p.t[0] - p.t[2]

		if !p.check(0, s.vf, s.af, math.Inf(1), math.Inf(-1), s.aMax, s.aMin, false) {
			continue
		}
		if math.Abs(p.tSum[6]-s.tf) > checkPrecision*math.Max(1, s.tf) {
			continue
		}
		best.consider(&p, s.flip)
	}
}
