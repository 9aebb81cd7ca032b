package otg

import "math"

// pathTrajectory time-parameterizes a geometric path with a single scalar
// profile over arc length. Path mode is experimental: it is only accepted
// when the per-axis boundary conditions reduce to consistent scalar path
// velocities and accelerations (the tangential projection must agree across
// every axis), which input validation enforces before a trajectory is built.
type pathTrajectory struct {
	path     *Path
	duration float64

	independentMinDurations []float64

	mainProfile Profile

	// Final Cartesian state, held past the trajectory duration.
	pFinal, vFinal, aFinal []float64

	pdqScratch, pddqScratch []float64
}

func newPathTrajectory(dof int) *pathTrajectory {
	return &pathTrajectory{
		independentMinDurations: make([]float64, dof),
		pFinal:                  make([]float64, dof),
		vFinal:                  make([]float64, dof),
		aFinal:                  make([]float64, dof),
		pdqScratch:              make([]float64, dof),
		pddqScratch:             make([]float64, dof),
	}
}

// reduceBoundary projects the per-axis boundary state through the path
// tangent at arc length s, returning the scalar path velocity and
// acceleration. Every axis with a non-negligible tangent component must
// agree within epsPath.
func reduceBoundary(path *Path, s float64, vel, acc, pdq, pddq []float64) (ds, dds float64, ok bool) {
	path.Pdq(s, pdq)
	path.Pddq(s, pddq)

	ref := -1
	for d := range pdq {
		if math.Abs(pdq[d]) > epsPath {
			ref = d
			break
		}
	}
	if ref < 0 {
		return 0, 0, false
	}
	ds = vel[ref] / pdq[ref]
	dds = (acc[ref] - pddq[ref]*ds*ds) / pdq[ref]

	for d := range pdq {
		if d == ref {
			continue
		}
		if math.Abs(pdq[d]) <= epsPath {
			// Degenerate tangent component: the axis must not demand motion.
			if math.Abs(vel[d]) > epsPath || math.Abs(acc[d]) > epsPath {
				return 0, 0, false
			}
			continue
		}
		dsD := vel[d] / pdq[d]
		ddsD := (acc[d] - pddq[d]*ds*ds) / pdq[d]
		if math.Abs(ds-dsD) > epsPath || math.Abs(dds-ddsD) > epsPath {
			return 0, 0, false
		}
	}
	return ds, dds, true
}

// validatePathBoundary checks both path endpoints against the input's
// current and target states.
func validatePathBoundary(path *Path, inp *Input, pdq, pddq []float64) bool {
	if _, _, ok := reduceBoundary(path, 0, inp.CurrentVelocity, inp.CurrentAcceleration, pdq, pddq); !ok {
		return false
	}
	_, _, ok := reduceBoundary(path, path.length, inp.TargetVelocity, inp.TargetAcceleration, pdq, pddq)
	return ok
}

// calculate reduces the path to a scalar position problem over arc length:
// the boundary states project through the tangent, and the per-axis limits
// scale by the tangent components at the path start.
func (t *pathTrajectory) calculate(inp *Input) calculationResult {
	t.path = inp.Path

	ds0, dds0, ok := reduceBoundary(t.path, 0, inp.CurrentVelocity, inp.CurrentAcceleration, t.pdqScratch, t.pddqScratch)
	if !ok {
		return calcErrorExecutionTime
	}
	dsf, ddsf, ok := reduceBoundary(t.path, t.path.length, inp.TargetVelocity, inp.TargetAcceleration, t.pdqScratch, t.pddqScratch)
	if !ok {
		return calcErrorExecutionTime
	}

	t.path.Pdq(0, t.pdqScratch)
	vLim, aLim, jLim := math.Inf(1), math.Inf(1), math.Inf(1)
	for d := 0; d < t.path.dof; d++ {
		c := math.Abs(t.pdqScratch[d])
		if c <= epsPath {
			continue
		}
		vLim = math.Min(vLim, inp.MaxVelocity[d]/c)
		aLim = math.Min(aLim, inp.MaxAcceleration[d]/c)
		jLim = math.Min(jLim, inp.MaxJerk[d]/c)
	}

	step1 := positionStep1{
		p0: 0, v0: ds0, a0: dds0,
		pf: t.path.length, vf: dsf, af: ddsf,
		vMax: vLim, vMin: -vLim,
		aMax: aLim, aMin: -aLim,
		jMax: jLim,
	}
	t.mainProfile = Profile{}
	var blk block
	if !step1.getProfile(&t.mainProfile, &blk) {
		return calcErrorExecutionTime
	}
	t.duration = t.mainProfile.tSum[6]
	for d := range t.independentMinDurations {
		t.independentMinDurations[d] = t.duration
	}

	t.path.Q(t.path.length, t.pFinal)
	t.path.Dq(t.path.length, dsf, t.vFinal)
	t.path.Ddq(t.path.length, dsf, ddsf, t.pdqScratch, t.aFinal)

	return calcWorking
}

// atTime maps the scalar profile state back to configuration space.
func (t *pathTrajectory) atTime(time float64, pos, vel, acc []float64) {
	if time > t.duration {
		for d := range pos {
			pos[d], vel[d], acc[d] = integrate(time-t.duration, t.pFinal[d], t.vFinal[d], t.aFinal[d], 0)
		}
		return
	}

	s, ds, dds := t.mainProfile.StateAtTime(time)
	if s < 0 {
		s = 0
	} else if s > t.path.length {
		s = t.path.length
	}
	t.path.Q(s, pos)
	// vel serves as the tangent buffer for Ddq before it is filled, so
	// sampling writes no shared state.
	t.path.Ddq(s, ds, dds, vel, acc)
	t.path.Dq(s, ds, vel)
}
