package otg

import "math"

// calculationResult is the internal outcome of a trajectory calculation,
// mapped onto the public Result codes by the driver.
type calculationResult int

const (
	calcWorking calculationResult = iota
	calcErrorExecutionTime
	calcErrorSynchronization
)

// profileTrajectory is the waypoint-mode trajectory: one jerk-limited profile
// per degree of freedom, time-synchronized to a common duration. It owns its
// per-axis scratch so that cyclic recalculation does not allocate.
type profileTrajectory struct {
	duration                float64
	independentMinDurations []float64

	profiles []Profile

	blocks        []block
	p0s, v0s, a0s []float64
	candidates    []float64
}

func newProfileTrajectory(dof int) *profileTrajectory {
	return &profileTrajectory{
		independentMinDurations: make([]float64, dof),
		profiles:                make([]Profile, dof),
		blocks:                  make([]block, dof),
		p0s:                     make([]float64, dof),
		v0s:                     make([]float64, dof),
		a0s:                     make([]float64, dof),
		candidates:              make([]float64, 0, 3*dof+1),
	}
}

// calculate runs the full profile pipeline: per-axis brake and step-1,
// cross-axis synchronization, and the step-2 re-solve for every non-limiting
// axis that has to stretch to the common duration.
func (t *profileTrajectory) calculate(inp *Input, deltaTime float64) calculationResult {
	for dof := range t.profiles {
		p := &t.profiles[dof]
		*p = Profile{}

		if !inp.Enabled[dof] {
			p.pf = inp.CurrentPosition[dof]
			p.vf = inp.CurrentVelocity[dof]
			p.af = inp.CurrentAcceleration[dof]
			t.blocks[dof] = block{}
			t.independentMinDurations[dof] = 0
			continue
		}

		minVel := -inp.MaxVelocity[dof]
		if inp.MinVelocity != nil {
			minVel = inp.MinVelocity[dof]
		}
		minAcc := -inp.MaxAcceleration[dof]
		if inp.MinAcceleration != nil {
			minAcc = inp.MinAcceleration[dof]
		}

		var tb, jb [2]float64
		switch inp.ControlInterface {
		case PositionControl:
			tb, jb = brakePosition(inp.CurrentVelocity[dof], inp.CurrentAcceleration[dof],
				inp.MaxVelocity[dof], minVel, inp.MaxAcceleration[dof], minAcc, inp.MaxJerk[dof])
		case VelocityControl:
			tb, jb = brakeVelocity(inp.CurrentAcceleration[dof], inp.MaxAcceleration[dof], minAcc, inp.MaxJerk[dof])
		}
		p0, v0, a0 := applyBrake(p, tb, jb,
			inp.CurrentPosition[dof], inp.CurrentVelocity[dof], inp.CurrentAcceleration[dof])
		t.p0s[dof], t.v0s[dof], t.a0s[dof] = p0, v0, a0

		var found bool
		switch inp.ControlInterface {
		case PositionControl:
			step1 := positionStep1{
				p0: p0, v0: v0, a0: a0,
				pf: inp.TargetPosition[dof], vf: inp.TargetVelocity[dof], af: inp.TargetAcceleration[dof],
				vMax: inp.MaxVelocity[dof], vMin: minVel,
				aMax: inp.MaxAcceleration[dof], aMin: minAcc,
				jMax: inp.MaxJerk[dof],
			}
			found = step1.getProfile(p, &t.blocks[dof])
		case VelocityControl:
			step1 := velocityStep1{
				p0: p0, v0: v0, a0: a0,
				vf: inp.TargetVelocity[dof], af: inp.TargetAcceleration[dof],
				aMax: inp.MaxAcceleration[dof], aMin: minAcc,
				jMax: inp.MaxJerk[dof],
			}
			found = step1.getProfile(p, &t.blocks[dof])
		}
		if !found {
			return calcErrorExecutionTime
		}
		// Block durations count from the start of the brake prefix, so the
		// synchronized duration is the full time on the trajectory.
		blk := &t.blocks[dof]
		blk.tMin += p.tBrake
		blk.a.left += p.tBrake
		blk.a.right += p.tBrake
		blk.b.left += p.tBrake
		blk.b.right += p.tBrake
		t.independentMinDurations[dof] = blk.tMin
	}

	minDuration := 0.0
	hasMinDuration := inp.MinimumDuration != nil
	if hasMinDuration {
		minDuration = *inp.MinimumDuration
	}
	discrete := inp.DurationDiscretization == DiscretizationDiscrete
	tSync, limiting, ok := synchronizeBlocks(t.blocks, inp.Enabled,
		minDuration, hasMinDuration, discrete, deltaTime, t.profiles, t.candidates)
	if !ok {
		return calcErrorSynchronization
	}
	t.duration = tSync

	if t.duration > 0 && inp.Synchronization != SynchronizationNone {
		for dof := range t.profiles {
			if !inp.Enabled[dof] || dof == limiting {
				continue
			}
			p := &t.profiles[dof]
			blk := &t.blocks[dof]
			tProfile := t.duration - p.tBrake

			// An axis with a resting target does not have to stretch under
			// TimeIfNecessary; it simply arrives early and holds.
			if inp.Synchronization == SynchronizationTimeIfNecessary &&
				math.Abs(inp.TargetVelocity[dof]) < epsSync && math.Abs(inp.TargetAcceleration[dof]) < epsSync {
				*p = blk.pMin
				continue
			}

			// The synchronized duration frequently lands on a profile already
			// computed in step 1.
			if math.Abs(t.duration-blk.tMin) < epsSync {
				*p = blk.pMin
				continue
			}
			if blk.hasA && math.Abs(t.duration-blk.a.right) < epsSync {
				*p = blk.a.profile
				continue
			}
			if blk.hasB && math.Abs(t.duration-blk.b.right) < epsSync {
				*p = blk.b.profile
				continue
			}

			minVel := -inp.MaxVelocity[dof]
			if inp.MinVelocity != nil {
				minVel = inp.MinVelocity[dof]
			}
			minAcc := -inp.MaxAcceleration[dof]
			if inp.MinAcceleration != nil {
				minAcc = inp.MinAcceleration[dof]
			}

			var synced bool
			switch inp.ControlInterface {
			case PositionControl:
				step2 := positionStep2{
					tf: tProfile,
					p0: t.p0s[dof], v0: t.v0s[dof], a0: t.a0s[dof],
					pf: inp.TargetPosition[dof], vf: inp.TargetVelocity[dof], af: inp.TargetAcceleration[dof],
					vMax: inp.MaxVelocity[dof], vMin: minVel,
					aMax: inp.MaxAcceleration[dof], aMin: minAcc,
					jMax: inp.MaxJerk[dof],
				}
				synced = step2.getProfile(p)
			case VelocityControl:
				step2 := velocityStep2{
					tf: tProfile,
					p0: t.p0s[dof], v0: t.v0s[dof], a0: t.a0s[dof],
					vf: inp.TargetVelocity[dof], af: inp.TargetAcceleration[dof],
					aMax: inp.MaxAcceleration[dof], aMin: minAcc,
					jMax: inp.MaxJerk[dof],
				}
				synced = step2.getProfile(p)
			}
			if !synced {
				return calcErrorSynchronization
			}
		}
	} else if inp.Synchronization == SynchronizationNone {
		for dof := range t.profiles {
			if !inp.Enabled[dof] || dof == limiting {
				continue
			}
			t.profiles[dof] = t.blocks[dof].pMin
		}
	}

	return calcWorking
}

// atTime samples every axis at the given trajectory time. Past the total
// duration the final state is held under constant acceleration; within the
// brake prefix the brake arcs are integrated directly.
func (t *profileTrajectory) atTime(time float64, pos, vel, acc []float64) {
	if time > t.duration {
		for dof := range t.profiles {
			p := &t.profiles[dof]
			pos[dof], vel[dof], acc[dof] = integrate(time-t.duration, p.pf, p.vf, p.af, 0)
		}
		return
	}

	for dof := range t.profiles {
		p := &t.profiles[dof]

		td := time
		if p.brake {
			if td < p.tBrake {
				i := 0
				if td >= p.tBrakes[0] {
					i = 1
					td -= p.tBrakes[0]
				}
				pos[dof], vel[dof], acc[dof] = integrate(td, p.pBrakes[i], p.vBrakes[i], p.aBrakes[i], p.jBrakes[i])
				continue
			}
			td -= p.tBrake
		}

		// Non-time-synchronized axes may finish before the common duration.
		if td >= p.tSum[6] {
			pos[dof], vel[dof], acc[dof] = integrate(td-p.tSum[6], p.pf, p.vf, p.af, 0)
			continue
		}
		pos[dof], vel[dof], acc[dof] = p.StateAtTime(td)
	}
}

func (t *profileTrajectory) positionExtrema(out []PositionExtrema) {
	for dof := range t.profiles {
		out[dof] = t.profiles[dof].PositionExtrema()
	}
}

// Trajectory is the sampled result of a calculation cycle: either a
// waypoint-mode profile trajectory or an experimental path-mode trajectory.
// Sampling is read-only and safe for concurrent readers; recalculation while
// sampling is not.
type Trajectory struct {
	profile *profileTrajectory
	path    *pathTrajectory
}

// Duration returns the total synchronized duration in seconds.
func (t *Trajectory) Duration() float64 {
	if t.path != nil {
		return t.path.duration
	}
	return t.profile.duration
}

// IndependentMinDurations returns the per-axis minimum durations before
// synchronization. The returned slice is owned by the trajectory.
func (t *Trajectory) IndependentMinDurations() []float64 {
	if t.path != nil {
		return t.path.independentMinDurations
	}
	return t.profile.independentMinDurations
}

// AtTime samples the trajectory at the given time, filling the per-axis
// position, velocity, and acceleration slices.
func (t *Trajectory) AtTime(time float64, pos, vel, acc []float64) {
	if t.path != nil {
		t.path.atTime(time, pos, vel, acc)
		return
	}
	t.profile.atTime(time, pos, vel, acc)
}

// PositionExtrema fills out with the extreme positions of each axis over the
// whole trajectory. Path-mode trajectories do not report extrema.
func (t *Trajectory) PositionExtrema(out []PositionExtrema) {
	if t.path != nil {
		for i := range out {
			out[i] = PositionExtrema{}
		}
		return
	}
	t.profile.positionExtrema(out)
}
