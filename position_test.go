package otg

import (
	"math"
	"testing"

	"go.viam.com/test"
)

// checkKinematicConsistency verifies that integrating each arc from its start
// state reproduces the next boundary state.
func checkKinematicConsistency(t *testing.T, p *Profile) {
	t.Helper()
	for i := 0; i < 6; i++ {
		pos, vel, acc := integrate(p.t[i], p.p[i], p.v[i], p.a[i], p.j[i])
		test.That(t, pos, test.ShouldAlmostEqual, p.p[i+1], 1e-9)
		test.That(t, vel, test.ShouldAlmostEqual, p.v[i+1], 1e-9)
		test.That(t, acc, test.ShouldAlmostEqual, p.a[i+1], 1e-9)
	}
}

func TestPositionStep1RestToRest(t *testing.T) {
	step1 := positionStep1{
		p0: 0, v0: 0, a0: 0,
		pf: 1, vf: 0, af: 0,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)

	// The jerk-limited optimum for this move touches no limit: a symmetric
	// S-curve of duration 4 * cbrt(1/2).
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 4*math.Cbrt(0.5), 1e-6)
	test.That(t, p.pf, test.ShouldAlmostEqual, 1, 1e-8)
	test.That(t, p.vf, test.ShouldAlmostEqual, 0, 1e-8)
	test.That(t, p.af, test.ShouldAlmostEqual, 0, 1e-8)
	checkKinematicConsistency(t, &p)

	pos, _, acc := p.StateAtTime(p.Duration() / 2)
	test.That(t, pos, test.ShouldAlmostEqual, 0.5, 1e-6)
	test.That(t, acc, test.ShouldAlmostEqual, 0, 1e-6)
}

func TestPositionStep1CruisePhase(t *testing.T) {
	// A longer move reaches the velocity limit and coasts: total duration 5.
	step1 := positionStep1{
		p0: 0, v0: 0, a0: 0,
		pf: 3, vf: 0, af: 0,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 5.0, 1e-6)
	test.That(t, p.t[3], test.ShouldAlmostEqual, 1.0, 1e-6)
	checkKinematicConsistency(t, &p)

	// During the cruise the velocity sits on the limit.
	_, vel, acc := p.StateAtTime(2.5)
	test.That(t, vel, test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, acc, test.ShouldAlmostEqual, 0, 1e-6)
}

func TestPositionStep1NegativeDirection(t *testing.T) {
	step1 := positionStep1{
		p0: 2, v0: 0, a0: 0,
		pf: -1, vf: 0, af: 0,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 5.0, 1e-6)
	test.That(t, p.pf, test.ShouldAlmostEqual, -1, 1e-8)

	_, vel, _ := p.StateAtTime(2.5)
	test.That(t, vel, test.ShouldAlmostEqual, -1.0, 1e-6)
}

func TestPositionStep1LimitRespect(t *testing.T) {
	cases := []positionStep1{
		{p0: 0, v0: 0, a0: 0, pf: 1, vf: 0, af: 0, vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1},
		{p0: 0, v0: 0.5, a0: -0.3, pf: 2, vf: 0.2, af: 0, vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1},
		{p0: 1, v0: -0.5, a0: 0.2, pf: -3, vf: 0, af: 0, vMax: 2, vMin: -2, aMax: 0.5, aMin: -0.5, jMax: 2},
		{p0: 0, v0: 0, a0: 0, pf: 0.01, vf: 0, af: 0, vMax: 10, vMin: -10, aMax: 1, aMin: -1, jMax: 100},
	}
	for _, step1 := range cases {
		var p Profile
		var blk block
		test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
		checkKinematicConsistency(t, &p)

		for i := 0; i <= 500; i++ {
			tq := p.Duration() * float64(i) / 500
			_, vel, acc := p.StateAtTime(tq)
			test.That(t, vel, test.ShouldBeLessThanOrEqualTo, step1.vMax+epsLimits)
			test.That(t, vel, test.ShouldBeGreaterThanOrEqualTo, step1.vMin-epsLimits)
			test.That(t, acc, test.ShouldBeLessThanOrEqualTo, step1.aMax+epsLimits)
			test.That(t, acc, test.ShouldBeGreaterThanOrEqualTo, step1.aMin-epsLimits)
		}
	}
}

func TestPositionStep1Infeasible(t *testing.T) {
	// A target acceleration beyond the acceleration limit cannot be reached.
	step1 := positionStep1{
		p0: 0, v0: 0, a0: 0,
		pf: 1, vf: 0, af: 5,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeFalse)
}

func TestPositionStep2ExactDuration(t *testing.T) {
	for _, tf := range []float64{3.2, 3.5, 4.0, 5.0, 8.0} {
		step2 := positionStep2{
			tf: tf,
			p0: 0, v0: 0, a0: 0,
			pf: 1, vf: 0, af: 0,
			vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
		}
		var p Profile
		test.That(t, step2.getProfile(&p), test.ShouldBeTrue)
		test.That(t, p.Duration(), test.ShouldAlmostEqual, tf, 1e-7)
		test.That(t, p.pf, test.ShouldAlmostEqual, 1, 1e-7)
		test.That(t, p.vf, test.ShouldAlmostEqual, 0, 1e-7)
		test.That(t, p.af, test.ShouldAlmostEqual, 0, 1e-7)
		checkKinematicConsistency(t, &p)

		// The stretched profile never uses more jerk than allowed.
		test.That(t, p.peakJerk(), test.ShouldBeLessThanOrEqualTo, 1+epsLimits)
	}
}

func TestPositionStep2MovingBoundary(t *testing.T) {
	step2 := positionStep2{
		tf: 6.0,
		p0: 0, v0: 0.4, a0: -0.1,
		pf: 2.5, vf: 0.1, af: 0,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	test.That(t, step2.getProfile(&p), test.ShouldBeTrue)
	test.That(t, p.Duration(), test.ShouldAlmostEqual, 6.0, 1e-7)
	test.That(t, p.pf, test.ShouldAlmostEqual, 2.5, 1e-7)
	test.That(t, p.vf, test.ShouldAlmostEqual, 0.1, 1e-7)
	checkKinematicConsistency(t, &p)
}
