package otg

import (
	"testing"

	"go.viam.com/test"
)

func TestVelocityStep1RampToTarget(t *testing.T) {
	// Velocity 0 -> 2 with aMax = 1, jMax = 1: ramp up, hold the
	// acceleration plateau for one second, ramp down. Duration 3.
	step1 := velocityStep1{
		p0: 0, v0: 0, a0: 0,
		vf: 2, af: 0,
		aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 3.0, 1e-9)
	test.That(t, p.vf, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, p.af, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.pf, test.ShouldAlmostEqual, 3, 1e-9)
	checkKinematicConsistency(t, &p)
}

func TestVelocityStep1Triangular(t *testing.T) {
	// A small velocity change never reaches the acceleration limit.
	step1 := velocityStep1{
		p0: 0, v0: 0, a0: 0,
		vf: 0.25, af: 0,
		aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, p.t[1], test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.vf, test.ShouldAlmostEqual, 0.25, 1e-9)
}

func TestVelocityStep1Downward(t *testing.T) {
	step1 := velocityStep1{
		p0: 0, v0: 1, a0: 0,
		vf: -1, af: 0,
		aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)
	test.That(t, blk.tMin, test.ShouldAlmostEqual, 3.0, 1e-9)
	test.That(t, p.vf, test.ShouldAlmostEqual, -1, 1e-9)

	_, _, acc := p.StateAtTime(p.Duration() / 2)
	test.That(t, acc, test.ShouldAlmostEqual, -1, 1e-6)
}

func TestVelocityStep2StretchedDuration(t *testing.T) {
	for _, tf := range []float64{3.5, 4.0, 6.0} {
		step2 := velocityStep2{
			tf: tf,
			p0: 0, v0: 0, a0: 0,
			vf: 2, af: 0,
			aMax: 1, aMin: -1, jMax: 1,
		}
		var p Profile
		test.That(t, step2.getProfile(&p), test.ShouldBeTrue)
		test.That(t, p.Duration(), test.ShouldAlmostEqual, tf, 1e-9)
		test.That(t, p.vf, test.ShouldAlmostEqual, 2, 1e-9)
		test.That(t, p.af, test.ShouldAlmostEqual, 0, 1e-9)
		checkKinematicConsistency(t, &p)
	}
}
