package otg

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestIntegrate(t *testing.T) {
	p, v, a := integrate(2, 1, 0.5, 0.25, 0.125)
	test.That(t, p, test.ShouldAlmostEqual, 1+0.5*2+0.25*4/2+0.125*8/6, 1e-12)
	test.That(t, v, test.ShouldAlmostEqual, 0.5+0.25*2+0.125*4/2, 1e-12)
	test.That(t, a, test.ShouldAlmostEqual, 0.25+0.125*2, 1e-12)
}

func TestProfileCheckIntegratesBoundaries(t *testing.T) {
	// Symmetric rest-to-rest S-curve with unit limits.
	var p Profile
	p.setStart(0, 0, 0)
	p.setJerkPattern(1)
	peak := math.Cbrt(0.5)
	p.t = [7]float64{peak, 0, peak, 0, peak, 0, peak}

	test.That(t, p.check(1, 0, 0, 1, -1, 1, -1, true), test.ShouldBeTrue)
	test.That(t, p.pf, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, p.vf, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.af, test.ShouldAlmostEqual, 0, 1e-9)

	// Arc-boundary states must agree with direct integration.
	pos, vel, acc := 0.0, 0.0, 0.0
	for i := 0; i < 7; i++ {
		test.That(t, pos, test.ShouldAlmostEqual, p.p[i], 1e-9)
		test.That(t, vel, test.ShouldAlmostEqual, p.v[i], 1e-9)
		test.That(t, acc, test.ShouldAlmostEqual, p.a[i], 1e-9)
		pos, vel, acc = integrate(p.t[i], pos, vel, acc, p.j[i])
	}
}

func TestProfileStateAtTime(t *testing.T) {
	var p Profile
	p.setStart(0, 0, 0)
	p.setJerkPattern(1)
	peak := math.Cbrt(0.5)
	p.t = [7]float64{peak, 0, peak, 0, peak, 0, peak}
	test.That(t, p.check(1, 0, 0, 1, -1, 1, -1, true), test.ShouldBeTrue)

	pos, vel, acc := p.StateAtTime(0)
	test.That(t, pos, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, vel, test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, acc, test.ShouldAlmostEqual, 0, 1e-12)

	// Midpoint of the symmetric move.
	pos, vel, acc = p.StateAtTime(p.Duration() / 2)
	test.That(t, pos, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, acc, test.ShouldAlmostEqual, 0, 1e-9)

	pos, vel, acc = p.StateAtTime(p.Duration())
	test.That(t, pos, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, vel, test.ShouldAlmostEqual, 0, 1e-9)

	// Past the final arc the state holds under constant acceleration.
	pos, _, _ = p.StateAtTime(p.Duration() + 5)
	test.That(t, pos, test.ShouldAlmostEqual, 1, 1e-9)
}

func TestProfileCheckRejects(t *testing.T) {
	var p Profile
	p.setStart(0, 0, 0)
	p.setJerkPattern(1)
	p.t = [7]float64{-1, 0, 0, 0, 0, 0, 0}
	test.That(t, p.check(0, 0, 0, 1, -1, 1, -1, true), test.ShouldBeFalse)

	// Tiny negative durations clamp instead of failing.
	p = Profile{}
	p.setStart(0, 0, 0)
	p.setJerkPattern(1)
	p.t = [7]float64{-1e-15, 0, 0, 0, 0, 0, 0}
	test.That(t, p.check(0, 0, 0, 1, -1, 1, -1, true), test.ShouldBeTrue)
	test.That(t, p.t[0], test.ShouldEqual, 0)

	// Wrong final position.
	p = Profile{}
	p.setStart(0, 0, 0)
	p.setJerkPattern(1)
	p.t = [7]float64{0.1, 0, 0.1, 0, 0.1, 0, 0.1}
	test.That(t, p.check(10, 0, 0, 1, -1, 1, -1, true), test.ShouldBeFalse)
}

func TestPositionExtrema(t *testing.T) {
	// A move that dips backward first: start moving away from the target.
	step1 := positionStep1{
		p0: 0, v0: -0.5, a0: 0,
		pf: 1, vf: 0, af: 0,
		vMax: 1, vMin: -1, aMax: 1, aMin: -1, jMax: 1,
	}
	var p Profile
	var blk block
	test.That(t, step1.getProfile(&p, &blk), test.ShouldBeTrue)

	ext := p.PositionExtrema()
	test.That(t, ext.Min, test.ShouldBeLessThan, 0)
	test.That(t, ext.Max, test.ShouldAlmostEqual, 1, 1e-6)
	test.That(t, ext.TMin, test.ShouldBeGreaterThan, 0)
	test.That(t, ext.TMin, test.ShouldBeLessThan, ext.TMax)

	// The reported minimum matches the sampled minimum.
	sampled := math.Inf(1)
	for i := 0; i <= 1000; i++ {
		pos, _, _ := p.StateAtTime(p.Duration() * float64(i) / 1000)
		sampled = math.Min(sampled, pos)
	}
	test.That(t, ext.Min, test.ShouldAlmostEqual, sampled, 1e-3)
}
