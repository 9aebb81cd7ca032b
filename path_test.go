package otg

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
)

func TestPathRequiresWaypoints(t *testing.T) {
	_, err := NewPath([]float64{0, 0}, nil, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPath(nil, []Waypoint{{Position: []float64{1, 0}}}, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewPath([]float64{0, 0}, []Waypoint{{Position: []float64{0, 0}}}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPathSingleSegment(t *testing.T) {
	p, err := NewPath([]float64{0, 0}, []Waypoint{{Position: []float64{3, 4}}}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Length(), test.ShouldAlmostEqual, 5.0, 1e-12)
	test.That(t, p.cumulativeLengths[0], test.ShouldEqual, 0.0)

	q := make([]float64, 2)
	p.Q(2.5, q)
	test.That(t, q[0], test.ShouldAlmostEqual, 1.5, 1e-12)
	test.That(t, q[1], test.ShouldAlmostEqual, 2.0, 1e-12)

	// Unit tangent on linear segments.
	p.Pdq(2.5, q)
	test.That(t, floats.Norm(q, 2), test.ShouldAlmostEqual, 1.0, 1e-12)
}

func TestPathRelativeWaypoints(t *testing.T) {
	p, err := NewPath([]float64{1, 1}, []Waypoint{
		{Position: []float64{1, 0}, Reference: WaypointRelative},
		{Position: []float64{0, 2}, Reference: WaypointRelative},
	}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Length(), test.ShouldAlmostEqual, 3.0, 1e-12)

	q := make([]float64, 2)
	p.Q(p.Length(), q)
	test.That(t, q[0], test.ShouldAlmostEqual, 2.0, 1e-12)
	test.That(t, q[1], test.ShouldAlmostEqual, 3.0, 1e-12)
}

func TestPathCornerBlend(t *testing.T) {
	// A right-angle corner with a 0.2 blend: tangent continuous, bounded
	// deviation from the corner.
	p, err := NewPath([]float64{0, 0}, []Waypoint{
		{Position: []float64{1, 0}},
		{Position: []float64{1, 1}},
	}, 0.2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(p.segments), test.ShouldEqual, 3)
	test.That(t, p.cumulativeLengths[0], test.ShouldEqual, 0.0)
	test.That(t, p.Length(), test.ShouldBeLessThanOrEqualTo, 2.0)
	test.That(t, p.Length(), test.ShouldBeGreaterThan, 1.9)

	// Endpoints are preserved.
	q := make([]float64, 2)
	p.Q(0, q)
	test.That(t, q[0], test.ShouldAlmostEqual, 0, 1e-12)
	p.Q(p.Length(), q)
	test.That(t, q[0], test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, q[1], test.ShouldAlmostEqual, 1, 1e-9)

	// Tangents match where the blend meets the lines.
	blendStart := p.cumulativeLengths[1]
	blendEnd := p.cumulativeLengths[2]
	tan := make([]float64, 2)
	p.Pdq(blendStart, tan)
	test.That(t, tan[0], test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, tan[1], test.ShouldAlmostEqual, 0, 1e-9)
	p.Pdq(blendEnd-1e-12, tan)
	test.That(t, tan[0], test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, tan[1], test.ShouldAlmostEqual, 1, 1e-6)

	// Position is continuous across segment boundaries.
	a := make([]float64, 2)
	b := make([]float64, 2)
	for _, s := range []float64{blendStart, blendEnd} {
		p.Q(s-1e-9, a)
		p.Q(s+1e-9, b)
		test.That(t, a[0], test.ShouldAlmostEqual, b[0], 1e-6)
		test.That(t, a[1], test.ShouldAlmostEqual, b[1], 1e-6)
	}

	// The blend deviates from the corner by at most the blend distance.
	mid := (blendStart + blendEnd) / 2
	p.Q(mid, q)
	dev := math.Hypot(q[0]-1, q[1]-0)
	test.That(t, dev, test.ShouldBeLessThanOrEqualTo, 0.2)
	test.That(t, dev, test.ShouldBeGreaterThan, 0)

	// Curvature is finite and bounded inside the blend.
	c := make([]float64, 2)
	p.Pddq(mid, c)
	for d := range c {
		test.That(t, math.IsInf(c[d], 0), test.ShouldBeFalse)
		test.That(t, math.IsNaN(c[d]), test.ShouldBeFalse)
	}
}

func TestPathPerWaypointBlendOverride(t *testing.T) {
	noBlend := 0.0
	p, err := NewPath([]float64{0, 0}, []Waypoint{
		{Position: []float64{1, 0}},
		{Position: []float64{1, 1}, MaxBlendDistance: &noBlend},
	}, 0.2)
	test.That(t, err, test.ShouldBeNil)
	// The override disables the corner blend: two linear segments.
	test.That(t, len(p.segments), test.ShouldEqual, 2)
	test.That(t, p.Length(), test.ShouldAlmostEqual, 2.0, 1e-12)
}

func TestPathTrajectoryLinear(t *testing.T) {
	g := newTestGenerator(t, 2, 0.001)
	in := basicInput(2)
	path, err := NewPath([]float64{0, 0}, []Waypoint{{Position: []float64{3, 4}}}, 0)
	test.That(t, err, test.ShouldBeNil)
	in.Path = path
	in.TargetPosition[0] = 3
	in.TargetPosition[1] = 4
	out := NewOutput(2)

	res := g.Update(in, out)
	test.That(t, res, test.ShouldEqual, Working)
	test.That(t, out.Type, test.ShouldEqual, TypePath)

	// Length 5 at a synthetic speed limit of 1.25 (axis 1 saturates):
	// 2 s ramp up, 2 s cruise, 2 s ramp down around the 1.25 plateau.
	test.That(t, out.Trajectory.Duration(), test.ShouldAlmostEqual, 6.0, 1e-6)

	pos := make([]float64, 2)
	vel := make([]float64, 2)
	acc := make([]float64, 2)
	out.Trajectory.AtTime(3.0, pos, vel, acc)
	test.That(t, pos[0], test.ShouldAlmostEqual, 1.5, 1e-6)
	test.That(t, pos[1], test.ShouldAlmostEqual, 2.0, 1e-6)
	test.That(t, vel[1], test.ShouldAlmostEqual, 1.0, 1e-6)

	out.Trajectory.AtTime(6.0, pos, vel, acc)
	test.That(t, pos[0], test.ShouldAlmostEqual, 3, 1e-6)
	test.That(t, pos[1], test.ShouldAlmostEqual, 4, 1e-6)
	test.That(t, vel[0], test.ShouldAlmostEqual, 0, 1e-6)
}

func TestPathTrajectoryInconsistentBoundary(t *testing.T) {
	g := newTestGenerator(t, 2, 0.001)
	in := basicInput(2)
	path, err := NewPath([]float64{0, 0}, []Waypoint{{Position: []float64{3, 4}}}, 0)
	test.That(t, err, test.ShouldBeNil)
	in.Path = path
	// A current velocity not aligned with the path tangent cannot reduce to
	// a single scalar path speed.
	in.CurrentVelocity[0] = 0.5
	in.CurrentVelocity[1] = 0.5
	out := NewOutput(2)

	test.That(t, g.Update(in, out), test.ShouldEqual, ErrorInvalidInput)
}
