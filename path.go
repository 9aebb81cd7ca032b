package otg

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// WaypointReference selects how a waypoint's coordinates are interpreted.
type WaypointReference int

const (
	// WaypointAbsolute coordinates are configuration-space positions.
	WaypointAbsolute WaypointReference = iota
	// WaypointRelative coordinates are offsets from the previous waypoint.
	WaypointRelative
)

// Waypoint is one target point of a geometric path.
type Waypoint struct {
	Position  []float64
	Reference WaypointReference

	// MaxBlendDistance overrides the path-wide blend distance at the corner
	// where the segment ending at this waypoint begins, that is, at the
	// previous waypoint; nil uses the path default. The first waypoint's
	// value is not used.
	MaxBlendDistance *float64
}

// segment is one piece of a composite path, parameterized by local arc
// length s in [0, length()].
type segment interface {
	length() float64
	q(s float64, out []float64)
	pdq(s float64, out []float64)
	pddq(s float64, out []float64)
	pdddq(s float64, out []float64)
}

// linearSegment connects two configuration-space points at unit speed in
// arc length.
type linearSegment struct {
	start, end []float64
	len        float64
}

func newLinearSegment(start, end []float64) *linearSegment {
	s := &linearSegment{
		start: append([]float64(nil), start...),
		end:   append([]float64(nil), end...),
	}
	s.len = floats.Distance(end, start, 2)
	return s
}

func (l *linearSegment) length() float64 { return l.len }

func (l *linearSegment) q(s float64, out []float64) {
	for dof := range out {
		out[dof] = l.start[dof] + s/l.len*(l.end[dof]-l.start[dof])
	}
}

func (l *linearSegment) pdq(_ float64, out []float64) {
	for dof := range out {
		out[dof] = (l.end[dof] - l.start[dof]) / l.len
	}
}

func (l *linearSegment) pddq(_ float64, out []float64) {
	for dof := range out {
		out[dof] = 0
	}
}

func (l *linearSegment) pdddq(_ float64, out []float64) {
	for dof := range out {
		out[dof] = 0
	}
}

// quarticBlendSegment replaces the corner between two linear segments with a
// quartic that matches position and tangent on both sides while deviating
// from the corner by at most maxDiff.
type quarticBlendSegment struct {
	b, c, e, f []float64
	len        float64
}

// newQuarticBlendSegment blends from the left segment (base point lb,
// tangent lm) into the right segment (tangent rm). sMid is the arc length of
// the corner on the left segment; sAbsMax caps the half-length of the blend.
func newQuarticBlendSegment(lb, lm, rm []float64, sMid, maxDiff, sAbsMax float64) *quarticBlendSegment {
	dof := len(lb)
	q := &quarticBlendSegment{
		b: make([]float64, dof),
		c: make([]float64, dof),
		e: make([]float64, dof),
		f: make([]float64, dof),
	}

	// Axes with equal tangents put no constraint on the blend half-length;
	// the division yields +Inf there.
	sAbs := sAbsMax
	for d := 0; d < dof; d++ {
		if s := math.Abs((-16 * maxDiff) / (3 * (lm[d] - rm[d]))); s < sAbs {
			sAbs = s
		}
	}
	q.len = 2 * sAbs

	for d := 0; d < dof; d++ {
		q.b[d] = (lm[d] - rm[d]) / (16 * sAbs * sAbs * sAbs)
		q.c[d] = (-lm[d] + rm[d]) / (4 * sAbs * sAbs)
		q.e[d] = lm[d]
		q.f[d] = lb[d] + lm[d]*(sMid-sAbs)
	}
	return q
}

func (q *quarticBlendSegment) length() float64 { return q.len }

func (q *quarticBlendSegment) q(s float64, out []float64) {
	for d := range out {
		out[d] = q.f[d] + s*(q.e[d]+s*(s*(q.c[d]+s*q.b[d])))
	}
}

func (q *quarticBlendSegment) pdq(s float64, out []float64) {
	for d := range out {
		out[d] = q.e[d] + s*(s*(3*q.c[d]+s*4*q.b[d]))
	}
}

func (q *quarticBlendSegment) pddq(s float64, out []float64) {
	for d := range out {
		out[d] = s * (6*q.c[d] + s*12*q.b[d])
	}
}

func (q *quarticBlendSegment) pdddq(s float64, out []float64) {
	for d := range out {
		out[d] = 6*q.c[d] + s*24*q.b[d]
	}
}

// Path is a composite geometric curve through a list of waypoints: linear
// segments, with quartic blends replacing the corners where a blend distance
// is set. All queries are parameterized by global arc length.
type Path struct {
	dof    int
	length float64

	segments          []segment
	cumulativeLengths []float64
}

// NewPath builds a path from a start point through the given waypoints. A
// positive maxBlendDistance smooths every corner; individual waypoints can
// override it. At least one waypoint is required, and consecutive points must
// be distinct.
func NewPath(start []float64, waypoints []Waypoint, maxBlendDistance float64) (*Path, error) {
	if len(start) == 0 {
		return nil, errors.New("path start point is empty")
	}
	if len(waypoints) == 0 {
		return nil, errors.New("path needs at least one waypoint")
	}
	dof := len(start)

	absolute := make([][]float64, len(waypoints)+1)
	absolute[0] = append([]float64(nil), start...)
	for i, wp := range waypoints {
		if len(wp.Position) != dof {
			return nil, errors.Errorf("waypoint %d has %d degrees of freedom, path has %d", i, len(wp.Position), dof)
		}
		next := make([]float64, dof)
		switch wp.Reference {
		case WaypointAbsolute:
			copy(next, wp.Position)
		case WaypointRelative:
			for d := 0; d < dof; d++ {
				next[d] = absolute[i][d] + wp.Position[d]
			}
		}
		absolute[i+1] = next
	}

	lines := make([]*linearSegment, len(waypoints))
	for i := range lines {
		lines[i] = newLinearSegment(absolute[i], absolute[i+1])
		if lines[i].len == 0 {
			return nil, errors.Errorf("waypoints %d and %d coincide", i, i+1)
		}
	}

	p := &Path{
		dof:               dof,
		segments:          make([]segment, 0, 2*len(waypoints)),
		cumulativeLengths: make([]float64, 0, 2*len(waypoints)),
	}

	cumulative := 0.0
	lm := make([]float64, dof)
	rm := make([]float64, dof)
	for i := 1; i < len(lines); i++ {
		blendDistance := maxBlendDistance
		if wp := waypoints[i]; wp.MaxBlendDistance != nil {
			blendDistance = *wp.MaxBlendDistance
		}

		left, right := lines[i-1], lines[i]
		if blendDistance > 0 {
			left.pdq(0, lm)
			right.pdq(0, rm)

			sAbsMax := math.Min(left.len, right.len) / 2
			blend := newQuarticBlendSegment(left.start, lm, rm, left.len, blendDistance, sAbsMax)
			sAbs := blend.len / 2

			cut := make([]float64, dof)
			left.q(left.len-sAbs, cut)
			newLeft := newLinearSegment(left.start, cut)
			right.q(sAbs, cut)
			newRight := newLinearSegment(cut, right.end)

			p.segments = append(p.segments, newLeft)
			p.cumulativeLengths = append(p.cumulativeLengths, cumulative)
			cumulative += newLeft.len

			p.segments = append(p.segments, blend)
			p.cumulativeLengths = append(p.cumulativeLengths, cumulative)
			cumulative += blend.len

			lines[i] = newRight
		} else {
			p.segments = append(p.segments, left)
			p.cumulativeLengths = append(p.cumulativeLengths, cumulative)
			cumulative += left.len
		}
	}
	last := lines[len(lines)-1]
	p.segments = append(p.segments, last)
	p.cumulativeLengths = append(p.cumulativeLengths, cumulative)
	cumulative += last.len
	p.length = cumulative

	return p, nil
}

// DoF returns the number of degrees of freedom of the path.
func (p *Path) DoF() int { return p.dof }

// Length returns the total arc length.
func (p *Path) Length() float64 { return p.length }

// find locates the segment containing global arc length s and returns it
// with the local arc length.
func (p *Path) find(s float64) (segment, float64) {
	i := sort.Search(len(p.cumulativeLengths), func(k int) bool {
		return p.cumulativeLengths[k] > s
	}) - 1
	if i < 0 {
		i = 0
	}
	return p.segments[i], s - p.cumulativeLengths[i]
}

// Q fills out with the configuration-space point at arc length s.
func (p *Path) Q(s float64, out []float64) {
	seg, local := p.find(s)
	seg.q(local, out)
}

// Pdq fills out with the first derivative of the point with respect to arc
// length; on linear segments this is the unit tangent.
func (p *Path) Pdq(s float64, out []float64) {
	seg, local := p.find(s)
	seg.pdq(local, out)
}

// Pddq fills out with the second arc-length derivative (curvature vector).
func (p *Path) Pddq(s float64, out []float64) {
	seg, local := p.find(s)
	seg.pddq(local, out)
}

// Pdddq fills out with the third arc-length derivative.
func (p *Path) Pdddq(s float64, out []float64) {
	seg, local := p.find(s)
	seg.pdddq(local, out)
}

// Dq composes the tangent with the scalar path speed ds.
func (p *Path) Dq(s, ds float64, out []float64) {
	p.Pdq(s, out)
	for d := range out {
		out[d] *= ds
	}
}

// Ddq composes curvature and tangent with the scalar speed and acceleration:
// ddq = pddq*ds^2 + pdq*dds.
func (p *Path) Ddq(s, ds, dds float64, pdq, out []float64) {
	seg, local := p.find(s)
	seg.pdq(local, pdq)
	seg.pddq(local, out)
	for d := range out {
		out[d] = out[d]*ds*ds + pdq[d]*dds
	}
}

// Dddq composes the third derivative by the chain rule:
// dddq = 3*pddq*ds*dds + pdddq*ds^3 + pdq*ddds.
func (p *Path) Dddq(s, ds, dds, ddds float64, pdq, pddq, out []float64) {
	seg, local := p.find(s)
	seg.pdq(local, pdq)
	seg.pddq(local, pddq)
	seg.pdddq(local, out)
	for d := range out {
		out[d] = 3*pddq[d]*ds*dds + out[d]*ds*ds*ds + pdq[d]*ddds
	}
}
