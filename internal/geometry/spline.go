package geometry

import (
	"math"

	"coaster-studio/internal/common"
)

// Curve is a uniform Catmull-Rom interpolant through an ordered set of
// control points. It passes through every point with C1-continuous tangents
// derived from the neighboring points. Closed curves wrap the parameter;
// open curves use reflected phantom endpoints.
type Curve struct {
	points   []common.Vec3
	closed   bool
	segments int
}

// NewCurve builds a curve through the given points. Returns nil for fewer
// than 2 points.
func NewCurve(points []common.Vec3, closed bool) *Curve {
	if len(points) < 2 {
		return nil
	}
	pts := make([]common.Vec3, len(points))
	copy(pts, points)

	segments := len(pts) - 1
	if closed {
		segments = len(pts)
	}
	return &Curve{points: pts, closed: closed, segments: segments}
}

// Segments returns the number of spline spans between control points.
func (c *Curve) Segments() int {
	return c.segments
}

// PointAt evaluates the curve position at t in [0,1). Closed curves wrap,
// open curves clamp.
func (c *Curve) PointAt(t float64) common.Vec3 {
	i, u := c.locate(t)
	p0, p1, p2, p3 := c.window(i)
	u2 := u * u
	u3 := u2 * u

	a := p1.Scale(2)
	b := p2.Sub(p0).Scale(u)
	cc := p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(u2)
	d := p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(u3)
	return a.Add(b).Add(cc).Add(d).Scale(0.5)
}

// TangentAt evaluates the curve derivative with respect to t. Not
// normalized; callers needing a unit direction normalize themselves.
func (c *Curve) TangentAt(t float64) common.Vec3 {
	i, u := c.locate(t)
	p0, p1, p2, p3 := c.window(i)
	u2 := u * u

	b := p2.Sub(p0)
	cc := p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(2 * u)
	d := p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(3 * u2)
	// Scale from per-segment u to global t.
	return b.Add(cc).Add(d).Scale(0.5 * float64(c.segments))
}

// locate maps global t to a segment index and local parameter u in [0,1].
func (c *Curve) locate(t float64) (int, float64) {
	if c.closed {
		t -= math.Floor(t)
	} else {
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}
	u := t * float64(c.segments)
	i := int(math.Floor(u))
	if i >= c.segments {
		i = c.segments - 1
		u = float64(c.segments)
	}
	return i, u - float64(i)
}

// window returns the four control points governing segment i.
func (c *Curve) window(i int) (p0, p1, p2, p3 common.Vec3) {
	return c.control(i - 1), c.control(i), c.control(i + 1), c.control(i + 2)
}

func (c *Curve) control(i int) common.Vec3 {
	n := len(c.points)
	if c.closed {
		return c.points[((i%n)+n)%n]
	}
	// Phantom endpoints: reflect the first/last segment.
	if i < 0 {
		return c.points[0].Scale(2).Sub(c.points[1])
	}
	if i >= n {
		return c.points[n-1].Scale(2).Sub(c.points[n-2])
	}
	return c.points[i]
}

// chordLength approximates arc length between t0 and t1 by summing straight
// chords over the given number of sub-intervals.
func (c *Curve) chordLength(t0, t1 float64, steps int) float64 {
	if steps < 1 {
		steps = 1
	}
	total := 0.0
	prev := c.PointAt(t0)
	for i := 1; i <= steps; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(steps)
		p := c.PointAt(t)
		total += prev.Distance(p)
		prev = p
	}
	return total
}
