package geometry

import (
	"math"

	"coaster-studio/internal/common"
)

const (
	// Lateral sine displacement as a fraction of the loop radius. Pushes
	// the ascending and descending strands apart so they never intersect.
	corkscrewRatio = 0.4

	// Sub-steps used to estimate loop arc length; there is no closed form.
	loopArcSteps = 100
)

// theta eases the angular parameter so angular velocity is zero at t=0 and
// t=1, blending smoothly into adjacent spline sections.
func theta(t float64) (angle, deriv float64) {
	w := 2 * math.Pi * t
	return 2*math.Pi*t - math.Sin(w), 2 * math.Pi * (1 - math.Cos(w))
}

// PointAt returns the loop position at local parameter t in [0,1).
func (f BarrelRollFrame) PointAt(t float64) common.Vec3 {
	a, _ := theta(t)
	return f.Entry.
		Add(f.Forward.Scale(f.Pitch*t + f.Radius*math.Sin(a))).
		Add(f.Up.Scale(f.Radius * (1 - math.Cos(a)))).
		Add(f.Right.Scale(corkscrewRatio * f.Radius * math.Sin(a)))
}

// TangentAt returns the unit tangent at local parameter t. Where the raw
// derivative degenerates (t=0 or 1 with zero pitch) the frame forward is
// returned so the result is always unit length.
func (f BarrelRollFrame) TangentAt(t float64) common.Vec3 {
	a, da := theta(t)
	d := f.Forward.Scale(f.Pitch + f.Radius*math.Cos(a)*da).
		Add(f.Up.Scale(f.Radius * math.Sin(a) * da)).
		Add(f.Right.Scale(corkscrewRatio * f.Radius * math.Cos(a) * da))
	if d.Len() < degenerateEps {
		return f.Forward
	}
	return d.Normalize()
}

// UpAt rotates the entry up vector around the right axis, inverting it at
// the loop apex so the rider is upside-down at the top.
func (f BarrelRollFrame) UpAt(t float64) common.Vec3 {
	a, _ := theta(t)
	return f.Up.Scale(math.Cos(a)).Sub(f.Forward.Scale(math.Sin(a)))
}

// ArcLength estimates the loop's arc length by summing uniform sub-steps.
func (f BarrelRollFrame) ArcLength() float64 {
	total := 0.0
	prev := f.PointAt(0)
	for i := 1; i <= loopArcSteps; i++ {
		p := f.PointAt(float64(i) / loopArcSteps)
		total += prev.Distance(p)
		prev = p
	}
	return total
}
