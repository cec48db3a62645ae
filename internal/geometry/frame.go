package geometry

import "coaster-studio/internal/common"

var (
	worldUp = common.Vec3{X: 0, Y: 1, Z: 0}
	worldX  = common.Vec3{X: 1, Y: 0, Z: 0}
)

const degenerateEps = 1e-6

// BarrelRollFrame is the orthonormal basis a vertical loop is built in.
// Captured when a loop section is built; immutable for that section.
type BarrelRollFrame struct {
	Entry   common.Vec3
	Forward common.Vec3
	Up      common.Vec3
	Right   common.Vec3
	Radius  float64
	Pitch   float64
}

// NewBarrelRollFrame anchors a loop frame to the curve at parameter t,
// displaced by the accumulated lateral offset of earlier loops. Up is
// gravity-aligned via Gram-Schmidt so the loop always starts going up
// relative to world gravity regardless of track heading.
func NewBarrelRollFrame(curve *Curve, t, radius, pitch float64, offset common.Vec3) BarrelRollFrame {
	entry := curve.PointAt(t).Add(offset)

	forward := curve.TangentAt(t)
	if forward.Len() < degenerateEps {
		// Duplicate adjacent points give a zero tangent; substitute a
		// fixed axis rather than failing.
		forward = worldX
	}
	forward = forward.Normalize()

	up := PerpendicularUp(forward)
	right := forward.Cross(up).Normalize()

	return BarrelRollFrame{
		Entry:   entry,
		Forward: forward,
		Up:      up,
		Right:   right,
		Radius:  radius,
		Pitch:   pitch,
	}
}

// PerpendicularUp projects world up onto the plane perpendicular to forward.
// When forward is near vertical, world +X is projected instead.
func PerpendicularUp(forward common.Vec3) common.Vec3 {
	up := worldUp.Sub(forward.Scale(worldUp.Dot(forward)))
	if up.Len() < degenerateEps {
		up = worldX.Sub(forward.Scale(worldX.Dot(forward)))
	}
	return up.Normalize()
}

// RotateAlign applies the minimal rotation carrying direction from onto
// direction to (Rodrigues form) to the vector v. Used to transport an up
// vector across a tangent discontinuity without flipping it.
func RotateAlign(v, from, to common.Vec3) common.Vec3 {
	f := from.Normalize()
	g := to.Normalize()
	axis := f.Cross(g)
	s := axis.Len()
	c := f.Dot(g)
	if s < degenerateEps {
		if c >= 0 {
			return v
		}
		return v.Scale(-1)
	}
	k := axis.Scale(1 / s)
	return v.Scale(c).
		Add(k.Cross(v).Scale(s)).
		Add(k.Scale(k.Dot(v) * (1 - c)))
}
