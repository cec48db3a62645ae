package geometry

import "coaster-studio/internal/common"

// TrackPoint is a user-placed anchor the track curve passes through.
// Order within the slice is the traversal order along the track.
type TrackPoint struct {
	ID       string
	Position common.Vec3
	Tilt     float64 // Radians, banking hint for rendering.
}

// LoopSegment declares that the path executes one analytic vertical loop at
// the referenced control point instead of following the plain spline there.
// The reference is weak: if the point is deleted the segment is simply
// ignored by the section builder.
type LoopSegment struct {
	ID           string
	EntryPointID string
	Radius       float64 // Must be positive to take effect.
	Pitch        float64 // Forward advance per full loop.
}
