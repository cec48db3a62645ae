package geometry

import (
	"coaster-studio/internal/common"
)

// SectionKind discriminates the evaluator owning a progress sub-range.
type SectionKind int

const (
	SectionSpline SectionKind = iota
	SectionLoop
)

const splineChordSteps = 10

// Section is one contiguous progress sub-range handled by one evaluator.
type Section struct {
	Kind          SectionKind
	StartProgress float64
	EndProgress   float64
	ArcLength     float64

	// Loop sections only.
	Frame BarrelRollFrame

	// Spline sections only: curve-parameter sub-range.
	T0, T1 float64

	// Transported orientation at section entry, carried across boundaries
	// without flips. Used for support/rail rendering.
	EntryUp common.Vec3
}

// Pose is a sampled vehicle placement on the track.
type Pose struct {
	Position common.Vec3
	Tangent  common.Vec3
	Up       common.Vec3
}

// SectionTable is an immutable snapshot partitioning ride progress [0,1)
// into alternating spline and loop sections. Rebuilt whole whenever the
// control points, loop segments, or loop flag change.
type SectionTable struct {
	Sections    []Section
	TotalLength float64

	curve *Curve
}

// BuildSectionTable walks the control points in order, inserting a loop
// section wherever a LoopSegment references the point and a spline section
// for every span between points. Progress sub-ranges are assigned
// proportionally to estimated arc length.
//
// Loop segments referencing a missing point, or with a non-positive radius,
// are skipped silently.
func BuildSectionTable(points []TrackPoint, loops []LoopSegment, looped bool) *SectionTable {
	positions := make([]common.Vec3, len(points))
	for i, p := range points {
		positions[i] = p.Position
	}
	curve := NewCurve(positions, looped)
	if curve == nil {
		return &SectionTable{}
	}

	byEntry := make(map[string]LoopSegment, len(loops))
	for _, ls := range loops {
		if ls.Radius > 0 {
			byEntry[ls.EntryPointID] = ls
		}
	}

	segCount := float64(curve.Segments())
	sections := make([]Section, 0, len(points)+len(loops))

	// Lateral offset accumulated from earlier loop pitches, and the
	// orientation frame carried across section boundaries.
	offset := common.Vec3{}
	carriedTan := curve.TangentAt(0)
	if carriedTan.Len() < degenerateEps {
		carriedTan = worldX
	}
	carriedTan = carriedTan.Normalize()
	carriedUp := PerpendicularUp(carriedTan)

	// transport reconciles the carried frame with a new tangent: rotate up
	// by the minimal rotation between the tangents, then re-project it
	// perpendicular so it never flips discontinuously.
	transport := func(to common.Vec3) {
		if to.Len() < degenerateEps {
			return
		}
		to = to.Normalize()
		up := RotateAlign(carriedUp, carriedTan, to)
		up = up.Sub(to.Scale(up.Dot(to)))
		if up.Len() < degenerateEps {
			up = PerpendicularUp(to)
		}
		carriedUp = up.Normalize()
		carriedTan = to
	}

	for i, pt := range points {
		ti := float64(i) / segCount

		if ls, ok := byEntry[pt.ID]; ok {
			frame := NewBarrelRollFrame(curve, ti, ls.Radius, ls.Pitch, offset)
			transport(frame.Forward)
			sections = append(sections, Section{
				Kind:      SectionLoop,
				ArcLength: frame.ArcLength(),
				Frame:     frame,
				EntryUp:   carriedUp,
			})
			// Subsequent geometry is pushed forward by the loop's pitch.
			offset = offset.Add(frame.Forward.Scale(ls.Pitch))
		}

		if !looped && i == len(points)-1 {
			break
		}
		t0 := float64(i) / segCount
		t1 := float64(i+1) / segCount
		transport(curve.TangentAt(t0))
		sections = append(sections, Section{
			Kind:      SectionSpline,
			ArcLength: curve.chordLength(t0, t1, splineChordSteps),
			T0:        t0,
			T1:        t1,
			EntryUp:   carriedUp,
		})
		transport(curve.TangentAt(t1))
	}

	total := 0.0
	for _, s := range sections {
		total += s.ArcLength
	}
	if total <= 0 {
		return &SectionTable{curve: curve}
	}

	cum := 0.0
	for i := range sections {
		sections[i].StartProgress = cum / total
		cum += sections[i].ArcLength
		sections[i].EndProgress = cum / total
	}
	// Pin the partition ends against float drift.
	sections[0].StartProgress = 0
	sections[len(sections)-1].EndProgress = 1

	return &SectionTable{Sections: sections, TotalLength: total, curve: curve}
}

// Curve exposes the underlying spline, or nil for an empty table.
func (st *SectionTable) Curve() *Curve {
	return st.curve
}

// SampleAt produces the pose at global progress p in [0,1). Values outside
// the range are clamped, never an error. Returns false only when the table
// has no sections.
func (st *SectionTable) SampleAt(p float64) (Pose, bool) {
	if len(st.Sections) == 0 {
		return Pose{}, false
	}
	if p >= 1 {
		p = 0.9999
	}
	if p < 0 {
		p = 0
	}

	idx := len(st.Sections) - 1
	for i, s := range st.Sections {
		if p >= s.StartProgress && p < s.EndProgress {
			idx = i
			break
		}
	}
	sec := st.Sections[idx]

	span := sec.EndProgress - sec.StartProgress
	local := 0.0
	if span > 0 {
		local = (p - sec.StartProgress) / span
	}

	if sec.Kind == SectionLoop {
		return Pose{
			Position: sec.Frame.PointAt(local),
			Tangent:  sec.Frame.TangentAt(local),
			Up:       sec.Frame.UpAt(local),
		}, true
	}

	tc := sec.T0 + local*(sec.T1-sec.T0)
	pos := st.curve.PointAt(tc).Add(st.offsetBefore(idx))
	tan := st.curve.TangentAt(tc)
	if tan.Len() < degenerateEps {
		tan = worldX
	}
	tan = tan.Normalize()
	return Pose{
		Position: pos,
		Tangent:  tan,
		Up:       PerpendicularUp(tan),
	}, true
}

// offsetBefore replays the lateral displacement contributed by every loop
// section preceding idx, reconstructing the accumulated offset the builder
// used for that span.
func (st *SectionTable) offsetBefore(idx int) common.Vec3 {
	offset := common.Vec3{}
	for _, s := range st.Sections[:idx] {
		if s.Kind == SectionLoop {
			offset = offset.Add(s.Frame.Forward.Scale(s.Frame.Pitch))
		}
	}
	return offset
}
