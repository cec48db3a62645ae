package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coaster-studio/internal/common"
)

func threePointTrack() ([]TrackPoint, []LoopSegment) {
	pts := []TrackPoint{
		{ID: "a", Position: common.Vec3{X: 0, Y: 10}},
		{ID: "b", Position: common.Vec3{X: 30, Y: 10}},
		{ID: "c", Position: common.Vec3{X: 60, Y: 10}},
	}
	loops := []LoopSegment{
		{ID: "l1", EntryPointID: "b", Radius: 8, Pitch: 0},
	}
	return pts, loops
}

func TestSingleSplineSection(t *testing.T) {
	pts := []TrackPoint{
		{ID: "a", Position: common.Vec3{}},
		{ID: "b", Position: common.Vec3{X: 10}},
	}
	table := BuildSectionTable(pts, nil, false)
	require.Len(t, table.Sections, 1)

	sec := table.Sections[0]
	assert.Equal(t, SectionSpline, sec.Kind)
	assert.InDelta(t, 0.0, sec.StartProgress, 1e-9)
	assert.InDelta(t, 1.0, sec.EndProgress, 1e-9)

	pose, ok := table.SampleAt(0.5)
	require.True(t, ok)
	assert.InDelta(t, 5.0, pose.Position.X, 1e-6)
	assert.InDelta(t, 0.0, pose.Position.Y, 1e-6)
	assert.InDelta(t, 0.0, pose.Position.Z, 1e-6)
}

func TestPartitionInvariants(t *testing.T) {
	pts := []TrackPoint{
		{ID: "a", Position: common.Vec3{X: 0, Y: 5, Z: 0}},
		{ID: "b", Position: common.Vec3{X: 40, Y: 12, Z: 0}},
		{ID: "c", Position: common.Vec3{X: 40, Y: 8, Z: 40}},
		{ID: "d", Position: common.Vec3{X: 0, Y: 5, Z: 40}},
	}
	loops := []LoopSegment{{ID: "l1", EntryPointID: "c", Radius: 6, Pitch: 2}}

	table := BuildSectionTable(pts, loops, true)
	// 4 spline spans for a closed 4-point track, plus the loop.
	require.Len(t, table.Sections, 5)

	assert.InDelta(t, 0.0, table.Sections[0].StartProgress, 1e-6)
	assert.InDelta(t, 1.0, table.Sections[len(table.Sections)-1].EndProgress, 1e-6)

	for i, s := range table.Sections {
		assert.Less(t, s.StartProgress, s.EndProgress, "section %d", i)
		if i > 0 {
			assert.InDelta(t, table.Sections[i-1].EndProgress, s.StartProgress, 1e-9,
				"sections %d/%d must be contiguous", i-1, i)
		}
	}
	assert.Greater(t, table.TotalLength, 0.0)
}

func TestThreePointLoopScenario(t *testing.T) {
	pts, loops := threePointTrack()
	table := BuildSectionTable(pts, loops, false)

	require.Len(t, table.Sections, 3)
	assert.Equal(t, SectionSpline, table.Sections[0].Kind)
	assert.Equal(t, SectionLoop, table.Sections[1].Kind)
	assert.Equal(t, SectionSpline, table.Sections[2].Kind)

	// Sampling the loop section at local t=0.5 is the apex: 2*radius
	// above the loop entry height.
	loopSec := table.Sections[1]
	mid := (loopSec.StartProgress + loopSec.EndProgress) / 2
	pose, ok := table.SampleAt(mid)
	require.True(t, ok)
	assert.InDelta(t, loopSec.Frame.Entry.Y+16, pose.Position.Y, 1e-6)
}

func TestLoopPitchOffsetsLaterSpline(t *testing.T) {
	pts, _ := threePointTrack()
	loops := []LoopSegment{{ID: "l1", EntryPointID: "b", Radius: 8, Pitch: 2}}
	table := BuildSectionTable(pts, loops, false)
	require.Len(t, table.Sections, 3)

	// The spline span after the loop replays the accumulated forward
	// displacement: its start sits pitch units down-track of the raw
	// curve point.
	after := table.Sections[2]
	pose, ok := table.SampleAt(after.StartProgress)
	require.True(t, ok)
	raw := table.Curve().PointAt(after.T0)
	assert.InDelta(t, raw.X+2, pose.Position.X, 1e-6)
	assert.InDelta(t, raw.Y, pose.Position.Y, 1e-6)
}

func TestOrphanLoopSegmentIgnored(t *testing.T) {
	pts, _ := threePointTrack()
	loops := []LoopSegment{{ID: "l1", EntryPointID: "deleted", Radius: 8}}
	table := BuildSectionTable(pts, loops, false)

	require.Len(t, table.Sections, 2)
	for _, s := range table.Sections {
		assert.Equal(t, SectionSpline, s.Kind)
	}
}

func TestZeroRadiusLoopIgnored(t *testing.T) {
	pts, _ := threePointTrack()
	loops := []LoopSegment{{ID: "l1", EntryPointID: "b", Radius: 0}}
	table := BuildSectionTable(pts, loops, false)
	require.Len(t, table.Sections, 2)
}

func TestRebuildDeterministic(t *testing.T) {
	pts, loops := threePointTrack()
	a := BuildSectionTable(pts, loops, false)
	b := BuildSectionTable(pts, loops, false)

	require.Equal(t, len(a.Sections), len(b.Sections))
	for i := range a.Sections {
		assert.Equal(t, a.Sections[i].StartProgress, b.Sections[i].StartProgress)
		assert.Equal(t, a.Sections[i].EndProgress, b.Sections[i].EndProgress)
	}
}

func TestSampleClampsProgress(t *testing.T) {
	pts, _ := threePointTrack()
	table := BuildSectionTable(pts, nil, false)

	end, ok := table.SampleAt(1.5)
	require.True(t, ok)
	ceil, ok := table.SampleAt(0.9999)
	require.True(t, ok)
	assert.InDelta(t, ceil.Position.X, end.Position.X, 1e-9)

	neg, ok := table.SampleAt(-0.5)
	require.True(t, ok)
	zero, ok := table.SampleAt(0)
	require.True(t, ok)
	assert.InDelta(t, zero.Position.X, neg.Position.X, 1e-9)
}

func TestEmptyTable(t *testing.T) {
	table := BuildSectionTable(nil, nil, false)
	assert.Empty(t, table.Sections)
	_, ok := table.SampleAt(0.5)
	assert.False(t, ok)

	single := BuildSectionTable([]TrackPoint{{ID: "a"}}, nil, false)
	assert.Empty(t, single.Sections)
}

func TestSplineUpIsGravityAligned(t *testing.T) {
	pts, _ := threePointTrack()
	table := BuildSectionTable(pts, nil, false)

	pose, ok := table.SampleAt(0.3)
	require.True(t, ok)
	assert.InDelta(t, 1.0, pose.Up.Len(), 1e-9)
	assert.InDelta(t, 0.0, pose.Up.Dot(pose.Tangent), 1e-9)
	assert.Greater(t, pose.Up.Y, 0.0)
}
