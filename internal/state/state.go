package state

import (
	"github.com/google/uuid"

	"coaster-studio/internal/common"
	"coaster-studio/internal/geometry"
	"coaster-studio/internal/physics"
	"coaster-studio/internal/store"
)

// Mode is the top-level interaction mode.
type Mode string

const (
	ModeEdit Mode = "edit"
	ModeRide Mode = "ride"
)

// ChangeKind tags change notifications for observers.
type ChangeKind int

const (
	ChangeTrack ChangeKind = iota // Points, loop segments, or loop flag edited.
	ChangeRide                    // Ride started, stopped, or advanced.
	ChangeMode
)

type Change struct {
	Kind ChangeKind
}

// TrackState is the single owner of track and ride data. All mutation goes
// through its methods; every geometry edit rebuilds the section-table
// snapshot synchronously so samplers never see partial state.
//
// Frame-driven and single-threaded: not safe for concurrent use.
type TrackState struct {
	points []geometry.TrackPoint
	loops  []geometry.LoopSegment
	looped bool

	mode      Mode
	rideSpeed float64
	ride      physics.RideState

	chainLift    bool
	woodSupports bool

	table *geometry.SectionTable
	subs  []chan Change
}

func NewTrackState() *TrackState {
	return &TrackState{
		mode:      ModeEdit,
		rideSpeed: 1.0,
		table:     geometry.BuildSectionTable(nil, nil, false),
	}
}

// Subscribe registers an observer channel for change notifications. Sends
// are non-blocking; a slow observer drops events.
func (s *TrackState) Subscribe() <-chan Change {
	ch := make(chan Change, 16)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *TrackState) notify(kind ChangeKind) {
	for _, ch := range s.subs {
		select {
		case ch <- Change{Kind: kind}:
		default:
		}
	}
}

// rebuild swaps in a fresh section-table snapshot. Pure function of the
// current points, loops, and loop flag.
func (s *TrackState) rebuild() {
	s.table = geometry.BuildSectionTable(s.points, s.loops, s.looped)
}

// Points returns a copy of the control points in traversal order.
func (s *TrackState) Points() []geometry.TrackPoint {
	out := make([]geometry.TrackPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Loops returns a copy of the declared loop segments.
func (s *TrackState) Loops() []geometry.LoopSegment {
	out := make([]geometry.LoopSegment, len(s.loops))
	copy(out, s.loops)
	return out
}

func (s *TrackState) IsLooped() bool                { return s.looped }
func (s *TrackState) Mode() Mode                    { return s.mode }
func (s *TrackState) RideSpeed() float64            { return s.rideSpeed }
func (s *TrackState) Ride() physics.RideState       { return s.ride }
func (s *TrackState) IsRiding() bool                { return s.ride.Riding }
func (s *TrackState) RideProgress() float64         { return s.ride.Progress }
func (s *TrackState) Table() *geometry.SectionTable { return s.table }
func (s *TrackState) HasChainLift() bool            { return s.chainLift }
func (s *TrackState) ShowWoodSupports() bool        { return s.woodSupports }
func (s *TrackState) SetChainLift(v bool)           { s.chainLift = v }
func (s *TrackState) SetWoodSupports(v bool)        { s.woodSupports = v }

func (s *TrackState) SetMode(m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	s.notify(ChangeMode)
}

// SetRideSpeed sets the user ride-speed multiplier, floored at the minimum.
func (s *TrackState) SetRideSpeed(v float64) {
	if v < physics.MinRideSpeed {
		v = physics.MinRideSpeed
	}
	s.rideSpeed = v
}

// AddPoint appends a control point and returns it.
func (s *TrackState) AddPoint(pos common.Vec3) geometry.TrackPoint {
	pt := geometry.TrackPoint{ID: uuid.NewString(), Position: pos}
	s.points = append(s.points, pt)
	s.rebuild()
	s.notify(ChangeTrack)
	return pt
}

// MovePoint updates a point's position. Returns false for an unknown id.
func (s *TrackState) MovePoint(id string, pos common.Vec3) bool {
	for i := range s.points {
		if s.points[i].ID == id {
			s.points[i].Position = pos
			s.rebuild()
			s.notify(ChangeTrack)
			return true
		}
	}
	return false
}

// SetTilt updates a point's banking tilt. Returns false for an unknown id.
func (s *TrackState) SetTilt(id string, tilt float64) bool {
	for i := range s.points {
		if s.points[i].ID == id {
			s.points[i].Tilt = tilt
			s.rebuild()
			s.notify(ChangeTrack)
			return true
		}
	}
	return false
}

// RemovePoint deletes a control point. Loop segments anchored to it become
// orphans and are ignored by the section builder from then on.
func (s *TrackState) RemovePoint(id string) bool {
	for i := range s.points {
		if s.points[i].ID == id {
			s.points = append(s.points[:i], s.points[i+1:]...)
			s.rebuild()
			s.notify(ChangeTrack)
			return true
		}
	}
	return false
}

// InsertLoop declares a vertical loop at an existing control point, one
// segment per point. The new slice is built, then swapped: a single atomic
// edit with one rebuild and one notification.
func (s *TrackState) InsertLoop(entryPointID string, radius, pitch float64) (geometry.LoopSegment, bool) {
	if radius <= 0 {
		return geometry.LoopSegment{}, false
	}
	found := false
	for _, pt := range s.points {
		if pt.ID == entryPointID {
			found = true
			break
		}
	}
	if !found {
		return geometry.LoopSegment{}, false
	}
	for _, ls := range s.loops {
		if ls.EntryPointID == entryPointID {
			return geometry.LoopSegment{}, false
		}
	}

	seg := geometry.LoopSegment{
		ID:           uuid.NewString(),
		EntryPointID: entryPointID,
		Radius:       radius,
		Pitch:        pitch,
	}
	next := make([]geometry.LoopSegment, len(s.loops), len(s.loops)+1)
	copy(next, s.loops)
	s.loops = append(next, seg)
	s.rebuild()
	s.notify(ChangeTrack)
	return seg, true
}

// RemoveLoop deletes a declared loop segment.
func (s *TrackState) RemoveLoop(id string) bool {
	for i := range s.loops {
		if s.loops[i].ID == id {
			s.loops = append(s.loops[:i], s.loops[i+1:]...)
			s.rebuild()
			s.notify(ChangeTrack)
			return true
		}
	}
	return false
}

func (s *TrackState) SetLooped(looped bool) {
	if s.looped == looped {
		return
	}
	s.looped = looped
	s.rebuild()
	s.notify(ChangeTrack)
}

// Clear removes all points and loop segments and stops any ride.
func (s *TrackState) Clear() {
	s.points = nil
	s.loops = nil
	s.ride = physics.RideState{}
	s.rebuild()
	s.notify(ChangeTrack)
}

// StartRide begins riding from progress 0. Refused when the track has fewer
// than 2 points; the mode is left unchanged in that case.
func (s *TrackState) StartRide() bool {
	startHeight := 0.0
	if pose, ok := s.table.SampleAt(0); ok {
		startHeight = pose.Position.Y
	}
	if !s.ride.Start(len(s.points), startHeight) {
		return false
	}
	s.SetMode(ModeRide)
	s.notify(ChangeRide)
	return true
}

// StopRide freezes the ride and returns to edit mode.
func (s *TrackState) StopRide() {
	s.ride.Stop()
	s.SetMode(ModeEdit)
	s.notify(ChangeRide)
}

// TickRide advances the ride one simulation step and returns the sampled
// pose for the vehicle. No-ops (returns false) when not riding or when the
// track has no sections.
func (s *TrackState) TickRide() (geometry.Pose, bool) {
	if !s.ride.Riding {
		return geometry.Pose{}, false
	}
	pose, ok := s.table.SampleAt(s.ride.Progress)
	if !ok {
		return geometry.Pose{}, false
	}
	s.ride.Tick(pose.Position.Y, s.rideSpeed)
	s.notify(ChangeRide)
	return pose, true
}

// Document captures the current track as a persistable document.
func (s *TrackState) Document() store.TrackDocument {
	return store.NewTrackDocument(s.points, s.loops, s.looped, s.chainLift, s.woodSupports)
}

// ApplyDocument replaces the whole track from a persisted document as one
// atomic edit. Any ride in progress is stopped.
func (s *TrackState) ApplyDocument(doc store.TrackDocument) {
	s.points = doc.Points()
	s.loops = doc.Loops()
	s.looped = doc.IsLooped
	s.chainLift = doc.HasChainLift
	s.woodSupports = doc.ShowWoodSupports
	s.ride = physics.RideState{}
	s.mode = ModeEdit
	s.rebuild()
	s.notify(ChangeTrack)
}
