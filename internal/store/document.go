package store

import (
	"github.com/samber/lo"

	"coaster-studio/internal/common"
	"coaster-studio/internal/geometry"
)

// TrackDocument is the persisted/export format for a track definition. The
// field layout is a compatibility contract; loaders must tolerate loop
// segments whose entryPointId no longer exists and an empty loopSegments
// list.
type TrackDocument struct {
	TrackPoints      []PointRecord `json:"trackPoints"`
	LoopSegments     []LoopRecord  `json:"loopSegments"`
	IsLooped         bool          `json:"isLooped"`
	HasChainLift     bool          `json:"hasChainLift"`
	ShowWoodSupports bool          `json:"showWoodSupports"`
}

type PointRecord struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Tilt     float64    `json:"tilt"`
}

type LoopRecord struct {
	ID           string  `json:"id"`
	EntryPointID string  `json:"entryPointId"`
	Radius       float64 `json:"radius"`
	Pitch        float64 `json:"pitch"`
}

// NewTrackDocument captures track geometry into the persisted form.
func NewTrackDocument(
	points []geometry.TrackPoint,
	loops []geometry.LoopSegment,
	looped, chainLift, woodSupports bool,
) TrackDocument {
	return TrackDocument{
		TrackPoints: lo.Map(points, func(p geometry.TrackPoint, _ int) PointRecord {
			return PointRecord{
				ID:       p.ID,
				Position: [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
				Tilt:     p.Tilt,
			}
		}),
		LoopSegments: lo.Map(loops, func(l geometry.LoopSegment, _ int) LoopRecord {
			return LoopRecord{
				ID:           l.ID,
				EntryPointID: l.EntryPointID,
				Radius:       l.Radius,
				Pitch:        l.Pitch,
			}
		}),
		IsLooped:         looped,
		HasChainLift:     chainLift,
		ShowWoodSupports: woodSupports,
	}
}

// Points converts the persisted records back to track points.
func (d TrackDocument) Points() []geometry.TrackPoint {
	return lo.Map(d.TrackPoints, func(r PointRecord, _ int) geometry.TrackPoint {
		return geometry.TrackPoint{
			ID:       r.ID,
			Position: common.Vec3{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
			Tilt:     r.Tilt,
		}
	})
}

// Loops converts the persisted records back to loop segments. Orphan entry
// references are kept as-is; the section builder ignores them.
func (d TrackDocument) Loops() []geometry.LoopSegment {
	return lo.Map(d.LoopSegments, func(r LoopRecord, _ int) geometry.LoopSegment {
		return geometry.LoopSegment{
			ID:           r.ID,
			EntryPointID: r.EntryPointID,
			Radius:       r.Radius,
			Pitch:        r.Pitch,
		}
	})
}
