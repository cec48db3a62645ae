package physics

import "math"

const (
	Gravity        = 9.81
	LiftZoneEnd    = 0.08 // Progress below this is the lift hill.
	BrakeZoneStart = 0.9  // Progress above this is the brake run.

	LiftSpeedStep = 0.08
	MaxLiftSpeed  = 4.0
	MaxSpeed      = 28.0

	// Rolling friction per tick; stronger on flat and uphill spans.
	DownhillFriction = 0.998
	LevelFriction    = 0.99

	BrakeFactor    = 0.94
	FixedTimeScale = 0.00035

	ProgressCeiling = 0.9999
	MinRideSpeed    = 0.5
)

// RideState is the per-vehicle simulation state, mutated once per animation
// tick while riding and frozen otherwise.
type RideState struct {
	Progress   float64
	Speed      float64
	LastHeight float64
	Riding     bool
}

// Start begins a ride from progress 0. Refused (returns false) when the
// track has fewer than 2 points.
func (r *RideState) Start(pointCount int, startHeight float64) bool {
	if pointCount < 2 {
		return false
	}
	r.Progress = 0
	r.Speed = 0
	r.LastHeight = startHeight
	r.Riding = true
	return true
}

// Stop freezes the ride. Progress is left where it is.
func (r *RideState) Stop() {
	r.Riding = false
}

// Tick advances one simulation step given the sampled track height at the
// current progress. Explicit Euler with an energy-conservation speed update;
// the lift hill and brake zones deliberately break conservation.
//
// Progress holds at the ceiling rather than auto-stopping; the caller
// decides when the ride ends.
func (r *RideState) Tick(height, rideSpeed float64) {
	if !r.Riding {
		return
	}
	if rideSpeed < MinRideSpeed {
		rideSpeed = MinRideSpeed
	}

	if r.Progress < LiftZoneEnd {
		// Chain lift: ramp toward the capped lift speed, ignoring height.
		r.Speed += LiftSpeedStep
		if r.Speed > MaxLiftSpeed {
			r.Speed = MaxLiftSpeed
		}
	} else {
		heightDelta := r.LastHeight - height // Positive when descending.
		energy := r.Speed*r.Speed + 2*Gravity*heightDelta
		if energy < 0 {
			energy = 0
		}
		r.Speed = math.Sqrt(energy)

		if math.Atan2(heightDelta, 1) <= 0 {
			r.Speed *= LevelFriction
		} else {
			r.Speed *= DownhillFriction
		}
		if r.Speed > MaxSpeed {
			r.Speed = MaxSpeed
		}
	}

	if r.Progress > BrakeZoneStart {
		r.Speed *= BrakeFactor
	}

	r.LastHeight = height

	p := r.Progress + r.Speed*FixedTimeScale*rideSpeed
	if p > ProgressCeiling {
		p = ProgressCeiling
	}
	r.Progress = p
}
