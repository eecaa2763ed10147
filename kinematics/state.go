package kinematics

import (
	"math"

	"github.com/nameisalii/4wel/common/utils/vector"
)

// State is the full kinematic state of one four-wheel-steering robot.
// X/Y are meters in the world frame, Theta is the heading in radians
// wrapped to [-Pi, Pi], V is the body linear velocity in m/s.
// The four Delta values are the wheel steering angles in radians
// (front-left, front-right, rear-left, rear-right). Wheel angles are
// derived from the commanded curvature through the ICR constraint and
// are never set directly by a caller.
type State struct {
	X     float64
	Y     float64
	Theta float64
	V     float64

	DeltaFL float64
	DeltaFR float64
	DeltaRL float64
	DeltaRR float64
}

func MakeState(x float64, y float64, theta float64) State {
	return State{
		X:     x,
		Y:     y,
		Theta: WrapHeading(theta),
	}
}

func (s State) Position() vector.Vector2 {
	return vector.MakeVector2(s.X, s.Y)
}

// Deltas returns the wheel steering angles in fl, fr, rl, rr order.
func (s State) Deltas() [4]float64 {
	return [4]float64{s.DeltaFL, s.DeltaFR, s.DeltaRL, s.DeltaRR}
}

// SteeringMagnitude is the summed absolute wheel steering angle,
// used as the actuation-effort measure.
func (s State) SteeringMagnitude() float64 {
	return math.Abs(s.DeltaFL) + math.Abs(s.DeltaFR) +
		math.Abs(s.DeltaRL) + math.Abs(s.DeltaRR)
}

// WrapHeading brings an accumulated heading back into [-Pi, Pi].
func WrapHeading(rad float64) float64 {
	wrapped := math.Mod(rad+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
