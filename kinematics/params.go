package kinematics

import (
	"math"

	"github.com/nameisalii/4wel/common/utils/number"
)

// Params are the physical limits and dimensions of the robot.
type Params struct {
	// Wheelbase is the longitudinal distance between front and rear
	// axles, in meters.
	Wheelbase float64 `json:"wheelbase"`
	// TrackWidth is the lateral distance between left and right
	// wheels, in meters.
	TrackWidth float64 `json:"trackWidth"`
	// WheelRadius in meters.
	WheelRadius float64 `json:"wheelRadius"`
	// MaxSteeringAngle bounds every wheel steering angle, in radians.
	MaxSteeringAngle float64 `json:"maxSteeringAngle"`
	// MaxSteeringRate bounds the steering servo speed, in rad/s.
	MaxSteeringRate float64 `json:"maxSteeringRate"`
	// MaxAcceleration bounds the body velocity change, in m/s².
	MaxAcceleration float64 `json:"maxAcceleration"`
	// MaxVelocity bounds the body velocity, in m/s.
	MaxVelocity float64 `json:"maxVelocity"`
}

func DefaultParams() Params {
	return Params{
		Wheelbase:        0.5,
		TrackWidth:       0.4,
		WheelRadius:      0.1,
		MaxSteeringAngle: math.Pi / 3,
		MaxSteeringRate:  0.5,
		MaxAcceleration:  2.0,
		MaxVelocity:      2.0,
	}
}

const (
	// MaxCurvature bounds the commanded curvature, in 1/m.
	MaxCurvature = 2.0
	// MaxCommandVelocity bounds the commanded velocity, in m/s.
	MaxCommandVelocity = 2.0
)

// Control is the only externally settable input: a signed curvature
// and a commanded body velocity.
type Control struct {
	Curvature float64
	Velocity  float64
}

// Clamped brings both components back into their valid ranges.
// Out-of-range inputs are clamped, never rejected.
func (c Control) Clamped() Control {
	return Control{
		Curvature: number.Clamp(c.Curvature, -MaxCurvature, MaxCurvature),
		Velocity:  number.Clamp(c.Velocity, -MaxCommandVelocity, MaxCommandVelocity),
	}
}
