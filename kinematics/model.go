package kinematics

import (
	"math"

	"github.com/nameisalii/4wel/common/utils/number"
	"github.com/nameisalii/4wel/common/utils/vector"
)

// curvatureEpsilon is the threshold below which a commanded curvature
// is treated as straight-line motion.
const curvatureEpsilon = 1e-6

// steeringEpsilon is the threshold below which a wheel angle carries
// no usable turning information.
const steeringEpsilon = 1e-3

// Model advances a four-wheel-steering robot state under the ICR
// constraint: the instantaneous center of rotation is confined to the
// robot's lateral axis, at signed distance 1/curvature from the body
// center. All methods are pure; the model holds only parameters.
type Model struct {
	params Params
}

func NewModel(params Params) Model {
	return Model{params: params}
}

func (m Model) Params() Params {
	return m.params
}

// WheelAngles solves the ICR constraint for the four wheel steering
// angles matching the given curvature, in fl, fr, rl, rr order.
// Zero curvature yields four zero angles.
func (m Model) WheelAngles(curvature float64) [4]float64 {
	if math.Abs(curvature) < curvatureEpsilon {
		return [4]float64{}
	}

	r := 1.0 / curvature
	halfL := m.params.Wheelbase / 2
	halfW := m.params.TrackWidth / 2

	return [4]float64{
		wheelAngle(halfL, r-halfW),
		wheelAngle(halfL, r+halfW),
		wheelAngle(-halfL, r-halfW),
		wheelAngle(-halfL, r+halfW),
	}
}

// wheelAngle points a wheel at the ICR, keeping the angle in the
// lateral half-plane (-Pi/2, Pi/2] so that left and right turns come
// out symmetric.
func wheelAngle(longitudinal float64, lever float64) float64 {
	angle := math.Atan2(longitudinal, lever)
	if angle > math.Pi/2 {
		angle -= math.Pi
	} else if angle < -math.Pi/2 {
		angle += math.Pi
	}
	return angle
}

// EffectiveCurvature inverts the ICR relation on the achieved wheel
// angles: each wheel with a non-negligible angle votes for a turning
// radius, and the resulting curvatures are averaged. Returns 0 when
// every wheel is straight.
//
// The inversion per wheel follows from WheelAngles:
// tan(delta) = longitudinal / (r - lateral), hence
// r = longitudinal/tan(delta) + lateral.
func (m Model) EffectiveCurvature(state State) float64 {
	halfL := m.params.Wheelbase / 2
	halfW := m.params.TrackWidth / 2

	wheels := [4]struct {
		delta        float64
		longitudinal float64
		lateral      float64
	}{
		{state.DeltaFL, halfL, halfW},
		{state.DeltaFR, halfL, -halfW},
		{state.DeltaRL, -halfL, halfW},
		{state.DeltaRR, -halfL, -halfW},
	}

	sum := 0.0
	votes := 0

	for _, wheel := range wheels {
		if math.Abs(wheel.delta) < steeringEpsilon {
			continue
		}

		r := wheel.longitudinal/math.Tan(wheel.delta) + wheel.lateral
		if number.IsZero(r) {
			continue
		}

		sum += 1.0 / r
		votes++
	}

	if votes == 0 {
		return 0
	}

	return sum / float64(votes)
}

// Advance computes the next state for one time step of dt seconds.
// The control input is clamped, the wheels are rate-limited toward the
// ICR solution of the commanded curvature, the body velocity is
// acceleration-limited toward the commanded velocity, and the pose is
// integrated with the curvature actually achieved by the wheels, not
// the commanded one. Callers own the state; Advance never mutates its
// arguments.
func (m Model) Advance(state State, control Control, dt float64) State {
	control = control.Clamped()

	targets := m.WheelAngles(control.Curvature)
	deltas := state.Deltas()

	maxDeltaChange := m.params.MaxSteeringRate * dt
	for i := range deltas {
		change := number.Clamp(targets[i]-deltas[i], -maxDeltaChange, maxDeltaChange)
		deltas[i] = number.Clamp(
			deltas[i]+change,
			-m.params.MaxSteeringAngle,
			m.params.MaxSteeringAngle,
		)
	}

	maxVelocityChange := m.params.MaxAcceleration * dt
	velocityChange := number.Clamp(control.Velocity-state.V, -maxVelocityChange, maxVelocityChange)
	velocity := number.Clamp(
		state.V+velocityChange,
		-m.params.MaxVelocity,
		m.params.MaxVelocity,
	)

	next := State{
		X:       state.X,
		Y:       state.Y,
		Theta:   state.Theta,
		V:       velocity,
		DeltaFL: deltas[0],
		DeltaFR: deltas[1],
		DeltaRL: deltas[2],
		DeltaRR: deltas[3],
	}

	// Zero velocity with steered wheels turns the wheels in place but
	// moves nothing.
	effective := m.EffectiveCurvature(next)

	next.X += velocity * math.Cos(state.Theta) * dt
	next.Y += velocity * math.Sin(state.Theta) * dt
	next.Theta = WrapHeading(state.Theta + velocity*effective*dt)

	return next
}

// WheelPositions returns the world-frame wheel centers in fl, fr, rl,
// rr order.
func (m Model) WheelPositions(state State) [4]vector.Vector2 {
	halfL := m.params.Wheelbase / 2
	halfW := m.params.TrackWidth / 2

	offsets := [4]vector.Vector2{
		vector.MakeVector2(halfL, halfW),
		vector.MakeVector2(halfL, -halfW),
		vector.MakeVector2(-halfL, halfW),
		vector.MakeVector2(-halfL, -halfW),
	}

	var positions [4]vector.Vector2
	for i, offset := range offsets {
		positions[i] = state.Position().Add(offset.Rotate(state.Theta))
	}

	return positions
}

// ICRPosition returns the world-frame instantaneous center of
// rotation. ok is false while the robot is driving straight and the
// ICR is at infinity.
func (m Model) ICRPosition(state State) (icr vector.Vector2, ok bool) {
	effective := m.EffectiveCurvature(state)
	if number.IsZero(effective) {
		return vector.MakeNullVector2(), false
	}

	// The ICR sits on the body's lateral axis at signed distance
	// 1/curvature.
	lateral := vector.MakeVector2(0, 1.0/effective).Rotate(state.Theta)
	return state.Position().Add(lateral), true
}
