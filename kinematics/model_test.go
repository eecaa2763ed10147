package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 0.1

func TestWheelAnglesSatisfyICRConstraint(t *testing.T) {
	model := NewModel(DefaultParams())
	halfL := model.Params().Wheelbase / 2
	halfW := model.Params().TrackWidth / 2

	offsets := [4]struct{ longitudinal, lateral float64 }{
		{halfL, halfW},
		{halfL, -halfW},
		{-halfL, halfW},
		{-halfL, -halfW},
	}

	for _, curvature := range []float64{-2.0, -1.0, -0.5, -0.1, 0.1, 0.5, 1.0, 2.0} {
		angles := model.WheelAngles(curvature)
		r := 1.0 / curvature

		// Each wheel angle, projected back through its offset, must
		// reproduce the same turning radius.
		for i, wheel := range offsets {
			recovered := wheel.longitudinal/math.Tan(angles[i]) + wheel.lateral
			assert.InDelta(t, r, recovered, 1e-9,
				"curvature %v wheel %d", curvature, i)
		}
	}
}

func TestWheelAnglesZeroCurvature(t *testing.T) {
	model := NewModel(DefaultParams())

	assert.Equal(t, [4]float64{}, model.WheelAngles(0))
	assert.Equal(t, [4]float64{}, model.WheelAngles(1e-9))
	assert.Equal(t, [4]float64{}, model.WheelAngles(-1e-9))
}

func TestWheelAnglesLeftRightSymmetry(t *testing.T) {
	model := NewModel(DefaultParams())

	left := model.WheelAngles(1.0)
	right := model.WheelAngles(-1.0)

	for i := range left {
		assert.InDelta(t, left[i], -right[i], 1e-12, "wheel %d", i)
		assert.LessOrEqual(t, math.Abs(left[i]), math.Pi/2)
	}
}

func TestEffectiveCurvatureInvertsWheelAngles(t *testing.T) {
	model := NewModel(DefaultParams())

	for _, curvature := range []float64{-2.0, -0.7, -0.25, 0.25, 0.7, 2.0} {
		angles := model.WheelAngles(curvature)
		state := State{
			DeltaFL: angles[0],
			DeltaFR: angles[1],
			DeltaRL: angles[2],
			DeltaRR: angles[3],
		}

		assert.InDelta(t, curvature, model.EffectiveCurvature(state), 1e-9)
	}
}

func TestEffectiveCurvatureStraightWheels(t *testing.T) {
	model := NewModel(DefaultParams())

	assert.Equal(t, 0.0, model.EffectiveCurvature(State{}))
}

func TestAdvanceZeroControlNoDrift(t *testing.T) {
	model := NewModel(DefaultParams())
	state := State{X: 1, Y: -2, Theta: 0.5, V: 1.5}

	for i := 0; i < 100; i++ {
		state = model.Advance(state, Control{}, dt)
	}

	assert.InDelta(t, 0.0, state.V, 1e-12)
	assert.Equal(t, [4]float64{}, state.Deltas())

	// fully stopped: no further pose change
	settled := model.Advance(state, Control{}, dt)
	assert.Equal(t, state, settled)
}

func TestAdvanceSteeringRateLimit(t *testing.T) {
	model := NewModel(DefaultParams())
	params := model.Params()

	// Full-lock command from straight wheels: every target is farther
	// away than one step of servo travel, so each wheel moves by
	// exactly MaxSteeringRate*dt toward it.
	next := model.Advance(State{}, Control{Curvature: 2.0, Velocity: 0}, dt)

	step := params.MaxSteeringRate * dt
	targets := model.WheelAngles(2.0)
	deltas := next.Deltas()

	for i := range deltas {
		require.Greater(t, math.Abs(targets[i]), step, "wheel %d target too close", i)
		assert.InDelta(t, step*sign(targets[i]), deltas[i], 1e-12, "wheel %d", i)
	}
}

func TestAdvanceAccelerationLimit(t *testing.T) {
	model := NewModel(DefaultParams())

	next := model.Advance(State{}, Control{Velocity: 2.0}, dt)
	assert.InDelta(t, model.Params().MaxAcceleration*dt, next.V, 1e-12)

	braking := model.Advance(State{V: 2.0}, Control{Velocity: -2.0}, dt)
	assert.InDelta(t, 2.0-model.Params().MaxAcceleration*dt, braking.V, 1e-12)
}

func TestAdvanceClampsControl(t *testing.T) {
	model := NewModel(DefaultParams())

	// commanded velocity far beyond the valid range behaves like the
	// clamped command
	wild := model.Advance(State{}, Control{Curvature: 100, Velocity: 100}, dt)
	clamped := model.Advance(State{}, Control{Curvature: MaxCurvature, Velocity: MaxCommandVelocity}, dt)

	assert.Equal(t, clamped, wild)
}

func TestAdvanceStraightRunDistance(t *testing.T) {
	model := NewModel(DefaultParams())
	state := State{}

	for i := 0; i < 50; i++ {
		state = model.Advance(state, Control{Curvature: 0, Velocity: 1.0}, dt)
	}

	// velocity ramps 0.2, 0.4, 0.6, 0.8, 1.0 then holds: 4.8 m total
	assert.InDelta(t, 4.8, state.X, 1e-9)
	assert.InDelta(t, 0.0, state.Y, 1e-9)
	assert.InDelta(t, 0.0, state.Theta, 1e-9)
	assert.InDelta(t, 1.0, state.V, 1e-12)
}

func TestAdvanceZeroVelocityTurnsWheelsNotBody(t *testing.T) {
	model := NewModel(DefaultParams())
	state := State{X: 3, Y: 4, Theta: 1}

	for i := 0; i < 20; i++ {
		state = model.Advance(state, Control{Curvature: 1.0, Velocity: 0}, dt)
	}

	// wheels have approached their targets, the pose has not moved
	assert.NotEqual(t, [4]float64{}, state.Deltas())
	assert.InDelta(t, 3.0, state.X, 1e-12)
	assert.InDelta(t, 4.0, state.Y, 1e-12)
	assert.InDelta(t, 1.0, state.Theta, 1e-12)
}

func TestAdvanceHeadingWraps(t *testing.T) {
	model := NewModel(DefaultParams())

	// Drive a sustained left turn long enough to push the accumulated
	// heading past Pi several times over.
	state := State{}
	for i := 0; i < 2000; i++ {
		state = model.Advance(state, Control{Curvature: 2.0, Velocity: 2.0}, dt)
		assert.GreaterOrEqual(t, state.Theta, -math.Pi)
		assert.LessOrEqual(t, state.Theta, math.Pi)
	}
}

func TestWrapHeading(t *testing.T) {
	assert.InDelta(t, 0.0, WrapHeading(2*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi+0.1, WrapHeading(math.Pi+0.1), 1e-12)
	assert.InDelta(t, -math.Pi+0.1, WrapHeading(-3*math.Pi+0.1), 1e-12)
	assert.InDelta(t, math.Pi-0.1, WrapHeading(-math.Pi-0.1), 1e-12)
	assert.InDelta(t, 1.0, WrapHeading(1.0), 1e-12)
}

func TestWheelPositions(t *testing.T) {
	model := NewModel(DefaultParams())
	halfL := model.Params().Wheelbase / 2
	halfW := model.Params().TrackWidth / 2

	positions := model.WheelPositions(State{X: 1, Y: 2})
	assert.InDelta(t, 1+halfL, positions[0].GetX(), 1e-12)
	assert.InDelta(t, 2+halfW, positions[0].GetY(), 1e-12)
	assert.InDelta(t, 1-halfL, positions[3].GetX(), 1e-12)
	assert.InDelta(t, 2-halfW, positions[3].GetY(), 1e-12)

	// A quarter turn of heading swaps the axes.
	rotated := model.WheelPositions(State{Theta: math.Pi / 2})
	assert.InDelta(t, -halfW, rotated[0].GetX(), 1e-12)
	assert.InDelta(t, halfL, rotated[0].GetY(), 1e-12)
}

func TestICRPosition(t *testing.T) {
	model := NewModel(DefaultParams())

	_, ok := model.ICRPosition(State{})
	assert.False(t, ok)

	// Steady-state wheels for curvature 1 at heading 0: the ICR sits
	// one meter to the robot's left.
	angles := model.WheelAngles(1.0)
	state := State{
		X:       2,
		Y:       3,
		DeltaFL: angles[0],
		DeltaFR: angles[1],
		DeltaRL: angles[2],
		DeltaRR: angles[3],
	}

	icr, ok := model.ICRPosition(state)
	require.True(t, ok)
	assert.InDelta(t, 2.0, icr.GetX(), 1e-9)
	assert.InDelta(t, 4.0, icr.GetY(), 1e-9)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
