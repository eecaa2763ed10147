package navigation

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/nameisalii/4wel/common/utils/vector"
	"github.com/nameisalii/4wel/kinematics"
)

// scalars per robot before peer slots: x, y, theta, v, the four wheel
// angles and the target delta.
const baseObservationDim = 10

// SpaceSpec describes the shape and per-element bounds of an
// observation or action vector.
type SpaceSpec struct {
	Shape      int
	LowerBound *mat.VecDense
	UpperBound *mat.VecDense
}

// PerRobotObservationDim is the observation width of one robot given
// the robot count: the base scalars plus one (dx, dy) slot per peer.
func PerRobotObservationDim(numRobots int) int {
	return baseObservationDim + 2*(numRobots-1)
}

// ObservationDim is the total width of the flat observation vector.
func ObservationDim(numRobots int) int {
	return numRobots * PerRobotObservationDim(numRobots)
}

// ActionDim is the total width of the flat action vector: curvature
// and velocity per robot.
func ActionDim(numRobots int) int {
	return 2 * numRobots
}

// buildObservation assembles the flat observation vector. Robots
// appear in index order; each robot's peer slots also follow index
// order, skipping the robot itself, so every slot keeps its meaning
// for the whole episode.
func buildObservation(states []kinematics.State, targets []vector.Vector2) *mat.VecDense {
	numRobots := len(states)
	perRobot := PerRobotObservationDim(numRobots)
	observation := mat.NewVecDense(ObservationDim(numRobots), nil)

	for i, state := range states {
		offset := i * perRobot

		observation.SetVec(offset+0, state.X)
		observation.SetVec(offset+1, state.Y)
		observation.SetVec(offset+2, state.Theta)
		observation.SetVec(offset+3, state.V)
		observation.SetVec(offset+4, state.DeltaFL)
		observation.SetVec(offset+5, state.DeltaFR)
		observation.SetVec(offset+6, state.DeltaRL)
		observation.SetVec(offset+7, state.DeltaRR)
		observation.SetVec(offset+8, targets[i].GetX()-state.X)
		observation.SetVec(offset+9, targets[i].GetY()-state.Y)

		slot := offset + baseObservationDim
		for j, peer := range states {
			if j == i {
				continue
			}

			observation.SetVec(slot+0, peer.X-state.X)
			observation.SetVec(slot+1, peer.Y-state.Y)
			slot += 2
		}
	}

	return observation
}

func observationSpec(config Config) SpaceSpec {
	numRobots := config.NumRobots
	perRobot := PerRobotObservationDim(numRobots)
	dim := ObservationDim(numRobots)

	lower := mat.NewVecDense(dim, nil)
	upper := mat.NewVecDense(dim, nil)

	inf := math.Inf(1)

	for i := 0; i < numRobots; i++ {
		offset := i * perRobot

		// positions and deltas are unbounded in principle, if arena
		// sized in practice
		for k := 0; k < perRobot; k++ {
			lower.SetVec(offset+k, -inf)
			upper.SetVec(offset+k, inf)
		}

		lower.SetVec(offset+2, -math.Pi)
		upper.SetVec(offset+2, math.Pi)

		lower.SetVec(offset+3, -config.Robot.MaxVelocity)
		upper.SetVec(offset+3, config.Robot.MaxVelocity)

		for k := 4; k < 8; k++ {
			lower.SetVec(offset+k, -config.Robot.MaxSteeringAngle)
			upper.SetVec(offset+k, config.Robot.MaxSteeringAngle)
		}
	}

	return SpaceSpec{Shape: dim, LowerBound: lower, UpperBound: upper}
}

func actionSpec(config Config) SpaceSpec {
	dim := ActionDim(config.NumRobots)

	lower := mat.NewVecDense(dim, nil)
	upper := mat.NewVecDense(dim, nil)

	for i := 0; i < config.NumRobots; i++ {
		lower.SetVec(2*i+0, -kinematics.MaxCurvature)
		upper.SetVec(2*i+0, kinematics.MaxCurvature)
		lower.SetVec(2*i+1, -kinematics.MaxCommandVelocity)
		upper.SetVec(2*i+1, kinematics.MaxCommandVelocity)
	}

	return SpaceSpec{Shape: dim, LowerBound: lower, UpperBound: upper}
}
