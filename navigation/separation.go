package navigation

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/nameisalii/4wel/kinematics"
)

// robotDisc is one robot footprint in the broadphase tree.
type robotDisc struct {
	index int
	rect  rtreego.Rect
}

func (disc *robotDisc) Bounds() rtreego.Rect {
	return disc.rect
}

// separationReport is the outcome of one pairwise proximity scan over
// the post-step robot states.
type separationReport struct {
	// collided[i] is true when robot i sits closer than the collision
	// radius to any other robot.
	collided []bool
	// minSeparation is the smallest pairwise distance seen within the
	// scan range, +Inf when every pair is comfortably apart.
	minSeparation float64
	// penalty sums the separation terms of every pair in range. Each
	// unordered pair contributes exactly once.
	penalty float64
}

// scanSeparations finds robot pairs closer than scanRadius using an
// r-tree broadphase over the robot footprints, then checks exact
// center distances. scanRadius must cover the widest radius any
// consumer cares about (the comfort margin).
func scanSeparations(states []kinematics.State, scanRadius float64, policy RewardPolicy) separationReport {
	report := separationReport{
		collided:      make([]bool, len(states)),
		minSeparation: math.Inf(1),
	}

	if len(states) < 2 {
		return report
	}

	spatials := make([]rtreego.Spatial, len(states))
	for i, state := range states {
		bb, _ := rtreego.NewRect(
			[]float64{state.X - 0.005, state.Y - 0.005},
			[]float64{0.01, 0.01},
		)
		spatials[i] = &robotDisc{index: i, rect: bb}
	}

	tree := rtreego.NewTree(2, 8, 16, spatials...)

	for i, state := range states {
		queryRegion, _ := rtreego.NewRect(
			[]float64{state.X - scanRadius, state.Y - scanRadius},
			[]float64{2 * scanRadius, 2 * scanRadius},
		)

		matches := tree.SearchIntersect(queryRegion, func(results []rtreego.Spatial, object rtreego.Spatial) (refuse, abort bool) {
			return object == spatials[i], false // a robot does not collide with itself
		})

		for _, match := range matches {
			disc := match.(*robotDisc)
			if disc.index <= i {
				// every pair is scored once, from its lower index
				continue
			}

			distance := state.Position().Dist(states[disc.index].Position())
			if distance > scanRadius {
				// box overlap but out of circular range
				continue
			}

			if distance < report.minSeparation {
				report.minSeparation = distance
			}

			report.penalty += policy.separationTerm(distance)

			if distance < policy.collisionRadius {
				report.collided[i] = true
				report.collided[disc.index] = true
			}
		}
	}

	return report
}
