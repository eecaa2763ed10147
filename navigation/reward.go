package navigation

import (
	"math"

	"github.com/nameisalii/4wel/common/utils/vector"
	"github.com/nameisalii/4wel/kinematics"
)

// RewardPolicy scores one robot's transition. It is a pure function
// of the two states and the target; no counters, no history.
type RewardPolicy struct {
	weights         RewardWeights
	successDistance float64
	safetyRadius    float64
	collisionRadius float64
}

func NewRewardPolicy(config Config) RewardPolicy {
	return RewardPolicy{
		weights:         config.Reward,
		successDistance: config.SuccessDistance,
		safetyRadius:    config.SafetyRadius,
		collisionRadius: config.CollisionRadius,
	}
}

// Score sums the distance shaping, the success bonus and the
// actuation effort penalty for one robot. Pairwise separation is not
// scored here; the environment charges each pair once per step from
// the proximity scan, so per-robot scoring cannot double-count it.
func (policy RewardPolicy) Score(
	prev kinematics.State,
	next kinematics.State,
	target vector.Vector2,
) (reward float64, success bool) {

	prevDistance := prev.Position().Dist(target)
	nextDistance := next.Position().Dist(target)

	progress := prevDistance - nextDistance
	progress = math.Max(-policy.weights.MaxProgress, math.Min(policy.weights.MaxProgress, progress))
	reward += policy.weights.Progress * progress

	if nextDistance < policy.successDistance {
		reward += policy.weights.Success
		success = true
	}

	reward -= policy.weights.Velocity * math.Abs(next.V)
	reward -= policy.weights.Steering * next.SteeringMagnitude()

	return reward, success
}

// separationTerm is the soft/hard penalty schedule for one pairwise
// distance: a fixed penalty inside the collision radius, a penalty
// growing linearly as the gap closes inside the safety radius,
// nothing outside.
func (policy RewardPolicy) separationTerm(distance float64) float64 {
	if distance < policy.collisionRadius {
		return -policy.weights.Collision
	}

	if distance < policy.safetyRadius {
		return -policy.weights.Separation * (1.0 - distance/policy.safetyRadius)
	}

	return 0
}

// clampEpisodeReward applies the final safety clamp on the summed
// episode reward. NaN or Inf collapse to a fixed penalty so a
// numerical blowup cannot poison the learning signal.
func (policy RewardPolicy) clampEpisodeReward(total float64) float64 {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return -100.0
	}

	return math.Max(-policy.weights.Clip, math.Min(policy.weights.Clip, total))
}
