package navigation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nameisalii/4wel/common/utils/vector"
	"github.com/nameisalii/4wel/kinematics"
)

func TestScoreProgress(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())
	target := vector.MakeVector2(5, 0)

	forward, success := policy.Score(
		kinematics.MakeState(0, 0, 0),
		kinematics.MakeState(1, 0, 0),
		target)
	assert.False(t, success)
	assert.InDelta(t, 2.0*1.0, forward, 1e-9)

	backward, _ := policy.Score(
		kinematics.MakeState(1, 0, 0),
		kinematics.MakeState(0, 0, 0),
		target)
	assert.InDelta(t, -2.0*1.0, backward, 1e-9)
}

func TestScoreProgressIsBounded(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())
	target := vector.MakeVector2(100, 0)

	// a teleport-sized jump is clamped to MaxProgress
	reward, _ := policy.Score(
		kinematics.MakeState(0, 0, 0),
		kinematics.MakeState(50, 0, 0),
		target)
	assert.InDelta(t, 2.0*5.0, reward, 1e-9)
}

func TestScoreSuccessBonus(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())
	target := vector.MakeVector2(0.2, 0)

	reward, success := policy.Score(
		kinematics.MakeState(0.5, 0, 0),
		kinematics.MakeState(0, 0, 0),
		target)

	assert.True(t, success)
	assert.Greater(t, reward, 200.0)
}

func TestScoreEffortPenalty(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())
	target := vector.MakeVector2(0, 100)

	// stationary transitions isolate the effort terms
	still := kinematics.MakeState(0, 0, 0)

	moving := still
	moving.V = 1.5
	moving.DeltaFL = 0.2
	moving.DeltaFR = -0.1

	reward, _ := policy.Score(still, moving, target)
	assert.InDelta(t, -0.1*1.5-0.05*0.3, reward, 1e-9)
}

func TestScoreSeparationSchedule(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())

	// inside collision radius: full collision penalty
	assert.InDelta(t, -50.0, policy.separationTerm(0.1), 1e-9)

	// inside safety radius: linear in the remaining gap
	assert.InDelta(t, -10.0*(1.0-0.5), policy.separationTerm(0.5), 1e-9)

	// beyond the safety radius: nothing
	assert.Equal(t, 0.0, policy.separationTerm(1.2))

	// monotone: closer never scores higher
	previous := math.Inf(-1)
	for distance := 0.05; distance < 1.5; distance += 0.05 {
		term := policy.separationTerm(distance)
		assert.GreaterOrEqual(t, term, previous, "distance %v", distance)
		previous = term
	}
}

func TestClampEpisodeReward(t *testing.T) {
	policy := NewRewardPolicy(DefaultConfig())

	assert.Equal(t, 10000.0, policy.clampEpisodeReward(1e9))
	assert.Equal(t, -10000.0, policy.clampEpisodeReward(-1e9))
	assert.Equal(t, 42.0, policy.clampEpisodeReward(42.0))
	assert.Equal(t, -100.0, policy.clampEpisodeReward(math.NaN()))
	assert.Equal(t, -100.0, policy.clampEpisodeReward(math.Inf(1)))
}
