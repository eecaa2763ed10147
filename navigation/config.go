package navigation

import (
	"encoding/json"
	"io/ioutil"
	"math"

	"github.com/nameisalii/4wel/common/utils/number"
	"github.com/nameisalii/4wel/kinematics"
)

// RewardWeights are the coefficients of the reward terms. All weights
// are taken positive; penalty terms subtract.
type RewardWeights struct {
	// Progress scales the per-step reduction of the distance to
	// target.
	Progress float64 `json:"progress"`
	// MaxProgress bounds the progress term per step, guarding the
	// shaping signal against teleport-sized jumps.
	MaxProgress float64 `json:"maxProgress"`
	// Success is the fixed bonus granted when a robot arrives.
	Success float64 `json:"success"`
	// Velocity penalizes |v| each step.
	Velocity float64 `json:"velocity"`
	// Steering penalizes the summed wheel angle magnitude each step.
	Steering float64 `json:"steering"`
	// Separation scales the soft penalty inside the safety radius.
	Separation float64 `json:"separation"`
	// Collision is the hard penalty inside the collision radius.
	Collision float64 `json:"collision"`
	// Comfort is the bonus granted while every pair of robots keeps
	// more than the comfort margin between them.
	Comfort float64 `json:"comfort"`
	// Clip bounds the total per-step reward magnitude.
	Clip float64 `json:"clip"`
}

func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Progress:    2.0,
		MaxProgress: 5.0,
		Success:     200.0,
		Velocity:    0.1,
		Steering:    0.05,
		Separation:  10.0,
		Collision:   50.0,
		Comfort:     1.0,
		Clip:        10000.0,
	}
}

// Config is the full domain configuration of the environment. Nothing
// about the learning side (network shapes, hyperparameters) belongs
// here.
type Config struct {
	// NumRobots driven in one episode.
	NumRobots int `json:"numRobots"`
	// MaxEpisodeSteps caps an episode before truncation.
	MaxEpisodeSteps int `json:"maxEpisodeSteps"`
	// Dt is the simulation time step in seconds.
	Dt float64 `json:"dt"`
	// SuccessDistance is the arrival threshold in meters.
	SuccessDistance float64 `json:"successDistance"`
	// InitialRange is the half-extent of the square sampling area for
	// start poses and targets, in meters.
	InitialRange float64 `json:"initialRange"`
	// MinRobotClearance is the smallest allowed start separation
	// between robots, in meters.
	MinRobotClearance float64 `json:"minRobotClearance"`
	// MinTargetClearance is the smallest allowed distance between a
	// sampled target and other targets or its own robot's start pose.
	MinTargetClearance float64 `json:"minTargetClearance"`
	// MaxSampleAttempts bounds the rejection loop per placement.
	MaxSampleAttempts int `json:"maxSampleAttempts"`
	// SafetyRadius activates the soft separation penalty, in meters.
	SafetyRadius float64 `json:"safetyRadius"`
	// CollisionRadius flags a hard collision, in meters. Tighter than
	// SafetyRadius.
	CollisionRadius float64 `json:"collisionRadius"`
	// ComfortMargin is the pairwise separation above which the
	// comfort bonus applies, in meters.
	ComfortMargin float64 `json:"comfortMargin"`

	Robot  kinematics.Params `json:"robot"`
	Reward RewardWeights     `json:"reward"`
}

func DefaultConfig() Config {
	return Config{
		NumRobots:          1,
		MaxEpisodeSteps:    500,
		Dt:                 0.1,
		SuccessDistance:    0.3,
		InitialRange:       10.0,
		MinRobotClearance:  1.0,
		MinTargetClearance: 3.0,
		MaxSampleAttempts:  100,
		SafetyRadius:       1.0,
		CollisionRadius:    0.2,
		ComfortMargin:      1.5,
		Robot:              kinematics.DefaultParams(),
		Reward:             DefaultRewardWeights(),
	}
}

// Validate fails with a ConfigurationError on the first out-of-range
// or contradictory value.
func (config Config) Validate() error {
	if config.NumRobots < 1 {
		return NewConfigurationError("numRobots must be at least 1").
			SetContext("numRobots", number.FloatToStr(float64(config.NumRobots), 0))
	}

	if config.MaxEpisodeSteps < 1 {
		return NewConfigurationError("maxEpisodeSteps must be at least 1").
			SetContext("maxEpisodeSteps", number.FloatToStr(float64(config.MaxEpisodeSteps), 0))
	}

	if config.Dt <= 0 {
		return NewConfigurationError("dt must be positive").
			SetContext("dt", number.FloatToStr(config.Dt, 4))
	}

	if config.SuccessDistance <= 0 {
		return NewConfigurationError("successDistance must be positive").
			SetContext("successDistance", number.FloatToStr(config.SuccessDistance, 4))
	}

	if config.InitialRange <= 0 {
		return NewConfigurationError("initialRange must be positive").
			SetContext("initialRange", number.FloatToStr(config.InitialRange, 4))
	}

	if config.MaxSampleAttempts < 1 {
		return NewConfigurationError("maxSampleAttempts must be at least 1").
			SetContext("maxSampleAttempts", number.FloatToStr(float64(config.MaxSampleAttempts), 0))
	}

	if config.MinRobotClearance < 0 || config.MinTargetClearance < 0 {
		return NewConfigurationError("clearances cannot be negative")
	}

	if config.NumRobots > 1 && config.CollisionRadius >= config.SafetyRadius {
		return NewConfigurationError("collisionRadius must be tighter than safetyRadius").
			SetContext("collisionRadius", number.FloatToStr(config.CollisionRadius, 4)).
			SetContext("safetyRadius", number.FloatToStr(config.SafetyRadius, 4))
	}

	if config.NumRobots > 1 && config.CollisionRadius <= 0 {
		return NewConfigurationError("collisionRadius must be positive")
	}

	// A robot and its clearance disc must fit in the sampling area a
	// few times over, or placement cannot terminate.
	clearance := math.Max(config.MinRobotClearance, config.MinTargetClearance)
	if clearance >= config.InitialRange {
		return NewConfigurationError("clearance does not fit in the sampling area").
			SetContext("clearance", number.FloatToStr(clearance, 4)).
			SetContext("initialRange", number.FloatToStr(config.InitialRange, 4))
	}

	if config.Robot.Wheelbase <= 0 || config.Robot.TrackWidth <= 0 {
		return NewConfigurationError("robot dimensions must be positive")
	}

	if config.Robot.MaxSteeringAngle <= 0 || config.Robot.MaxSteeringAngle > math.Pi/2 {
		return NewConfigurationError("maxSteeringAngle must be in (0, Pi/2]").
			SetContext("maxSteeringAngle", number.FloatToStr(config.Robot.MaxSteeringAngle, 4))
	}

	if config.Robot.MaxSteeringRate <= 0 || config.Robot.MaxAcceleration <= 0 || config.Robot.MaxVelocity <= 0 {
		return NewConfigurationError("robot rate limits must be positive")
	}

	return nil
}

// LoadConfig reads a Config from a JSON file. Omitted fields keep
// their defaults.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return config, NewConfigurationError("could not read configuration file").
			SetContext("filename", filename).
			With(err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, NewConfigurationError("could not parse configuration file").
			SetContext("filename", filename).
			With(err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}
