package navigation

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	multi := DefaultConfig()
	multi.NumRobots = 4
	assert.NoError(t, multi.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no robots", func(c *Config) { c.NumRobots = 0 }},
		{"no steps", func(c *Config) { c.MaxEpisodeSteps = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative success distance", func(c *Config) { c.SuccessDistance = -0.3 }},
		{"zero arena", func(c *Config) { c.InitialRange = 0 }},
		{"no sample attempts", func(c *Config) { c.MaxSampleAttempts = 0 }},
		{"negative clearance", func(c *Config) { c.MinRobotClearance = -1 }},
		{"collision radius wider than safety", func(c *Config) {
			c.NumRobots = 2
			c.CollisionRadius = 1.5
		}},
		{"clearance larger than arena", func(c *Config) {
			c.MinTargetClearance = 50
		}},
		{"zero wheelbase", func(c *Config) { c.Robot.Wheelbase = 0 }},
		{"steering angle beyond quarter turn", func(c *Config) { c.Robot.MaxSteeringAngle = 2.0 }},
		{"zero steering rate", func(c *Config) { c.Robot.MaxSteeringRate = 0 }},
	}

	for _, testcase := range cases {
		t.Run(testcase.name, func(t *testing.T) {
			config := DefaultConfig()
			testcase.mutate(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := path.Join(dir, "sim.json")

	payload := `{
		"numRobots": 2,
		"initialRange": 6.5,
		"reward": {
			"progress": 2.0,
			"maxProgress": 5.0,
			"success": 150.0,
			"velocity": 0.1,
			"steering": 0.05,
			"separation": 10.0,
			"collision": 50.0,
			"comfort": 1.0,
			"clip": 10000.0
		}
	}`
	require.NoError(t, os.WriteFile(filename, []byte(payload), 0644))

	config, err := LoadConfig(filename)
	require.NoError(t, err)

	assert.Equal(t, 2, config.NumRobots)
	assert.Equal(t, 6.5, config.InitialRange)
	assert.Equal(t, 150.0, config.Reward.Success)

	// omitted fields keep their defaults
	assert.Equal(t, 500, config.MaxEpisodeSteps)
	assert.Equal(t, 0.3, config.SuccessDistance)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/sim.json")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestLoadConfigInvalidValues(t *testing.T) {
	dir := t.TempDir()
	filename := path.Join(dir, "sim.json")
	require.NoError(t, os.WriteFile(filename, []byte(`{"numRobots": -1}`), 0644))

	_, err := LoadConfig(filename)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}
