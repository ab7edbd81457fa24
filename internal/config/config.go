// Package config handles analysis threshold configuration and merging.
package config

import "time"

// Check names, used as configuration keys and report keys.
const (
	CheckUndercuts       = "undercuts"
	CheckInternalVolumes = "internal_volumes"
	CheckSmallFeatures   = "small_features"
	CheckSteepWalls      = "steep_walls"
	CheckNarrowChannels  = "narrow_channels"
	CheckDeepPockets     = "deep_pockets"
)

// CheckNames lists every known check in report order.
var CheckNames = []string{
	CheckUndercuts,
	CheckInternalVolumes,
	CheckSmallFeatures,
	CheckSteepWalls,
	CheckNarrowChannels,
	CheckDeepPockets,
}

// Config holds all analysis settings. Construct it via Default, Load or
// FromMap; never mutate a Config shared with a running analysis.
type Config struct {
	MinToolDiameter     float64 `yaml:"min_tool_diameter"`     // mm
	MinChannelWidth     float64 `yaml:"min_channel_width"`     // mm
	SteepAngleThreshold float64 `yaml:"steep_angle_threshold"` // degrees from vertical
	DeepPocketThreshold float64 `yaml:"deep_pocket_threshold"` // mm depth
	MinDepth            float64 `yaml:"min_depth"`             // mm, noise floor
	UseContextAware     bool    `yaml:"use_context_aware"`

	// Checks enables or disables individual checks by name.
	Checks map[string]bool `yaml:"checks"`

	// CheckTimeout bounds each check's wall clock; zero disables the limit.
	CheckTimeout time.Duration `yaml:"check_timeout"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the canonical default thresholds.
func Default() *Config {
	checks := make(map[string]bool, len(CheckNames))
	for _, name := range CheckNames {
		checks[name] = true
	}
	return &Config{
		MinToolDiameter:     3.0,
		MinChannelWidth:     2.0,
		SteepAngleThreshold: 80.0,
		DeepPocketThreshold: 30.0,
		MinDepth:            5.0,
		UseContextAware:     true,
		Checks:              checks,
		CheckTimeout:        30 * time.Second,
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Enabled reports whether the named check should run. Unknown names are
// disabled.
func (c *Config) Enabled(name string) bool {
	return c.Checks[name]
}

// Clone returns a deep copy, so overrides never touch a shared instance.
func (c *Config) Clone() *Config {
	out := *c
	out.Checks = make(map[string]bool, len(c.Checks))
	for k, v := range c.Checks {
		out.Checks[k] = v
	}
	return &out
}
