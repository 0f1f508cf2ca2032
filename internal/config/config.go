// Package config loads animation scenarios for the demo command.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written in YAML as a string such as "16ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return errors.Wrap(err, "duration must be a string")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*d = Duration(parsed)
	return nil
}

// AnimationConfig describes one tween and who watches it.
type AnimationConfig struct {
	Name        string  `yaml:"name"`
	From        float64 `yaml:"from"`
	To          float64 `yaml:"to"`
	Frames      int     `yaml:"frames"`
	Easing      string  `yaml:"easing"`
	Subscribers int     `yaml:"subscribers"`
	Multicast   bool    `yaml:"multicast"`
}

// Config is the demo scenario.
type Config struct {
	Seed          uint64            `yaml:"seed"`
	FrameInterval Duration          `yaml:"frameInterval"`
	Jitter        float64           `yaml:"jitter"`
	Animations    []AnimationConfig `yaml:"animations"`
}

// Default returns the scenario used when no file is given.
func Default() *Config {
	return &Config{
		Seed:          1,
		FrameInterval: Duration(16 * time.Millisecond),
		Animations: []AnimationConfig{
			{Name: "opacity", From: 0, To: 1, Frames: 30, Easing: "linear", Subscribers: 3, Multicast: true},
			{Name: "offset", From: 240, To: 0, Frames: 45, Easing: "ease-in-out", Subscribers: 2, Multicast: true},
		},
	}
}

// Load reads and validates the scenario at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.FrameInterval <= 0 {
		return errors.New("frameInterval must be positive")
	}
	if c.Jitter < 0 {
		return errors.New("jitter must not be negative")
	}
	if len(c.Animations) == 0 {
		return errors.New("no animations configured")
	}
	seen := make(map[string]bool, len(c.Animations))
	for i, a := range c.Animations {
		switch {
		case a.Name == "":
			return errors.Errorf("animation %d: name is required", i)
		case seen[a.Name]:
			return errors.Errorf("animation %q: duplicate name", a.Name)
		case a.Frames <= 0:
			return errors.Errorf("animation %q: frames must be positive", a.Name)
		case a.Subscribers <= 0:
			return errors.Errorf("animation %q: subscribers must be positive", a.Name)
		}
		switch a.Easing {
		case "", "linear", "ease-in-out":
		default:
			return errors.Errorf("animation %q: unknown easing %q", a.Name, a.Easing)
		}
		seen[a.Name] = true
	}
	return nil
}
