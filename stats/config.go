package stats

import (
	"fmt"
	"time"
)

// Config is loaded under the name "stats".
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	Path        string `mapstructure:"path"`
	IntervalSec int    `mapstructure:"intervalSec"`
}

func (c *Config) GetName() string {
	return "stats"
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Path == "" {
		return fmt.Errorf("stats path required when enabled")
	}
	if c.IntervalSec <= 0 {
		return fmt.Errorf("intervalSec must be positive")
	}
	return nil
}

func (c *Config) interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Path:        "stats.json",
		IntervalSec: 60,
	}
}
