package registry

import (
	"fmt"
	"time"
)

// Config bounds the session table. It is loaded under the name "registry".
type Config struct {
	// IdleTimeoutSec removes sessions not seen for this long. Zero keeps
	// sessions until they are unregistered.
	IdleTimeoutSec int `mapstructure:"idleTimeoutSec"`
	// ReapIntervalSec is the period of the idle sweep.
	ReapIntervalSec int `mapstructure:"reapIntervalSec"`
	// MaxSessions caps concurrent sessions; zero means unbounded.
	MaxSessions int `mapstructure:"maxSessions"`
}

func (c *Config) GetName() string {
	return "registry"
}

func (c *Config) Validate() error {
	if c.IdleTimeoutSec < 0 {
		return fmt.Errorf("idleTimeoutSec cannot be negative")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("maxSessions cannot be negative")
	}
	if c.IdleTimeoutSec > 0 && c.ReapIntervalSec <= 0 {
		return fmt.Errorf("reapIntervalSec must be positive when idleTimeoutSec is set")
	}
	if c.ReapIntervalSec < 0 {
		return fmt.Errorf("reapIntervalSec cannot be negative")
	}
	return nil
}

func (c *Config) idleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

func (c *Config) reapInterval() time.Duration {
	return time.Duration(c.ReapIntervalSec) * time.Second
}

// idleSweepInterval paces the reaper while ReapIntervalSec is unset.
const idleSweepInterval = 30 * time.Second

func (c *Config) sweepInterval() time.Duration {
	if d := c.reapInterval(); d > 0 {
		return d
	}
	return idleSweepInterval
}

// DefaultConfig drops sessions idle for five minutes.
func DefaultConfig() *Config {
	return &Config{
		IdleTimeoutSec:  300,
		ReapIntervalSec: 30,
	}
}
