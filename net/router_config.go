package net

import (
	"fmt"
)

// Limiter kinds accepted by RouterConfig.Limiter.
const (
	LimiterNone   = "none"
	LimiterToken  = "token"
	LimiterFunnel = "funnel"
)

// RouterConfig is loaded under the name "router".
type RouterConfig struct {
	// CanonicalProtocol is the protocol handlers speak. Zero means
	// protocol.ServerProtocol.
	CanonicalProtocol int32 `mapstructure:"canonicalProtocol"`
	// RecvRateLimit is serverbound packets per second across all sessions.
	RecvRateLimit int `mapstructure:"recvRateLimit"`
	// TokenBurst only applies to the token limiter.
	TokenBurst int `mapstructure:"tokenBurst"`
	// Limiter is one of token, funnel or none. Empty means none.
	Limiter string `mapstructure:"limiter"`
	// PacketFilter lists packet names dropped before translation.
	PacketFilter []string `mapstructure:"packetFilter"`
}

func (c *RouterConfig) GetName() string {
	return "router"
}

func (c *RouterConfig) Validate() error {
	if c.CanonicalProtocol < 0 {
		return fmt.Errorf("canonicalProtocol cannot be negative")
	}
	switch c.limiterKind() {
	case LimiterNone:
		return nil
	case LimiterToken:
		if c.TokenBurst <= 0 {
			return fmt.Errorf("TokenBurst must be positive")
		}
		if c.TokenBurst > c.RecvRateLimit*10 {
			return fmt.Errorf("TokenBurst cannot exceed 10 times RecvRateLimit")
		}
	case LimiterFunnel:
	default:
		return fmt.Errorf("unknown limiter %q", c.Limiter)
	}
	if c.RecvRateLimit <= 0 {
		return fmt.Errorf("RecvRateLimit must be positive")
	}
	if c.RecvRateLimit > 1000000 {
		return fmt.Errorf("RecvRateLimit cannot exceed 1,000,000 packets per second")
	}
	return nil
}

func (c *RouterConfig) limiterKind() string {
	if c.Limiter == "" {
		return LimiterNone
	}
	return c.Limiter
}

// DefaultRouterConfig routes to the server protocol without rate limiting.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{Limiter: LimiterNone}
}
