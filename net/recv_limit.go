package net

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/ratelimit"
	"golang.org/x/time/rate"

	"github.com/lcx/polyproto/protocol"
)

// RecvLimiter paces inbound packets. Take blocks until the packet may pass.
type RecvLimiter interface {
	Take() error
}

// TokenRecvLimiter is a token bucket limiter allowing bursts.
type TokenRecvLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewTokenRecvLimiter allows limit packets per second with the given burst.
func NewTokenRecvLimiter(limit int, burst int) *TokenRecvLimiter {
	l := &TokenRecvLimiter{}
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
	return l
}

func (l *TokenRecvLimiter) Take() error {
	return l.limiter.Load().Wait(context.Background())
}

// Reload swaps the bucket; waiters on the old bucket finish on it.
func (l *TokenRecvLimiter) Reload(limit int, burst int) {
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
}

// FunnelRecvLimiter is a leaky bucket limiter spacing packets evenly.
type FunnelRecvLimiter struct {
	limiter atomic.Pointer[ratelimit.Limiter]
}

// NewFunnelRecvLimiter allows limit packets per second.
func NewFunnelRecvLimiter(limit int) *FunnelRecvLimiter {
	l := &FunnelRecvLimiter{}
	limiter := ratelimit.New(limit)
	l.limiter.Store(&limiter)
	return l
}

func (l *FunnelRecvLimiter) Take() error {
	_ = (*l.limiter.Load()).Take()
	return nil
}

func (l *FunnelRecvLimiter) Reload(limit int) {
	limiter := ratelimit.New(limit)
	l.limiter.Store(&limiter)
}

// newRecvLimiter builds the limiter cfg asks for, or nil for none.
func newRecvLimiter(cfg *RouterConfig) RecvLimiter {
	switch cfg.limiterKind() {
	case LimiterToken:
		return NewTokenRecvLimiter(cfg.RecvRateLimit, cfg.TokenBurst)
	case LimiterFunnel:
		return NewFunnelRecvLimiter(cfg.RecvRateLimit)
	}
	return nil
}

// reloadRecvLimiter adapts cur to cfg, reusing it when the kind is unchanged.
func reloadRecvLimiter(cur RecvLimiter, cfg *RouterConfig) RecvLimiter {
	switch l := cur.(type) {
	case *TokenRecvLimiter:
		if cfg.limiterKind() == LimiterToken {
			l.Reload(cfg.RecvRateLimit, cfg.TokenBurst)
			return l
		}
	case *FunnelRecvLimiter:
		if cfg.limiterKind() == LimiterFunnel {
			l.Reload(cfg.RecvRateLimit)
			return l
		}
	}
	return newRecvLimiter(cfg)
}

// recvLimiterFilter applies the current limiter, if any, to packets received
// from clients. Clientbound packets are never paced.
func (r *Router) recvLimiterFilter(rd *RouteDelivery, f RouteHandleFunc) error {
	if rd.Packet.Direction != protocol.Serverbound {
		return f(rd)
	}
	r.lock.RLock()
	limiter := r.recvLimiter
	r.lock.RUnlock()
	if limiter == nil {
		return f(rd)
	}
	if err := limiter.Take(); err != nil {
		r.drop("rate_limited")
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return f(rd)
}
