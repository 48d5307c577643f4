package net

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRecvLimiter_Burst(t *testing.T) {
	limiter := NewTokenRecvLimiter(10, 5)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Take())
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	start = time.Now()
	require.NoError(t, limiter.Take())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenRecvLimiter_Reload(t *testing.T) {
	limiter := NewTokenRecvLimiter(10, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Take())
	}

	limiter.Reload(20, 10)
	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Take())
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestFunnelRecvLimiter(t *testing.T) {
	limiter := NewFunnelRecvLimiter(100)

	start := time.Now()
	for i := 0; i < 11; i++ {
		require.NoError(t, limiter.Take())
	}
	// ten intervals of 10ms after the first packet
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	limiter.Reload(10000)
	start = time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Take())
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestTokenRecvLimiter_Concurrent(t *testing.T) {
	limiter := NewTokenRecvLimiter(1000, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, limiter.Take())
			}
		}()
	}
	wg.Wait()
}

func TestReloadRecvLimiter(t *testing.T) {
	token := newRecvLimiter(&RouterConfig{Limiter: LimiterToken, RecvRateLimit: 10, TokenBurst: 5})
	_, ok := token.(*TokenRecvLimiter)
	require.True(t, ok)

	same := reloadRecvLimiter(token, &RouterConfig{Limiter: LimiterToken, RecvRateLimit: 20, TokenBurst: 5})
	assert.Same(t, token, same)

	funnel := reloadRecvLimiter(token, &RouterConfig{Limiter: LimiterFunnel, RecvRateLimit: 20})
	_, ok = funnel.(*FunnelRecvLimiter)
	assert.True(t, ok)

	assert.Nil(t, reloadRecvLimiter(funnel, &RouterConfig{Limiter: LimiterNone}))
	assert.Nil(t, newRecvLimiter(&RouterConfig{}))
}
