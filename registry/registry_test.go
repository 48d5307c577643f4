package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/polyproto/metrics"
	"github.com/lcx/polyproto/protocol"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T, cfg *Config, opts ...Option) *Registry {
	t.Helper()
	catalog, err := protocol.NewReferenceCatalog()
	require.NoError(t, err)
	r, err := New(catalog, cfg, opts...)
	require.NoError(t, err)
	return r
}

func TestRegisterAndUnregister(t *testing.T) {
	r := newTestRegistry(t, nil)

	require.NoError(t, r.Register("alice", 621))
	v, ok := r.ProtocolOf("alice")
	require.True(t, ok)
	assert.Equal(t, int32(621), v)

	r.Unregister("alice")
	_, ok = r.ProtocolOf("alice")
	assert.False(t, ok)

	// idempotent
	r.Unregister("alice")
	r.Unregister("nobody")
	assert.Equal(t, 0, r.ActiveSessionCount())
}

func TestRegisterUnsupportedLeavesTableUnchanged(t *testing.T) {
	r := newTestRegistry(t, nil)
	require.NoError(t, r.Register("bob", 589))
	before := r.ActiveSessions()

	for _, v := range []int32{1, 999, 0, -5} {
		err := r.Register("mallory", v)
		assert.ErrorIs(t, err, protocol.ErrUnsupportedProtocol)
		assert.False(t, r.IsSupported(v))

		// replacing an existing key with a bad version must not touch it either
		assert.ErrorIs(t, r.Register("bob", v), protocol.ErrUnsupportedProtocol)
	}

	assert.Equal(t, before, r.ActiveSessions())
	_, ok := r.ProtocolOf("mallory")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), r.TotalConnections())
	assert.Equal(t, uint64(8), r.RejectedRegistrations())
}

func TestRegisterEmptyKey(t *testing.T) {
	r := newTestRegistry(t, nil)
	assert.ErrorIs(t, r.Register("", 621), ErrEmptyPlayerKey)
	assert.Equal(t, 0, r.ActiveSessionCount())
}

func TestReRegisterReplacesSession(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := newTestRegistry(t, nil, WithClock(clock.Now))

	require.NoError(t, r.Register("carol", 527))
	first, _ := r.Session("carol")

	clock.Advance(time.Minute)
	require.NoError(t, r.Register("carol", 621))
	second, ok := r.Session("carol")
	require.True(t, ok)

	assert.Equal(t, int32(621), second.ProtocolVersion)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, uuid.Nil, second.SessionID)
	assert.Equal(t, clock.Now(), second.ConnectedAt)
	assert.Equal(t, 1, r.ActiveSessionCount())
	assert.Equal(t, uint64(2), r.TotalConnections())
}

func TestSupportedVersions(t *testing.T) {
	r := newTestRegistry(t, nil)
	versions := r.SupportedVersions()
	assert.Equal(t, []int32{527, 589, 621}, versions)

	for _, v := range versions {
		assert.True(t, r.IsSupported(v))
		d, ok := r.DescriptorFor(v)
		require.True(t, ok)
		assert.Equal(t, v, d.ProtocolVersion())
	}

	versions[0] = 1
	assert.Equal(t, int32(527), r.SupportedVersions()[0])

	d, ok := r.DescriptorFor(999)
	assert.False(t, ok)
	assert.Nil(t, d)
}

func TestActiveSessionsSnapshot(t *testing.T) {
	r := newTestRegistry(t, nil)
	require.NoError(t, r.Register("zed", 621))
	require.NoError(t, r.Register("amy", 527))
	require.NoError(t, r.Register("kim", 621))

	snap := r.ActiveSessions()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"amy", "kim", "zed"}, []string{snap[0].PlayerKey, snap[1].PlayerKey, snap[2].PlayerKey})

	snap[0].ProtocolVersion = 1
	v, _ := r.ProtocolOf("amy")
	assert.Equal(t, int32(527), v)

	assert.Equal(t, map[int32]int{527: 1, 621: 2}, r.SessionsByVersion())
	assert.Equal(t, 3, r.PeakSessions())

	r.Unregister("zed")
	assert.Equal(t, 2, r.ActiveSessionCount())
	assert.Equal(t, 3, r.PeakSessions())
}

func TestSessionLimit(t *testing.T) {
	r := newTestRegistry(t, &Config{MaxSessions: 2})
	require.NoError(t, r.Register("a", 621))
	require.NoError(t, r.Register("b", 621))

	assert.ErrorIs(t, r.Register("c", 621), ErrSessionLimit)
	// existing keys may still re-register
	assert.NoError(t, r.Register("a", 527))

	r.Unregister("b")
	assert.NoError(t, r.Register("c", 621))
	assert.Equal(t, uint64(1), r.RejectedRegistrations())
}

func TestTouchAndReapIdle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(5000, 0)}
	r := newTestRegistry(t, nil, WithClock(clock.Now))

	require.NoError(t, r.Register("idle", 621))
	require.NoError(t, r.Register("busy", 589))

	clock.Advance(4 * time.Minute)
	assert.True(t, r.Touch("busy"))
	assert.False(t, r.Touch("ghost"))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, r.ReapIdle(clock.Now(), 0))
	assert.Equal(t, 1, r.ReapIdle(clock.Now(), 5*time.Minute))

	_, ok := r.ProtocolOf("idle")
	assert.False(t, ok)
	_, ok = r.ProtocolOf("busy")
	assert.True(t, ok)
}

func TestRunReaper(t *testing.T) {
	r := newTestRegistry(t, &Config{IdleTimeoutSec: 1, ReapIntervalSec: 1})
	require.NoError(t, r.Register("gone", 621))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunReaper(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.ActiveSessionCount() == 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	<-done
}

func TestRunReaperFollowsReload(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := newTestRegistry(t, &Config{}, WithClock(clock.Now))
	require.NoError(t, r.Register("idle", 621))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunReaper(ctx)
		close(done)
	}()

	clock.Advance(time.Hour)
	select {
	case <-done:
		t.Fatal("reaper stopped without an idle timeout")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, r.ActiveSessionCount())

	require.NoError(t, r.OnConfigChanged("registry", &Config{IdleTimeoutSec: 60, ReapIntervalSec: 1}, nil))
	require.Eventually(t, func() bool { return r.ActiveSessionCount() == 0 }, 5*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}

func TestConcurrentRegister(t *testing.T) {
	r := newTestRegistry(t, nil)
	versions := r.SupportedVersions()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("player-%d", i)
			for j := 0; j < 20; j++ {
				_ = r.Register(key, versions[j%len(versions)])
				r.ProtocolOf(key)
				r.Touch(key)
				r.ActiveSessions()
			}
			if i%2 == 0 {
				r.Unregister(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, r.ActiveSessionCount())
	assert.Equal(t, uint64(50*20), r.TotalConnections())
}

func TestRegistryMetrics(t *testing.T) {
	m, err := metrics.NewBridgeMetrics(prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	r := newTestRegistry(t, nil, WithMetrics(m))

	require.NoError(t, r.Register("a", 621))
	require.Error(t, r.Register("b", 1))
	assert.Equal(t, 1, r.ActiveSessionCount())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", *DefaultConfig(), false},
		{"zero", Config{}, false},
		{"negative idle", Config{IdleTimeoutSec: -1}, true},
		{"idle without interval", Config{IdleTimeoutSec: 10}, true},
		{"negative limit", Config{MaxSessions: -1}, true},
		{"negative interval", Config{ReapIntervalSec: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	catalog, err := protocol.NewReferenceCatalog()
	require.NoError(t, err)
	_, err = New(catalog, &Config{MaxSessions: -1})
	assert.Error(t, err)
}

func TestOnConfigChanged(t *testing.T) {
	r := newTestRegistry(t, nil)

	assert.NoError(t, r.OnConfigChanged("router", &Config{MaxSessions: -1}, nil))
	assert.Error(t, r.OnConfigChanged("registry", &Config{MaxSessions: -1}, nil))

	require.NoError(t, r.OnConfigChanged("registry", &Config{MaxSessions: 1}, nil))
	assert.Equal(t, 1, r.Config().MaxSessions)
	require.NoError(t, r.Register("a", 621))
	assert.ErrorIs(t, r.Register("b", 621), ErrSessionLimit)
}
