// Package registry tracks which protocol version every connected client
// negotiated. A Registry is built once at startup from a protocol.Catalog and
// passed to the components that need it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/log"
	"github.com/lcx/polyproto/metrics"
	"github.com/lcx/polyproto/protocol"
)

var (
	ErrSessionLimit   = errors.New("registry: session limit reached")
	ErrEmptyPlayerKey = errors.New("registry: empty player key")
	errNilCatalog     = errors.New("registry: catalog cannot be nil")
)

// Session is the live association between a client and its protocol.
type Session struct {
	PlayerKey       string
	SessionID       uuid.UUID
	ProtocolVersion int32
	ConnectedAt     time.Time
	LastSeen        time.Time
}

// Option customizes a Registry.
type Option func(*Registry)

// WithMetrics reports session gauges and counters to m.
func WithMetrics(m *metrics.BridgeMetrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry owns the supported descriptors and the session table.
type Registry struct {
	catalog *protocol.Catalog
	cfg     atomic.Pointer[Config]

	lock     sync.RWMutex
	sessions map[string]*Session

	totalConnections atomic.Uint64
	rejected         atomic.Uint64
	peak             atomic.Int64

	metrics  *metrics.BridgeMetrics
	now      func() time.Time
	reloaded chan struct{}
}

// New builds a registry over catalog. A nil cfg uses DefaultConfig.
func New(catalog *protocol.Catalog, cfg *Config, opts ...Option) (*Registry, error) {
	if catalog == nil {
		return nil, errNilCatalog
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry configuration: %w", err)
	}

	r := &Registry{
		catalog:  catalog,
		sessions: make(map[string]*Session),
		now:      time.Now,
		reloaded: make(chan struct{}, 1),
	}
	r.cfg.Store(cfg)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewWithConfigManager loads the "registry" config and follows its changes.
func NewWithConfigManager(configManager config.ConfigManager, catalog *protocol.Catalog, opts ...Option) (*Registry, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}
	cfg := &Config{}
	if err := configManager.LoadConfig("registry", cfg); err != nil {
		return nil, fmt.Errorf("failed to load registry config: %w", err)
	}
	r, err := New(catalog, cfg, opts...)
	if err != nil {
		return nil, err
	}
	configManager.AddChangeListener(r)
	return r, nil
}

// OnConfigChanged implements config.ConfigChangeListener. Lowering
// MaxSessions never evicts existing sessions.
func (r *Registry) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "registry" {
		return nil
	}
	cfg, ok := newConfig.(*Config)
	if !ok {
		return fmt.Errorf("invalid configuration type for registry")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid registry configuration: %w", err)
	}
	r.cfg.Store(cfg)
	select {
	case r.reloaded <- struct{}{}:
	default:
	}
	log.Info().Int("maxSessions", cfg.MaxSessions).Int("idleTimeoutSec", cfg.IdleTimeoutSec).
		Msg("registry configuration updated")
	return nil
}

// Config returns the active configuration.
func (r *Registry) Config() *Config {
	return r.cfg.Load()
}

// Register creates or replaces the session of playerKey. An unsupported
// version creates nothing and leaves the table untouched; the returned
// ErrUnsupportedProtocol may be ignored by callers that only need the
// fail-soft behavior, the attempt is counted either way.
func (r *Registry) Register(playerKey string, version int32) error {
	if playerKey == "" {
		r.reject()
		return ErrEmptyPlayerKey
	}
	if !r.catalog.Contains(version) {
		r.reject()
		log.Debug().Str("player", playerKey).Int32("protocol", version).Msg("register declined: unsupported protocol")
		return fmt.Errorf("%w: %d", protocol.ErrUnsupportedProtocol, version)
	}

	now := r.now()
	s := &Session{
		PlayerKey:       playerKey,
		SessionID:       uuid.New(),
		ProtocolVersion: version,
		ConnectedAt:     now,
		LastSeen:        now,
	}

	r.lock.Lock()
	if limit := r.cfg.Load().MaxSessions; limit > 0 {
		if _, exists := r.sessions[playerKey]; !exists && len(r.sessions) >= limit {
			r.lock.Unlock()
			r.reject()
			log.Warn().Str("player", playerKey).Int("limit", limit).Msg("register declined: session limit")
			return ErrSessionLimit
		}
	}
	r.sessions[playerKey] = s
	active := len(r.sessions)
	r.lock.Unlock()

	r.totalConnections.Add(1)
	r.observePeak(int64(active))
	r.metrics.IncConnections()
	r.metrics.SetActiveSessions(active)

	log.Debug().Str("player", playerKey).Int32("protocol", version).Str("session", s.SessionID.String()).
		Msg("session registered")
	return nil
}

func (r *Registry) reject() {
	r.rejected.Add(1)
	r.metrics.IncRejected()
}

func (r *Registry) observePeak(active int64) {
	for {
		cur := r.peak.Load()
		if active <= cur || r.peak.CompareAndSwap(cur, active) {
			return
		}
	}
}

// Unregister removes the session of playerKey if present.
func (r *Registry) Unregister(playerKey string) {
	r.lock.Lock()
	_, ok := r.sessions[playerKey]
	delete(r.sessions, playerKey)
	active := len(r.sessions)
	r.lock.Unlock()

	if ok {
		r.metrics.SetActiveSessions(active)
		log.Debug().Str("player", playerKey).Msg("session unregistered")
	}
}

// ProtocolOf returns the negotiated protocol of playerKey.
func (r *Registry) ProtocolOf(playerKey string) (int32, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s, ok := r.sessions[playerKey]
	if !ok {
		return 0, false
	}
	return s.ProtocolVersion, true
}

// Session returns a copy of the session of playerKey.
func (r *Registry) Session(playerKey string) (Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s, ok := r.sessions[playerKey]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Touch marks playerKey as seen now. It reports whether the session exists.
func (r *Registry) Touch(playerKey string) bool {
	now := r.now()
	r.lock.Lock()
	defer r.lock.Unlock()
	s, ok := r.sessions[playerKey]
	if ok {
		s.LastSeen = now
	}
	return ok
}

// DescriptorFor returns the descriptor of a supported version.
func (r *Registry) DescriptorFor(version int32) (protocol.Descriptor, bool) {
	d, ok := r.catalog.Get(version)
	if !ok {
		return nil, false
	}
	return d, true
}

func (r *Registry) IsSupported(version int32) bool {
	return r.catalog.Contains(version)
}

// SupportedVersions returns the supported versions in ascending order.
func (r *Registry) SupportedVersions() []int32 {
	return r.catalog.Versions()
}

// ActiveSessions returns a snapshot of all sessions ordered by player key.
func (r *Registry) ActiveSessions() []Session {
	r.lock.RLock()
	out := lo.MapToSlice(r.sessions, func(_ string, s *Session) Session { return *s })
	r.lock.RUnlock()

	slices.SortFunc(out, func(a, b Session) int {
		switch {
		case a.PlayerKey < b.PlayerKey:
			return -1
		case a.PlayerKey > b.PlayerKey:
			return 1
		}
		return 0
	})
	return out
}

func (r *Registry) ActiveSessionCount() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.sessions)
}

// SessionsByVersion counts active sessions per protocol version.
func (r *Registry) SessionsByVersion() map[int32]int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return lo.CountValuesBy(lo.Values(r.sessions), func(s *Session) int32 { return s.ProtocolVersion })
}

// TotalConnections counts successful Register calls since start.
func (r *Registry) TotalConnections() uint64 {
	return r.totalConnections.Load()
}

// RejectedRegistrations counts Register calls that created no session.
func (r *Registry) RejectedRegistrations() uint64 {
	return r.rejected.Load()
}

// PeakSessions is the largest session count observed.
func (r *Registry) PeakSessions() int {
	return int(r.peak.Load())
}

// ReapIdle removes sessions whose LastSeen is older than now-maxIdle and
// returns how many were removed. A non-positive maxIdle removes nothing.
func (r *Registry) ReapIdle(now time.Time, maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	deadline := now.Add(-maxIdle)

	r.lock.Lock()
	var expired []string
	for key, s := range r.sessions {
		if s.LastSeen.Before(deadline) {
			expired = append(expired, key)
			delete(r.sessions, key)
		}
	}
	active := len(r.sessions)
	r.lock.Unlock()

	if len(expired) > 0 {
		r.metrics.SetActiveSessions(active)
		log.Info().Int("count", len(expired)).Strs("players", expired).Msg("idle sessions reaped")
	}
	return len(expired)
}

// RunReaper sweeps idle sessions on the configured interval until ctx is
// done. While no idle timeout is configured the sweeps remove nothing; a
// reload that sets one takes effect right away.
func (r *Registry) RunReaper(ctx context.Context) {
	interval := r.cfg.Load().sweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reset := func() {
		if next := r.cfg.Load().sweepInterval(); next != interval {
			ticker.Reset(next)
			interval = next
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.reloaded:
			reset()
		case <-ticker.C:
			r.ReapIdle(r.now(), r.cfg.Load().idleTimeout())
			reset()
		}
	}
}
