package stats

import (
	"strconv"
	"time"

	"github.com/lcx/polyproto/metrics"
	"github.com/lcx/polyproto/net"
	"github.com/lcx/polyproto/registry"
)

// Snapshot is a point in time reading of the bridge counters.
type Snapshot struct {
	TotalConnections      uint64
	ActiveSessions        int
	PeakSessions          int
	PacketsRouted         uint64
	TranslationErrors     uint64
	RejectedRegistrations uint64
	SessionsByVersion     map[int32]int
	Timestamp             time.Time
}

// Value returns the stat named by one of the metrics.Stat constants.
func (s Snapshot) Value(name string) (metrics.Value, bool) {
	switch name {
	case metrics.StatTotalConnections:
		return metrics.Value(s.TotalConnections), true
	case metrics.StatActiveSessions:
		return metrics.Value(s.ActiveSessions), true
	case metrics.StatPeakSessions:
		return metrics.Value(s.PeakSessions), true
	case metrics.StatPacketsRouted:
		return metrics.Value(s.PacketsRouted), true
	case metrics.StatTranslationErrors:
		return metrics.Value(s.TranslationErrors), true
	}
	return 0, false
}

func (s Snapshot) versionCounts() map[string]any {
	out := make(map[string]any, len(s.SessionsByVersion))
	for v, n := range s.SessionsByVersion {
		out[strconv.Itoa(int(v))] = n
	}
	return out
}

// Source produces snapshots.
type Source interface {
	Snapshot() Snapshot
}

// SourceFunc adapts a function to Source.
type SourceFunc func() Snapshot

func (f SourceFunc) Snapshot() Snapshot {
	return f()
}

type bridgeSource struct {
	registry *registry.Registry
	router   *net.Router
}

// NewBridgeSource reads sessions from reg and packet counters from router.
// router may be nil.
func NewBridgeSource(reg *registry.Registry, router *net.Router) Source {
	return &bridgeSource{registry: reg, router: router}
}

func (b *bridgeSource) Snapshot() Snapshot {
	s := Snapshot{
		TotalConnections:      b.registry.TotalConnections(),
		ActiveSessions:        b.registry.ActiveSessionCount(),
		PeakSessions:          b.registry.PeakSessions(),
		RejectedRegistrations: b.registry.RejectedRegistrations(),
		SessionsByVersion:     b.registry.SessionsByVersion(),
		Timestamp:             time.Now(),
	}
	if b.router != nil {
		rs := b.router.Stats()
		s.PacketsRouted = rs.PacketsRouted
		s.TranslationErrors = rs.TranslationErrors
	}
	return s
}
