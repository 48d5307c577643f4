package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "polyproto"

// BridgeMetrics exposes the router and registry counters to Prometheus.
// All methods are safe on a nil receiver so components can run without
// metrics wired in.
type BridgeMetrics struct {
	packetsRouted     prometheus.Counter
	translations      *prometheus.CounterVec
	translationErrors *prometheus.CounterVec
	dropped           *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
	connections       prometheus.Counter
	rejected          prometheus.Counter
}

// NewBridgeMetrics creates the collectors and registers them on reg. dims
// become constant labels. Collectors already registered by an earlier call
// with the same labels are reused.
func NewBridgeMetrics(reg prometheus.Registerer, dims Dimension) (*BridgeMetrics, error) {
	labels := prometheus.Labels(dims)
	m := &BridgeMetrics{
		packetsRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "router",
			Name:        "packets_routed_total",
			Help:        "Route calls, counted once per call regardless of outcome.",
			ConstLabels: labels,
		}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "router",
			Name:        "translations_total",
			Help:        "Packets forwarded, by translation outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		translationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "router",
			Name:        "translation_errors_total",
			Help:        "Packets dropped because no valid translation exists.",
			ConstLabels: labels,
		}, []string{"reason"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "router",
			Name:        "packets_dropped_total",
			Help:        "Packets dropped before translation.",
			ConstLabels: labels,
		}, []string{"reason"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "registry",
			Name:        "sessions_active",
			Help:        "Sessions currently registered.",
			ConstLabels: labels,
		}),
		connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "registry",
			Name:        "connections_total",
			Help:        "Sessions registered since start.",
			ConstLabels: labels,
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "registry",
			Name:        "registrations_rejected_total",
			Help:        "Register calls declined for an unsupported protocol or a full table.",
			ConstLabels: labels,
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.packetsRouted = register(reg, m.packetsRouted, &err)
	m.translations = register(reg, m.translations, &err)
	m.translationErrors = register(reg, m.translationErrors, &err)
	m.dropped = register(reg, m.dropped, &err)
	m.sessionsActive = register(reg, m.sessionsActive, &err)
	m.connections = register(reg, m.connections, &err)
	m.rejected = register(reg, m.rejected, &err)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, errp *error) C {
	if *errp != nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		*errp = err
	}
	return c
}

func (m *BridgeMetrics) IncRouted() {
	if m != nil {
		m.packetsRouted.Inc()
	}
}

func (m *BridgeMetrics) IncTranslation(outcome string) {
	if m != nil {
		m.translations.WithLabelValues(outcome).Inc()
	}
}

func (m *BridgeMetrics) IncTranslationError(reason string) {
	if m != nil {
		m.translationErrors.WithLabelValues(reason).Inc()
	}
}

func (m *BridgeMetrics) IncDropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *BridgeMetrics) SetActiveSessions(n int) {
	if m != nil {
		m.sessionsActive.Set(float64(n))
	}
}

func (m *BridgeMetrics) IncConnections() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *BridgeMetrics) IncRejected() {
	if m != nil {
		m.rejected.Inc()
	}
}
