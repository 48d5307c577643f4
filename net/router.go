// Package net is the routing point between connections and gameplay.
//
// Every packet passes through Router.Route, which looks up the negotiated
// protocol of the sending or receiving session and translates the packet
// between that protocol and the canonical one the server speaks. Serverbound
// packets are delivered to the gameplay handler in canonical form; clientbound
// packets leave in the session's own protocol. A filter chain in front of the
// translation drops blocked packets and paces inbound traffic.
package net

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/log"
	"github.com/lcx/polyproto/metrics"
	"github.com/lcx/polyproto/protocol"
	"github.com/lcx/polyproto/registry"
)

var (
	ErrNoSession        = errors.New("net: no session for player")
	ErrNoHandler        = errors.New("net: no handler for direction")
	ErrPacketFiltered   = errors.New("net: packet filtered")
	ErrRateLimited      = errors.New("net: rate limited")
	ErrInvalidPacket    = errors.New("net: invalid packet")
	ErrInvalidDirection = errors.New("net: invalid packet direction")
)

// RouteDelivery carries one packet through the filter chain.
type RouteDelivery struct {
	Packet    *protocol.Packet
	PlayerKey string
}

// PacketHandler receives routed packets. Serverbound packets arrive in the
// canonical protocol, clientbound packets in the session's protocol.
type PacketHandler interface {
	HandlePacket(playerKey string, pkt *protocol.Packet) error
}

// PacketHandlerFunc adapts a function to PacketHandler.
type PacketHandlerFunc func(playerKey string, pkt *protocol.Packet) error

func (f PacketHandlerFunc) HandlePacket(playerKey string, pkt *protocol.Packet) error {
	return f(playerKey, pkt)
}

// RouterStats is a snapshot of the routing counters.
type RouterStats struct {
	// PacketsRouted counts Route calls, whatever their outcome.
	PacketsRouted     uint64
	TranslationErrors uint64
	// Dropped counts packets stopped by a filter or without a handler.
	Dropped     uint64
	Unroutable  uint64
	Passthrough uint64
	Translated  uint64
	Downgraded  uint64
}

type routerCounters struct {
	routed            atomic.Uint64
	translationErrors atomic.Uint64
	dropped           atomic.Uint64
	unroutable        atomic.Uint64
	passthrough       atomic.Uint64
	translated        atomic.Uint64
	downgraded        atomic.Uint64
}

// Router translates packets between session protocols and the canonical one.
type Router struct {
	registry *registry.Registry
	metrics  *metrics.BridgeMetrics
	counters routerCounters

	lock            sync.RWMutex
	handlers        map[protocol.Direction]PacketHandler
	filters         RouteFilterChain
	recvLimiter     RecvLimiter
	packetFilterSet map[string]struct{}
	canonical       int32
	config          *RouterConfig
}

// NewRouter builds a router over reg. m may be nil.
func NewRouter(cfg *RouterConfig, reg *registry.Registry, m *metrics.BridgeMetrics) (*Router, error) {
	if cfg == nil {
		return nil, errors.New("RouterConfig cannot be nil, use NewRouterWithConfigManager for dynamic configuration")
	}
	if reg == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid router configuration: %w", err)
	}
	canonical, err := resolveCanonical(cfg, reg)
	if err != nil {
		return nil, err
	}

	r := &Router{
		registry:        reg,
		metrics:         m,
		handlers:        make(map[protocol.Direction]PacketHandler),
		recvLimiter:     newRecvLimiter(cfg),
		packetFilterSet: buildPacketFilterSet(cfg.PacketFilter),
		canonical:       canonical,
		config:          cfg,
	}
	r.filters = append(r.filters, r.packetFilter)
	r.filters = append(r.filters, r.recvLimiterFilter)
	return r, nil
}

// NewRouterWithConfigManager loads the "router" config and follows its changes.
func NewRouterWithConfigManager(configManager config.ConfigManager, reg *registry.Registry, m *metrics.BridgeMetrics) (*Router, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}

	cfg := &RouterConfig{}
	if err := configManager.LoadConfig("router", cfg); err != nil {
		return nil, fmt.Errorf("failed to load router config: %w", err)
	}

	r, err := NewRouter(cfg, reg, m)
	if err != nil {
		return nil, err
	}
	configManager.AddChangeListener(r)
	return r, nil
}

func resolveCanonical(cfg *RouterConfig, reg *registry.Registry) (int32, error) {
	canonical := cfg.CanonicalProtocol
	if canonical == 0 {
		canonical = protocol.ServerProtocol
	}
	if !reg.IsSupported(canonical) {
		return 0, fmt.Errorf("canonical %w: %d", protocol.ErrUnsupportedProtocol, canonical)
	}
	return canonical, nil
}

// OnConfigChanged implements config.ConfigChangeListener.
func (r *Router) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "router" {
		return nil
	}

	newCfg, ok := newConfig.(*RouterConfig)
	if !ok {
		return fmt.Errorf("invalid configuration type for Router")
	}
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("invalid router configuration: %w", err)
	}
	canonical, err := resolveCanonical(newCfg, r.registry)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.recvLimiter = reloadRecvLimiter(r.recvLimiter, newCfg)
	r.packetFilterSet = buildPacketFilterSet(newCfg.PacketFilter)
	r.canonical = canonical
	r.config = newCfg

	log.Info().Str("configName", configName).Int32("canonical", canonical).Str("limiter", newCfg.limiterKind()).
		Msg("Router configuration updated successfully")
	return nil
}

// CanonicalProtocol returns the protocol handlers speak.
func (r *Router) CanonicalProtocol() int32 {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.canonical
}

// RegisterHandler sets the receiver of packets flowing in direction dir.
func (r *Router) RegisterHandler(dir protocol.Direction, h PacketHandler) error {
	if h == nil {
		return errors.New("RegisterHandler handler is nil")
	}
	if dir != protocol.Serverbound && dir != protocol.Clientbound {
		return ErrInvalidDirection
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.handlers[dir]; ok {
		return fmt.Errorf("RegisterHandler duplicated for %s", dir)
	}
	r.handlers[dir] = h
	return nil
}

// RegRouteFilter appends f to the filter chain, after the packet filter and
// the rate limiter.
func (r *Router) RegRouteFilter(f RouteFilter) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.filters = append(r.filters, f)
}

// Route delivers pkt for playerKey. The routed counter is incremented once
// per call before anything else. A nil error means a handler received the
// packet; every other outcome is counted and returned.
func (r *Router) Route(pkt *protocol.Packet, playerKey string) error {
	r.counters.routed.Add(1)
	r.metrics.IncRouted()

	if pkt == nil {
		r.drop("invalid")
		return ErrInvalidPacket
	}

	r.lock.RLock()
	filters := r.filters
	r.lock.RUnlock()

	return filters.Handle(&RouteDelivery{Packet: pkt, PlayerKey: playerKey}, r.routeImpl)
}

func (r *Router) routeImpl(rd *RouteDelivery) error {
	version, ok := r.registry.ProtocolOf(rd.PlayerKey)
	if !ok {
		r.counters.unroutable.Add(1)
		r.metrics.IncDropped("no_session")
		return fmt.Errorf("%w: %q", ErrNoSession, rd.PlayerKey)
	}

	out, err := r.translate(rd.Packet, version)
	if err != nil {
		r.countTranslationError(err)
		log.NewSessionLogger(log.Default(), rd.PlayerKey, version).Debug().Err(err).
			Str("packet", rd.Packet.Name).Str("direction", rd.Packet.Direction.String()).Msg("packet dropped")
		return fmt.Errorf("route %s for %q: %w", rd.Packet.Name, rd.PlayerKey, err)
	}
	r.countOutcome(out.Outcome)
	r.registry.Touch(rd.PlayerKey)

	r.lock.RLock()
	h := r.handlers[out.Direction]
	r.lock.RUnlock()
	if h == nil {
		r.drop("no_handler")
		return fmt.Errorf("%w: %s", ErrNoHandler, out.Direction)
	}
	return h.HandlePacket(rd.PlayerKey, out)
}

// translate converts pkt between the session protocol and the canonical one.
func (r *Router) translate(pkt *protocol.Packet, session int32) (*protocol.Packet, error) {
	canonical := r.CanonicalProtocol()

	var from, to int32
	switch pkt.Direction {
	case protocol.Serverbound:
		from, to = session, canonical
	case protocol.Clientbound:
		from, to = canonical, session
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, pkt.Direction)
	}

	d, ok := r.registry.DescriptorFor(from)
	if !ok {
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnsupportedProtocol, from)
	}
	return d.Translate(pkt, to)
}

func (r *Router) countTranslationError(err error) {
	r.counters.translationErrors.Add(1)

	reason := "invalid"
	var gap *protocol.GapError
	switch {
	case errors.As(err, &gap):
		reason = gap.Reason.String()
	case errors.Is(err, protocol.ErrUnknownPacket):
		reason = "unknown_packet"
	case errors.Is(err, protocol.ErrUnsupportedProtocol):
		reason = "unsupported_protocol"
	}
	r.metrics.IncTranslationError(reason)
}

func (r *Router) countOutcome(o protocol.Outcome) {
	switch o {
	case protocol.OutcomePassthrough:
		r.counters.passthrough.Add(1)
	case protocol.OutcomeTranslated:
		r.counters.translated.Add(1)
	case protocol.OutcomeDowngraded:
		r.counters.downgraded.Add(1)
	}
	r.metrics.IncTranslation(o.String())
}

func (r *Router) drop(reason string) {
	r.counters.dropped.Add(1)
	r.metrics.IncDropped(reason)
}

// Stats returns a snapshot of the routing counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		PacketsRouted:     r.counters.routed.Load(),
		TranslationErrors: r.counters.translationErrors.Load(),
		Dropped:           r.counters.dropped.Load(),
		Unroutable:        r.counters.unroutable.Load(),
		Passthrough:       r.counters.passthrough.Load(),
		Translated:        r.counters.translated.Load(),
		Downgraded:        r.counters.downgraded.Load(),
	}
}
