// Package discovery advertises the bridge in Consul. Each supported protocol
// becomes a service tag so a version aware proxy can pick a backend that
// speaks the client's protocol.
package discovery

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/samber/lo"

	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/log"
)

const (
	// TagPrefix precedes the protocol number in service tags.
	TagPrefix = "protocol-"
	// MetaCanonicalProtocol names the service meta key of the canonical protocol.
	MetaCanonicalProtocol = "canonical_protocol"
	// MetaProtocols lists every supported protocol, comma separated.
	MetaProtocols = "protocols"
)

var ErrDisabled = errors.New("discovery: disabled")

// Config is loaded under the name "discovery".
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	ServiceName string `mapstructure:"serviceName"`
	ServiceID   string `mapstructure:"serviceID"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	// CheckIntervalSec adds a TCP health check when positive.
	CheckIntervalSec int `mapstructure:"checkIntervalSec"`
}

func (c *Config) GetName() string {
	return "discovery"
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return fmt.Errorf("serviceName required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.CheckIntervalSec < 0 {
		return fmt.Errorf("checkIntervalSec cannot be negative")
	}
	return nil
}

func (c *Config) serviceID() string {
	if c.ServiceID != "" {
		return c.ServiceID
	}
	return fmt.Sprintf("%s-%s-%d", c.ServiceName, c.Host, c.Port)
}

// BuildRegistration describes the bridge as a Consul service.
func BuildRegistration(cfg *Config, versions []int32, canonical int32) *api.AgentServiceRegistration {
	sorted := slices.Clone(versions)
	slices.Sort(sorted)
	labels := lo.Map(sorted, func(v int32, _ int) string { return strconv.Itoa(int(v)) })

	reg := &api.AgentServiceRegistration{
		ID:      cfg.serviceID(),
		Name:    cfg.ServiceName,
		Address: cfg.Host,
		Port:    cfg.Port,
		Tags:    lo.Map(labels, func(v string, _ int) string { return TagPrefix + v }),
		Meta: map[string]string{
			MetaCanonicalProtocol: strconv.Itoa(int(canonical)),
			MetaProtocols:         strings.Join(labels, ","),
		},
	}
	if cfg.CheckIntervalSec > 0 {
		interval := fmt.Sprintf("%ds", cfg.CheckIntervalSec)
		reg.Check = &api.AgentServiceCheck{
			TCP:                            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Interval:                       interval,
			Timeout:                        interval,
			DeregisterCriticalServiceAfter: fmt.Sprintf("%ds", cfg.CheckIntervalSec*10),
		}
	}
	return reg
}

// ParseProtocolTags extracts protocol numbers from service tags, ignoring
// tags that are not protocol tags.
func ParseProtocolTags(tags []string) []int32 {
	out := lo.FilterMap(tags, func(tag string, _ int) (int32, bool) {
		raw, ok := strings.CutPrefix(tag, TagPrefix)
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseInt(raw, 10, 32)
		return int32(v), err == nil
	})
	slices.Sort(out)
	return out
}

// Advertiser registers and deregisters the bridge with a Consul agent.
type Advertiser struct {
	cfg   *Config
	agent *api.Agent
	reg   *api.AgentServiceRegistration
}

// NewAdvertiser connects to the agent at cfg.Address. A disabled config
// returns ErrDisabled.
func NewAdvertiser(cfg *Config, versions []int32, canonical int32) (*Advertiser, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid discovery configuration: %w", err)
	}
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &Advertiser{
		cfg:   cfg,
		agent: client.Agent(),
		reg:   BuildRegistration(cfg, versions, canonical),
	}, nil
}

// NewAdvertiserWithConfigManager loads the "discovery" config.
func NewAdvertiserWithConfigManager(configManager config.ConfigManager, versions []int32, canonical int32) (*Advertiser, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}
	cfg := &Config{}
	if err := configManager.LoadConfig("discovery", cfg); err != nil {
		return nil, fmt.Errorf("failed to load discovery config: %w", err)
	}
	return NewAdvertiser(cfg, versions, canonical)
}

// Registration returns the service definition sent to Consul.
func (a *Advertiser) Registration() *api.AgentServiceRegistration {
	return a.reg
}

func (a *Advertiser) Register() error {
	if err := a.agent.ServiceRegister(a.reg); err != nil {
		return fmt.Errorf("consul register %s: %w", a.reg.ID, err)
	}
	log.Info().Str("service", a.reg.Name).Str("id", a.reg.ID).Strs("tags", a.reg.Tags).Msg("service registered in consul")
	return nil
}

func (a *Advertiser) Deregister() error {
	if err := a.agent.ServiceDeregister(a.reg.ID); err != nil {
		return fmt.Errorf("consul deregister %s: %w", a.reg.ID, err)
	}
	log.Info().Str("id", a.reg.ID).Msg("service deregistered from consul")
	return nil
}
