// Package stats persists the bridge counters to a file on an interval and
// at shutdown. It is never called from the routing path.
package stats

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcx/polyproto/codec"
	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/log"
	"github.com/lcx/polyproto/metrics"
)

const (
	fieldSessionsByVersion     = "sessions_by_version"
	fieldRejectedRegistrations = "rejected_registrations"
	fieldTimestamp             = "timestamp"
)

// Exporter writes snapshots from a Source to Config.Path.
//
// Counters persisted by an earlier run are loaded by LoadBaseline and merged
// into every export according to their metrics.Policy: sums accumulate,
// maxima keep the larger value, and set values report the current run only.
type Exporter struct {
	source Source
	codec  codec.Codec

	mu       sync.Mutex
	cfg      *Config
	baseline map[string]metrics.Value
}

// NewExporter builds an exporter. A nil codec uses codec.Default().
func NewExporter(cfg *Config, source Source, c codec.Codec) (*Exporter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stats configuration: %w", err)
	}
	if source == nil {
		return nil, errors.New("stats source cannot be nil")
	}
	if c == nil {
		c = codec.Default()
	}
	return &Exporter{
		source:   source,
		codec:    c,
		cfg:      cfg,
		baseline: make(map[string]metrics.Value),
	}, nil
}

// NewExporterWithConfigManager loads the "stats" config and follows its changes.
func NewExporterWithConfigManager(configManager config.ConfigManager, source Source, c codec.Codec) (*Exporter, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}
	cfg := &Config{}
	if err := configManager.LoadConfig("stats", cfg); err != nil {
		return nil, fmt.Errorf("failed to load stats config: %w", err)
	}
	e, err := NewExporter(cfg, source, c)
	if err != nil {
		return nil, err
	}
	configManager.AddChangeListener(e)
	return e, nil
}

// OnConfigChanged implements config.ConfigChangeListener. A new interval
// takes effect on the next Run.
func (e *Exporter) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "stats" {
		return nil
	}
	cfg, ok := newConfig.(*Config)
	if !ok {
		return fmt.Errorf("invalid configuration type for stats exporter")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid stats configuration: %w", err)
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	return nil
}

func (e *Exporter) config() *Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// LoadBaseline reads the previously exported file. A missing file is not
// an error.
func (e *Exporter) LoadBaseline() error {
	cfg := e.config()
	if !cfg.Enabled {
		return nil
	}
	b, err := os.ReadFile(cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read stats baseline: %w", err)
	}

	prev := &structpb.Struct{}
	if err := e.codec.Decode(b, prev); err != nil {
		return fmt.Errorf("decode stats baseline %s: %w", cfg.Path, err)
	}

	baseline := make(map[string]metrics.Value)
	for _, def := range metrics.Stats {
		if def.Policy != metrics.PolicySum && def.Policy != metrics.PolicyMax {
			continue
		}
		if v, ok := prev.GetFields()[def.Name]; ok {
			baseline[def.Name] = metrics.Value(v.GetNumberValue())
		}
	}

	e.mu.Lock()
	e.baseline = baseline
	e.mu.Unlock()
	log.Info().Str("path", cfg.Path).Int("stats", len(baseline)).Msg("stats baseline loaded")
	return nil
}

// Collect merges a fresh snapshot with the baseline.
func (e *Exporter) Collect() (*structpb.Struct, error) {
	snap := e.source.Snapshot()

	e.mu.Lock()
	baseline := e.baseline
	e.mu.Unlock()

	fields := make(map[string]any, len(metrics.Stats)+3)
	for _, def := range metrics.Stats {
		v, _ := snap.Value(def.Name)
		fields[def.Name] = float64(merge(def.Policy, baseline[def.Name], v))
	}
	fields[fieldRejectedRegistrations] = snap.RejectedRegistrations
	fields[fieldSessionsByVersion] = snap.versionCounts()
	fields[fieldTimestamp] = snap.Timestamp.UTC().Format(time.RFC3339)
	return structpb.NewStruct(fields)
}

func merge(p metrics.Policy, prev, cur metrics.Value) metrics.Value {
	switch p {
	case metrics.PolicySum:
		return prev + cur
	case metrics.PolicyMax:
		return max(prev, cur)
	}
	return cur
}

// Flush writes one export. The file is replaced atomically so readers never
// see a partial document.
func (e *Exporter) Flush() error {
	cfg := e.config()
	if !cfg.Enabled {
		return nil
	}
	doc, err := e.Collect()
	if err != nil {
		return fmt.Errorf("collect stats: %w", err)
	}
	b, err := e.codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return writeFileAtomic(cfg.Path, b)
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, b, 0o644)
}

// Run flushes on every interval until ctx is done, then flushes once more.
func (e *Exporter) Run(ctx context.Context) {
	cfg := e.config()
	if !cfg.Enabled {
		log.Info().Msg("stats exporter disabled")
		return
	}

	ticker := time.NewTicker(cfg.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := e.Flush(); err != nil {
				log.Error().Err(err).Msg("final stats flush failed")
			}
			return
		case <-ticker.C:
			if err := e.Flush(); err != nil {
				log.Warn().Err(err).Str("path", cfg.Path).Msg("stats flush failed")
			}
		}
	}
}
