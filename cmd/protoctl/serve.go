package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lcx/polyproto/config"
	"github.com/lcx/polyproto/discovery"
	"github.com/lcx/polyproto/log"
	"github.com/lcx/polyproto/metrics"
	"github.com/lcx/polyproto/net"
	"github.com/lcx/polyproto/protocol"
	"github.com/lcx/polyproto/registry"
	"github.com/lcx/polyproto/stats"
)

type serveOptions struct {
	configDir   string
	env         string
	metricsAddr string
	serverName  string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry, router and exporters until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configDir, "config", "c", "./configs", "Directory holding the YAML configuration files")
	cmd.Flags().StringVarP(&opts.env, "env", "e", "development", "Environment sub directory overriding the base files")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", ":9102", "Address of the Prometheus endpoint, empty to disable")
	cmd.Flags().StringVar(&opts.serverName, "server-name", "polyproto", "Server dimension added to every metric")
	return cmd
}

// isConfigMissing reports whether err comes from an absent config file, in
// which case the component falls back to its defaults.
func isConfigMissing(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// bridge holds the components wired by serve.
type bridge struct {
	catalog    *protocol.Catalog
	registry   *registry.Registry
	router     *net.Router
	exporter   *stats.Exporter
	advertiser *discovery.Advertiser
	promReg    *prometheus.Registry
}

func buildBridge(cm config.ConfigManager, serverName string) (*bridge, error) {
	if err := log.InitializeWithConfigManager(cm); err != nil && !isConfigMissing(err) {
		return nil, fmt.Errorf("logger: %w", err)
	}

	catalog, err := protocol.NewReferenceCatalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	promReg := prometheus.NewRegistry()
	m, err := metrics.NewBridgeMetrics(promReg, metrics.Dimension{"server": serverName})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	reg, err := registry.NewWithConfigManager(cm, catalog, registry.WithMetrics(m))
	if isConfigMissing(err) {
		reg, err = registry.New(catalog, registry.DefaultConfig(), registry.WithMetrics(m))
	}
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	router, err := net.NewRouterWithConfigManager(cm, reg, m)
	if isConfigMissing(err) {
		router, err = net.NewRouter(net.DefaultRouterConfig(), reg, m)
	}
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	source := stats.NewBridgeSource(reg, router)
	exporter, err := stats.NewExporterWithConfigManager(cm, source, nil)
	if isConfigMissing(err) {
		exporter, err = stats.NewExporter(stats.DefaultConfig(), source, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	advertiser, err := discovery.NewAdvertiserWithConfigManager(cm, reg.SupportedVersions(), router.CanonicalProtocol())
	switch {
	case err == nil:
	case isConfigMissing(err), errors.Is(err, discovery.ErrDisabled):
		advertiser = nil
	default:
		return nil, fmt.Errorf("discovery: %w", err)
	}

	return &bridge{
		catalog:    catalog,
		registry:   reg,
		router:     router,
		exporter:   exporter,
		advertiser: advertiser,
		promReg:    promReg,
	}, nil
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cm := config.NewConfigManager()
	cm.SetBasePath(opts.configDir)
	cm.SetEnvironment(opts.env)
	defer cm.Close()

	b, err := buildBridge(cm, opts.serverName)
	if err != nil {
		return err
	}
	defer log.Default().Close()

	if err := b.exporter.LoadBaseline(); err != nil {
		log.Warn().Err(err).Msg("stats baseline ignored")
	}

	if b.advertiser != nil {
		if err := b.advertiser.Register(); err != nil {
			return err
		}
		defer func() {
			if err := b.advertiser.Deregister(); err != nil {
				log.Error().Err(err).Msg("consul deregister failed")
			}
		}()
	}

	var srv *http.Server
	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(b.promReg, promhttp.HandlerOpts{Registry: b.promReg}))
		srv = &http.Server{Addr: opts.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", opts.metricsAddr).Msg("metrics endpoint stopped")
			}
		}()
	}

	done := make(chan struct{}, 2)
	go func() { b.registry.RunReaper(ctx); done <- struct{}{} }()
	go func() { b.exporter.Run(ctx); done <- struct{}{} }()

	log.Info().Ints32("protocols", b.registry.SupportedVersions()).Int32("canonical", b.router.CanonicalProtocol()).
		Msg("bridge started")

	<-ctx.Done()
	<-done
	<-done

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	log.Info().Interface("stats", b.router.Stats()).Msg("bridge stopped")
	return nil
}
