// Package main is the entry point for the tokenlens price resolver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/tokenlens/tokenlens/api"
	"github.com/tokenlens/tokenlens/business/pricing"
	pricingDI "github.com/tokenlens/tokenlens/business/pricing/di"
	"github.com/tokenlens/tokenlens/internal/apm"
	"github.com/tokenlens/tokenlens/internal/config"
	"github.com/tokenlens/tokenlens/internal/health"
	"github.com/tokenlens/tokenlens/internal/logger"
	"github.com/tokenlens/tokenlens/internal/metrics"
	"github.com/tokenlens/tokenlens/internal/monolith"
	"github.com/tokenlens/tokenlens/internal/token"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	tokenArg := flag.String("token", "", "Resolve one token address and exit")
	serve := flag.Bool("serve", false, "Serve the HTTP API")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tokenlens %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if *tokenArg == "" && !*serve {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -token <address> or -serve")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *tokenArg, *serve); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, tokenArg string, serve bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name)
	defer func() { _ = log.Sync() }()

	log.Info(ctx, "starting tokenlens",
		"version", version,
		"environment", cfg.App.Environment,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.OTLPProvider, log))
		log.Info(ctx, "tracing initialized", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMeterProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			_ = traceProvider.Stop()
		}
	}()

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	healthServer := health.NewServer(cfg.Server.HealthPort, version)
	healthServer.RegisterCheck("ethereum_rpc", func(ctx context.Context) (bool, string) {
		if _, err := mono.EthClient().ChainID(ctx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Server.HealthPort)
	}
	defer func() { _ = healthServer.Stop(ctx) }()

	modules := []monolith.Module{
		&pricing.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	priceService := pricingDI.GetPriceService(mono.Services())

	if tokenArg != "" {
		return resolveOnce(ctx, priceService, tokenArg)
	}

	apiServer := api.New(cfg.Server.APIPort, priceService, log)
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}
	defer func() { _ = apiServer.Stop(context.Background()) }()

	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}

func resolveOnce(ctx context.Context, priceService api.PriceResolver, tokenArg string) error {
	if !common.IsHexAddress(tokenArg) {
		return fmt.Errorf("not a valid token address: %q", tokenArg)
	}
	addr := common.HexToAddress(tokenArg)

	quote, err := priceService.GetPrice(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Printf("token:     %s (%s)\n", addr.Hex(), token.SymbolOrAddress(addr))
	fmt.Printf("reference: %s\n", quote.ReferenceString())
	fmt.Printf("fiat:      %s\n", quote.FiatString())
	return nil
}
