// Package metrics configures the OpenTelemetry meter provider and serves
// the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider owns the meter provider lifecycle.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

type metricProvider struct {
	mp *sdkmetric.MeterProvider
}

func (m *metricProvider) Meter(name string, options ...metric.MeterOption) metric.Meter {
	return m.mp.Meter(name, options...)
}

func (m *metricProvider) Shutdown(ctx context.Context) error {
	return m.mp.Shutdown(ctx)
}

func getReaders(ctx context.Context, cfg Config) []sdkmetric.Reader {
	var readers []sdkmetric.Reader

	for _, provider := range cfg.Providers {
		switch provider.Provider {
		case PrometheusProvider:
			promExporter, err := prometheus.New()
			if err != nil {
				panic(err)
			}
			readers = append(readers, promExporter)

		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}
			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				panic(err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}

	return readers
}

// NewMeterProvider installs a global meter provider built from the options.
func NewMeterProvider(options ...OptionFn) MetricProvider {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		))

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(rsrc)}
	for _, reader := range getReaders(ctx, cfg) {
		mpOpts = append(mpOpts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(mpOpts...)
	otel.SetMeterProvider(mp)

	return &metricProvider{mp: mp}
}

// ServePrometheusMetrics blocks serving /metrics on the configured port.
func ServePrometheusMetrics(options ...OptionFn) {
	cfg := Config{Port: "9090"}
	for _, opt := range options {
		cfg = opt(cfg)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("prometheus metrics server error: %v", err)
	}
}
