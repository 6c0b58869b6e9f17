package metrics

type Provider string

const (
	PrometheusProvider Provider = "PROMETHEUS_PROVIDER"
	OtelCollector      Provider = "OTEL_COLLECTOR"
)

// ProviderCfg selects one metric exporter.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Config collects meter provider options.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
	Port        string
}

type OptionFn func(Config) Config

// WithServiceName tags exported metrics with the service name.
func WithServiceName(name string) OptionFn {
	return func(cfg Config) Config {
		cfg.ServiceName = name
		return cfg
	}
}

// WithProviderConfig appends an exporter configuration.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(cfg Config) Config {
		cfg.Providers = append(cfg.Providers, provider)
		return cfg
	}
}

// WithPort sets the Prometheus scrape port.
func WithPort(port string) OptionFn {
	return func(cfg Config) Config {
		cfg.Port = port
		return cfg
	}
}
