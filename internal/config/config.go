// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL        string  `mapstructure:"http_url"`
	ChainID        uint64  `mapstructure:"chain_id"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// ContractsConfig holds the fixed on-chain addresses for one deployment.
// Porting to another network means substituting all of them; nothing is
// auto-detected.
type ContractsConfig struct {
	V2Factory      string `mapstructure:"v2_factory"`
	V3Factory      string `mapstructure:"v3_factory"`
	OracleFeed     string `mapstructure:"oracle_feed"`
	ReferenceToken string `mapstructure:"reference_token"`
}

// V2FactoryAddress returns the constant-product factory address.
func (c *ContractsConfig) V2FactoryAddress() common.Address {
	return common.HexToAddress(c.V2Factory)
}

// V3FactoryAddress returns the concentrated-liquidity factory address.
func (c *ContractsConfig) V3FactoryAddress() common.Address {
	return common.HexToAddress(c.V3Factory)
}

// OracleFeedAddress returns the reference/fiat oracle feed address.
func (c *ContractsConfig) OracleFeedAddress() common.Address {
	return common.HexToAddress(c.OracleFeed)
}

// ReferenceTokenAddress returns the reference asset (wrapped native) address.
func (c *ContractsConfig) ReferenceTokenAddress() common.Address {
	return common.HexToAddress(c.ReferenceToken)
}

// PricingConfig holds pool probing parameters.
type PricingConfig struct {
	// FeeTiers are probed in the order given; Validate enforces ascending
	// order so the lowest-fee pool wins when several exist.
	FeeTiers []int `mapstructure:"fee_tiers"`
}

// ServerConfig holds HTTP server ports.
type ServerConfig struct {
	APIPort    int `mapstructure:"api_port"`
	HealthPort int `mapstructure:"health_port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TOKENLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers Ethereum mainnet defaults.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tokenlens")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ethereum.http_url", "")
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.rate_limit_rps", 20.0)
	v.SetDefault("ethereum.rate_limit_burst", 10)

	// Uniswap V2/V3 factories, Chainlink ETH/USD feed, WETH.
	v.SetDefault("contracts.v2_factory", "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	v.SetDefault("contracts.v3_factory", "0x1F98431c8aD98523631AE4a59f267346ea31F984")
	v.SetDefault("contracts.oracle_feed", "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")
	v.SetDefault("contracts.reference_token", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	v.SetDefault("pricing.fee_tiers", []int{500, 3000, 10000})

	v.SetDefault("server.api_port", 8080)
	v.SetDefault("server.health_port", 8081)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "tokenlens")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}

	for name, addr := range map[string]string{
		"contracts.v2_factory":      c.Contracts.V2Factory,
		"contracts.v3_factory":      c.Contracts.V3Factory,
		"contracts.oracle_feed":     c.Contracts.OracleFeed,
		"contracts.reference_token": c.Contracts.ReferenceToken,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a valid address: %q", name, addr)
		}
	}

	if len(c.Pricing.FeeTiers) == 0 {
		return fmt.Errorf("pricing.fee_tiers must not be empty")
	}
	for i, tier := range c.Pricing.FeeTiers {
		if tier <= 0 {
			return fmt.Errorf("pricing.fee_tiers[%d] must be positive, got %d", i, tier)
		}
		if i > 0 && tier <= c.Pricing.FeeTiers[i-1] {
			return fmt.Errorf("pricing.fee_tiers must be strictly ascending, got %v", c.Pricing.FeeTiers)
		}
	}

	if c.Server.APIPort <= 0 || c.Server.APIPort > 65535 {
		return fmt.Errorf("server.api_port out of range: %d", c.Server.APIPort)
	}

	return nil
}
