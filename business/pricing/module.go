// Package pricing implements the pricing bounded context: pool discovery,
// price extraction and oracle conversion for one chain deployment.
package pricing

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tokenlens/tokenlens/business/pricing/app"
	pricingDI "github.com/tokenlens/tokenlens/business/pricing/di"
	"github.com/tokenlens/tokenlens/business/pricing/infra/chainlink"
	"github.com/tokenlens/tokenlens/business/pricing/infra/ethereum"
	"github.com/tokenlens/tokenlens/business/pricing/infra/uniswap"
	"github.com/tokenlens/tokenlens/internal/config"
	"github.com/tokenlens/tokenlens/internal/di"
	"github.com/tokenlens/tokenlens/internal/logger"
	"github.com/tokenlens/tokenlens/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, pricingDI.ChainReader, func(sr di.ServiceRegistry) app.ChainReader {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ethClient := sr.Get("ethClient").(*ethclient.Client)

		reader, err := ethereum.NewReader(ethClient, ethereum.ReaderConfig{
			RateLimitRPS:   cfg.Ethereum.RateLimitRPS,
			RateLimitBurst: cfg.Ethereum.RateLimitBurst,
		}, log)
		if err != nil {
			panic("failed to create chain reader: " + err.Error())
		}
		return reader
	})

	di.RegisterToken(c, pricingDI.PoolLocator, func(sr di.ServiceRegistry) app.PoolLocator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		locator, err := uniswap.NewLocator(pricingDI.GetChainReader(sr), uniswap.LocatorConfig{
			V2Factory:      cfg.Contracts.V2FactoryAddress(),
			V3Factory:      cfg.Contracts.V3FactoryAddress(),
			ReferenceToken: cfg.Contracts.ReferenceTokenAddress(),
			FeeTiers:       cfg.Pricing.FeeTiers,
		}, log)
		if err != nil {
			panic("failed to create pool locator: " + err.Error())
		}
		return locator
	})

	di.RegisterToken(c, pricingDI.PriceExtractor, func(sr di.ServiceRegistry) app.PriceExtractor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		extractor, err := uniswap.NewExtractor(pricingDI.GetChainReader(sr), cfg.Contracts.ReferenceTokenAddress(), log)
		if err != nil {
			panic("failed to create price extractor: " + err.Error())
		}
		return extractor
	})

	di.RegisterToken(c, pricingDI.RateOracle, func(sr di.ServiceRegistry) app.RateOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		feed, err := chainlink.NewFeed(pricingDI.GetChainReader(sr), cfg.Contracts.OracleFeedAddress(), log)
		if err != nil {
			panic("failed to create oracle feed: " + err.Error())
		}
		return feed
	})

	// PriceService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PriceService, func(sr di.ServiceRegistry) *app.PriceService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPriceService(
			pricingDI.GetPoolLocator(sr),
			pricingDI.GetPriceExtractor(sr),
			pricingDI.GetRateOracle(sr),
			log,
		)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// The resolver itself performs no network detection; a mismatched
	// node is only worth a warning here.
	if chainID, err := mono.EthClient().ChainID(ctx); err != nil {
		log.Warn(ctx, "could not read chain id from node", "error", err)
	} else if cfg.Ethereum.ChainID != 0 && chainID.Uint64() != cfg.Ethereum.ChainID {
		log.Warn(ctx, "node chain id does not match configuration",
			"node_chain_id", chainID.Uint64(),
			"configured_chain_id", cfg.Ethereum.ChainID,
		)
	}

	log.Info(ctx, "pricing module started",
		"reference_token", cfg.Contracts.ReferenceToken,
		"fee_tiers", cfg.Pricing.FeeTiers,
	)
	return nil
}
