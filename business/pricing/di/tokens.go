// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/tokenlens/tokenlens/business/pricing/app"
	"github.com/tokenlens/tokenlens/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PriceService = di.NewToken[*app.PriceService]("pricing.PriceService")
)

// Private dependency tokens - internal to pricing module
var (
	ChainReader    = di.NewToken[app.ChainReader]("pricing:chainReader")
	PoolLocator    = di.NewToken[app.PoolLocator]("pricing:poolLocator")
	PriceExtractor = di.NewToken[app.PriceExtractor]("pricing:priceExtractor")
	RateOracle     = di.NewToken[app.RateOracle]("pricing:rateOracle")
)

// Helper functions for type-safe access
func GetPriceService(c di.ServiceRegistry) *app.PriceService {
	return di.GetToken(c, PriceService)
}

func GetChainReader(c di.ServiceRegistry) app.ChainReader {
	return di.GetToken(c, ChainReader)
}

func GetPoolLocator(c di.ServiceRegistry) app.PoolLocator {
	return di.GetToken(c, PoolLocator)
}

func GetPriceExtractor(c di.ServiceRegistry) app.PriceExtractor {
	return di.GetToken(c, PriceExtractor)
}

func GetRateOracle(c di.ServiceRegistry) app.RateOracle {
	return di.GetToken(c, RateOracle)
}
