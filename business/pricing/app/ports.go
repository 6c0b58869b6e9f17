// Package app contains application services and port definitions for the
// pricing context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/business/pricing/domain"
)

// ChainReader executes read-only contract calls and returns the decoded
// outputs. Implementations own transport, retries and rate limiting; the
// pricing core treats a returned error as fatal for the current call.
type ChainReader interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error)
}

// RateOracle fetches the reference-asset/fiat conversion rate.
type RateOracle interface {
	// LatestRate returns the current rate, e.g. USD per one unit of the
	// reference asset.
	LatestRate(ctx context.Context) (float64, error)
}

// PoolLocator discovers a liquidity pool for (token, reference asset)
// under each pool design. found=false with a nil error means no pool
// exists, which is a normal outcome rather than a failure.
type PoolLocator interface {
	FindConstantProductPool(ctx context.Context, token common.Address) (addr common.Address, found bool, err error)
	FindConcentratedLiquidityPool(ctx context.Context, token common.Address) (addr common.Address, found bool, err error)
}

// PriceExtractor converts a discovered pool's on-chain state into a
// token/reference-asset price.
type PriceExtractor interface {
	PriceFromConstantProductPool(ctx context.Context, pool domain.PoolReference) (float64, error)
	PriceFromConcentratedLiquidityPool(ctx context.Context, pool domain.PoolReference) (float64, error)
}
