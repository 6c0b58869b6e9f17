// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolDesign identifies the liquidity pool mechanism.
type PoolDesign string

const (
	// ConstantProduct is the x*y=k reserve-pair design (Uniswap V2 style).
	ConstantProduct PoolDesign = "constant_product"
	// ConcentratedLiquidity is the tick-based design (Uniswap V3 style),
	// with one pool per fee tier.
	ConcentratedLiquidity PoolDesign = "concentrated_liquidity"
)

// PoolReference points at a discovered pool. References are created per
// resolution call and discarded afterwards, never cached.
type PoolReference struct {
	Design  PoolDesign
	Address common.Address
}

func (p PoolReference) String() string {
	return fmt.Sprintf("%s@%s", p.Design, p.Address.Hex())
}

// ReservePair holds a constant-product pool's reserves, already oriented:
// TokenReserve belongs to the priced token, ReferenceReserve to the
// reference asset.
type ReservePair struct {
	TokenReserve     *big.Int
	ReferenceReserve *big.Int
}

// Price returns the token price in reference-asset units,
// tokenReserve / referenceReserve. The conversion goes through big.Float
// so reserves up to 2^256 lose precision only at the float64 mantissa,
// never via intermediate truncation. The result is NOT adjusted for
// token decimals; callers own that concern.
func (r ReservePair) Price() (float64, error) {
	if r.TokenReserve == nil || r.ReferenceReserve == nil {
		return 0, fmt.Errorf("reserve pair is incomplete")
	}
	if r.ReferenceReserve.Sign() == 0 {
		return 0, fmt.Errorf("reference asset reserve is zero")
	}

	num := new(big.Float).SetInt(r.TokenReserve)
	den := new(big.Float).SetInt(r.ReferenceReserve)
	price, _ := new(big.Float).Quo(num, den).Float64()
	return price, nil
}

// q96 is 2^96, the fixed-point scale of sqrtPriceX96.
var q96 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))

// PriceFromSqrtX96 converts a concentrated-liquidity pool's sqrtPriceX96
// into a spot price: (sqrtPriceX96 / 2^96)^2. Per the pool's fixed token
// ordering this is the price of token1 in token0 units; which side is the
// reference asset is not resolved here.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int) (float64, error) {
	if sqrtPriceX96 == nil {
		return 0, fmt.Errorf("sqrtPriceX96 is nil")
	}
	if sqrtPriceX96.Sign() < 0 {
		return 0, fmt.Errorf("sqrtPriceX96 is negative: %s", sqrtPriceX96)
	}

	ratio := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96)
	price, _ := new(big.Float).Mul(ratio, ratio).Float64()
	return price, nil
}
