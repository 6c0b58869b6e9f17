// Package uniswap implements pool discovery and price extraction for the
// two Uniswap pool designs.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokenlens/tokenlens/business/pricing/app"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

const tracerName = "uniswap"

// zeroAddress is the factories' "no such pool" sentinel.
var zeroAddress = common.Address{}

// LocatorConfig holds the fixed addresses and fee tiers for discovery.
type LocatorConfig struct {
	V2Factory      common.Address
	V3Factory      common.Address
	ReferenceToken common.Address
	// FeeTiers are probed in order; keep them ascending so the
	// lowest-fee pool wins when a pair exists at several tiers.
	FeeTiers []int
}

// Locator implements app.PoolLocator against the two factory contracts.
type Locator struct {
	reader app.ChainReader
	cfg    LocatorConfig

	v2FactoryABI abi.ABI
	v3FactoryABI abi.ABI

	logger logger.LoggerInterface
	tracer trace.Tracer
}

var _ app.PoolLocator = (*Locator)(nil)

// NewLocator creates a pool locator.
func NewLocator(reader app.ChainReader, cfg LocatorConfig, log logger.LoggerInterface) (*Locator, error) {
	v2ABI, err := abi.JSON(strings.NewReader(V2FactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse V2 factory ABI: %w", err)
	}
	v3ABI, err := abi.JSON(strings.NewReader(V3FactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse V3 factory ABI: %w", err)
	}

	return &Locator{
		reader:       reader,
		cfg:          cfg,
		v2FactoryABI: v2ABI,
		v3FactoryABI: v3ABI,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// FindConstantProductPool looks up the V2 pair for (token, reference).
func (l *Locator) FindConstantProductPool(ctx context.Context, token common.Address) (common.Address, bool, error) {
	ctx, span := l.tracer.Start(ctx, "uniswap.find_constant_product_pool",
		trace.WithAttributes(attribute.String("token", token.Hex())),
	)
	defer span.End()

	outputs, err := l.reader.Call(ctx, l.cfg.V2Factory, l.v2FactoryABI, "getPair", token, l.cfg.ReferenceToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return zeroAddress, false, apperror.New(apperror.CodePoolLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("getPair for "+token.Hex()))
	}

	addr, err := addressOutput(outputs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return zeroAddress, false, apperror.New(apperror.CodePoolLookupFailed,
			apperror.WithCause(err),
			apperror.WithContext("getPair for "+token.Hex()))
	}

	if addr == zeroAddress {
		span.SetStatus(codes.Ok, "no pool")
		return zeroAddress, false, nil
	}

	span.SetAttributes(attribute.String("pool", addr.Hex()))
	span.SetStatus(codes.Ok, "pool found")
	return addr, true, nil
}

// FindConcentratedLiquidityPool probes the V3 factory once per configured
// fee tier, short-circuiting on the first existing pool.
func (l *Locator) FindConcentratedLiquidityPool(ctx context.Context, token common.Address) (common.Address, bool, error) {
	ctx, span := l.tracer.Start(ctx, "uniswap.find_concentrated_liquidity_pool",
		trace.WithAttributes(attribute.String("token", token.Hex())),
	)
	defer span.End()

	for _, tier := range l.cfg.FeeTiers {
		outputs, err := l.reader.Call(ctx, l.cfg.V3Factory, l.v3FactoryABI, "getPool",
			token, l.cfg.ReferenceToken, big.NewInt(int64(tier)))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return zeroAddress, false, apperror.New(apperror.CodePoolLookupFailed,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("getPool for %s at tier %d", token.Hex(), tier)))
		}

		addr, err := addressOutput(outputs)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return zeroAddress, false, apperror.New(apperror.CodePoolLookupFailed,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("getPool for %s at tier %d", token.Hex(), tier)))
		}

		if addr != zeroAddress {
			span.SetAttributes(
				attribute.String("pool", addr.Hex()),
				attribute.Int("fee_tier", tier),
			)
			span.SetStatus(codes.Ok, "pool found")
			return addr, true, nil
		}
	}

	span.SetStatus(codes.Ok, "no pool at any tier")
	return zeroAddress, false, nil
}

func addressOutput(outputs []any) (common.Address, error) {
	if len(outputs) < 1 {
		return zeroAddress, fmt.Errorf("empty output")
	}
	addr, ok := outputs[0].(common.Address)
	if !ok {
		return zeroAddress, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	return addr, nil
}
