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
	"github.com/tokenlens/tokenlens/business/pricing/domain"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

// Extractor implements app.PriceExtractor for both pool designs.
type Extractor struct {
	reader    app.ChainReader
	reference common.Address

	v2PairABI abi.ABI
	v3PoolABI abi.ABI

	logger logger.LoggerInterface
	tracer trace.Tracer
}

var _ app.PriceExtractor = (*Extractor)(nil)

// NewExtractor creates a price extractor. The reference token address is
// used to orient constant-product reserves.
func NewExtractor(reader app.ChainReader, referenceToken common.Address, log logger.LoggerInterface) (*Extractor, error) {
	pairABI, err := abi.JSON(strings.NewReader(V2PairABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse V2 pair ABI: %w", err)
	}
	poolABI, err := abi.JSON(strings.NewReader(V3PoolABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse V3 pool ABI: %w", err)
	}

	return &Extractor{
		reader:    reader,
		reference: referenceToken,
		v2PairABI: pairABI,
		v3PoolABI: poolABI,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

type token0Result struct {
	addr common.Address
	err  error
}

type reservesResult struct {
	reserve0 *big.Int
	reserve1 *big.Int
	err      error
}

// PriceFromConstantProductPool reads token0 and the reserves concurrently,
// orients the reserves against the reference token and returns
// tokenReserve/referenceReserve. The price is an exchange rate between
// raw on-chain units; token decimals are not adjusted for.
func (e *Extractor) PriceFromConstantProductPool(ctx context.Context, pool domain.PoolReference) (float64, error) {
	ctx, span := e.tracer.Start(ctx, "uniswap.price_from_constant_product_pool",
		trace.WithAttributes(attribute.String("pool", pool.Address.Hex())),
	)
	defer span.End()

	if pool.Design != domain.ConstantProduct {
		err := fmt.Errorf("pool %s has design %s", pool.Address.Hex(), pool.Design)
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed, apperror.WithCause(err))
	}

	token0Ch := make(chan token0Result, 1)
	reservesCh := make(chan reservesResult, 1)

	go func() {
		token0Ch <- e.readToken0(ctx, pool.Address)
	}()
	go func() {
		reservesCh <- e.readReserves(ctx, pool.Address)
	}()

	token0 := <-token0Ch
	reserves := <-reservesCh

	if err := firstError(token0.err, reserves.err); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("pool "+pool.Address.Hex()))
	}

	var pair domain.ReservePair
	if token0.addr == e.reference {
		pair = domain.ReservePair{TokenReserve: reserves.reserve1, ReferenceReserve: reserves.reserve0}
	} else {
		pair = domain.ReservePair{TokenReserve: reserves.reserve0, ReferenceReserve: reserves.reserve1}
	}

	price, err := pair.Price()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("pool "+pool.Address.Hex()))
	}

	span.SetAttributes(attribute.Float64("price", price))
	span.SetStatus(codes.Ok, "price extracted")
	return price, nil
}

// PriceFromConcentratedLiquidityPool reads slot0 and squares the
// sqrtPriceX96 field. The result is the token1/token0 price per the
// pool's fixed ordering; which side is the reference asset is not
// resolved here.
func (e *Extractor) PriceFromConcentratedLiquidityPool(ctx context.Context, pool domain.PoolReference) (float64, error) {
	ctx, span := e.tracer.Start(ctx, "uniswap.price_from_concentrated_liquidity_pool",
		trace.WithAttributes(attribute.String("pool", pool.Address.Hex())),
	)
	defer span.End()

	if pool.Design != domain.ConcentratedLiquidity {
		err := fmt.Errorf("pool %s has design %s", pool.Address.Hex(), pool.Design)
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed, apperror.WithCause(err))
	}

	outputs, err := e.reader.Call(ctx, pool.Address, e.v3PoolABI, "slot0")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("slot0 on "+pool.Address.Hex()))
	}
	if len(outputs) < 1 {
		err := fmt.Errorf("empty slot0 output")
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("slot0 on "+pool.Address.Hex()))
	}

	sqrtPriceX96, ok := outputs[0].(*big.Int)
	if !ok {
		err := fmt.Errorf("unexpected sqrtPriceX96 type %T", outputs[0])
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("slot0 on "+pool.Address.Hex()))
	}

	price, err := domain.PriceFromSqrtX96(sqrtPriceX96)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodePriceExtractionFailed,
			apperror.WithCause(err),
			apperror.WithContext("pool "+pool.Address.Hex()))
	}

	span.SetAttributes(attribute.Float64("price", price))
	span.SetStatus(codes.Ok, "price extracted")
	return price, nil
}

func (e *Extractor) readToken0(ctx context.Context, pool common.Address) token0Result {
	outputs, err := e.reader.Call(ctx, pool, e.v2PairABI, "token0")
	if err != nil {
		return token0Result{err: err}
	}
	if len(outputs) < 1 {
		return token0Result{err: fmt.Errorf("empty token0 output")}
	}
	addr, ok := outputs[0].(common.Address)
	if !ok {
		return token0Result{err: fmt.Errorf("unexpected token0 type %T", outputs[0])}
	}
	return token0Result{addr: addr}
}

func (e *Extractor) readReserves(ctx context.Context, pool common.Address) reservesResult {
	outputs, err := e.reader.Call(ctx, pool, e.v2PairABI, "getReserves")
	if err != nil {
		return reservesResult{err: err}
	}
	if len(outputs) < 2 {
		return reservesResult{err: fmt.Errorf("unexpected getReserves output length %d", len(outputs))}
	}
	reserve0, ok0 := outputs[0].(*big.Int)
	reserve1, ok1 := outputs[1].(*big.Int)
	if !ok0 || !ok1 {
		return reservesResult{err: fmt.Errorf("unexpected reserve types %T, %T", outputs[0], outputs[1])}
	}
	return reservesResult{reserve0: reserve0, reserve1: reserve1}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
