package uniswap

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlens/tokenlens/business/pricing/domain"
	"github.com/tokenlens/tokenlens/internal/apperror"
)

func newTestExtractor(t *testing.T, reader *fakeReader) *Extractor {
	t.Helper()
	extractor, err := NewExtractor(reader, refToken, testLogger())
	require.NoError(t, err)
	return extractor
}

func cpPool() domain.PoolReference {
	return domain.PoolReference{Design: domain.ConstantProduct, Address: poolAddr}
}

func clPool() domain.PoolReference {
	return domain.PoolReference{Design: domain.ConcentratedLiquidity, Address: poolAddr}
}

func TestPriceFromConstantProductPoolReferenceIsToken0(t *testing.T) {
	reader := newFakeReader()
	reader.results["token0"] = []any{refToken}
	reader.results["getReserves"] = []any{big.NewInt(1000), big.NewInt(4), uint32(0)}
	extractor := newTestExtractor(t, reader)

	price, err := extractor.PriceFromConstantProductPool(context.Background(), cpPool())
	require.NoError(t, err)
	assert.Equal(t, 0.004, price)
}

func TestPriceFromConstantProductPoolReferenceIsToken1(t *testing.T) {
	reader := newFakeReader()
	reader.results["token0"] = []any{uniToken}
	reader.results["getReserves"] = []any{big.NewInt(1000), big.NewInt(4), uint32(0)}
	extractor := newTestExtractor(t, reader)

	price, err := extractor.PriceFromConstantProductPool(context.Background(), cpPool())
	require.NoError(t, err)
	assert.Equal(t, 250.0, price)
}

func TestPriceFromConstantProductPoolZeroReferenceReserve(t *testing.T) {
	reader := newFakeReader()
	reader.results["token0"] = []any{refToken}
	reader.results["getReserves"] = []any{big.NewInt(0), big.NewInt(1000), uint32(0)}
	extractor := newTestExtractor(t, reader)

	_, err := extractor.PriceFromConstantProductPool(context.Background(), cpPool())
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceExtractionFailed, apperror.GetCode(err))
}

func TestPriceFromConstantProductPoolReaderError(t *testing.T) {
	reader := newFakeReader()
	reader.results["token0"] = []any{refToken}
	reader.errs["getReserves"] = errors.New("rpc timeout")
	extractor := newTestExtractor(t, reader)

	_, err := extractor.PriceFromConstantProductPool(context.Background(), cpPool())
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceExtractionFailed, apperror.GetCode(err))
}

func TestPriceFromConstantProductPoolDesignMismatch(t *testing.T) {
	extractor := newTestExtractor(t, newFakeReader())

	_, err := extractor.PriceFromConstantProductPool(context.Background(), clPool())
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceExtractionFailed, apperror.GetCode(err))
}

func TestPriceFromConcentratedLiquidityPool(t *testing.T) {
	// sqrtPriceX96 = 2^96 encodes a price of exactly 1.0.
	reader := newFakeReader()
	reader.results["slot0"] = []any{
		new(big.Int).Lsh(big.NewInt(1), 96),
		big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), true,
	}
	extractor := newTestExtractor(t, reader)

	price, err := extractor.PriceFromConcentratedLiquidityPool(context.Background(), clPool())
	require.NoError(t, err)
	assert.Equal(t, 1.0, price)
}

func TestPriceFromConcentratedLiquidityPoolReaderError(t *testing.T) {
	reader := newFakeReader()
	reader.errs["slot0"] = errors.New("execution reverted")
	extractor := newTestExtractor(t, reader)

	_, err := extractor.PriceFromConcentratedLiquidityPool(context.Background(), clPool())
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceExtractionFailed, apperror.GetCode(err))
}

func TestPriceFromConcentratedLiquidityPoolDesignMismatch(t *testing.T) {
	extractor := newTestExtractor(t, newFakeReader())

	_, err := extractor.PriceFromConcentratedLiquidityPool(context.Background(), cpPool())
	require.Error(t, err)
	assert.Equal(t, apperror.CodePriceExtractionFailed, apperror.GetCode(err))
}
