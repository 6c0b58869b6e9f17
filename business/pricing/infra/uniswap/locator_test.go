package uniswap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

var (
	v2Factory = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	v3Factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	refToken  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	uniToken  = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
	poolAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

// call records one Call invocation against the fake reader.
type call struct {
	contract common.Address
	method   string
	args     []any
}

// fakeReader replays canned outputs keyed by method and records every call.
type fakeReader struct {
	calls []call

	// results maps "method" or "method/fee" to outputs.
	results map[string][]any
	errs    map[string]error
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		results: make(map[string][]any),
		errs:    make(map[string]error),
	}
}

func (f *fakeReader) key(method string, args []any) string {
	if method == "getPool" && len(args) == 3 {
		return fmt.Sprintf("%s/%v", method, args[2])
	}
	return method
}

func (f *fakeReader) Call(_ context.Context, contract common.Address, _ abi.ABI, method string, args ...any) ([]any, error) {
	f.calls = append(f.calls, call{contract: contract, method: method, args: args})
	key := f.key(method, args)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.results[key]; ok {
		return out, nil
	}
	return []any{common.Address{}}, nil
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test")
}

func newTestLocator(t *testing.T, reader *fakeReader) *Locator {
	t.Helper()
	locator, err := NewLocator(reader, LocatorConfig{
		V2Factory:      v2Factory,
		V3Factory:      v3Factory,
		ReferenceToken: refToken,
		FeeTiers:       []int{500, 3000, 10000},
	}, testLogger())
	require.NoError(t, err)
	return locator
}

func TestFindConstantProductPool(t *testing.T) {
	reader := newFakeReader()
	reader.results["getPair"] = []any{poolAddr}
	locator := newTestLocator(t, reader)

	addr, found, err := locator.FindConstantProductPool(context.Background(), uniToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, poolAddr, addr)

	require.Len(t, reader.calls, 1)
	assert.Equal(t, v2Factory, reader.calls[0].contract)
	assert.Equal(t, "getPair", reader.calls[0].method)
	assert.Equal(t, []any{uniToken, refToken}, reader.calls[0].args)
}

func TestFindConstantProductPoolAbsent(t *testing.T) {
	reader := newFakeReader()
	reader.results["getPair"] = []any{common.Address{}}
	locator := newTestLocator(t, reader)

	addr, found, err := locator.FindConstantProductPool(context.Background(), uniToken)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, common.Address{}, addr)
}

func TestFindConstantProductPoolReaderError(t *testing.T) {
	reader := newFakeReader()
	reader.errs["getPair"] = errors.New("execution reverted")
	locator := newTestLocator(t, reader)

	_, _, err := locator.FindConstantProductPool(context.Background(), uniToken)
	require.Error(t, err)
	assert.Equal(t, apperror.CodePoolLookupFailed, apperror.GetCode(err))
}

func TestFindConcentratedLiquidityPoolShortCircuits(t *testing.T) {
	// No pool at tier 500, pool at tier 3000; tier 10000 must never be
	// probed.
	reader := newFakeReader()
	reader.results["getPool/500"] = []any{common.Address{}}
	reader.results["getPool/3000"] = []any{poolAddr}
	locator := newTestLocator(t, reader)

	addr, found, err := locator.FindConcentratedLiquidityPool(context.Background(), uniToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, poolAddr, addr)

	require.Len(t, reader.calls, 2)
	for _, c := range reader.calls {
		assert.Equal(t, v3Factory, c.contract)
		assert.Equal(t, "getPool", c.method)
	}
	assert.Equal(t, big.NewInt(500), reader.calls[0].args[2])
	assert.Equal(t, big.NewInt(3000), reader.calls[1].args[2])
}

func TestFindConcentratedLiquidityPoolNoneAtAnyTier(t *testing.T) {
	reader := newFakeReader()
	locator := newTestLocator(t, reader)

	addr, found, err := locator.FindConcentratedLiquidityPool(context.Background(), uniToken)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, common.Address{}, addr)
	assert.Len(t, reader.calls, 3)
}

func TestFindConcentratedLiquidityPoolReaderError(t *testing.T) {
	reader := newFakeReader()
	reader.results["getPool/500"] = []any{common.Address{}}
	reader.errs["getPool/3000"] = errors.New("rpc timeout")
	locator := newTestLocator(t, reader)

	_, _, err := locator.FindConcentratedLiquidityPool(context.Background(), uniToken)
	require.Error(t, err)
	assert.Equal(t, apperror.CodePoolLookupFailed, apperror.GetCode(err))
	assert.Len(t, reader.calls, 2)
}
