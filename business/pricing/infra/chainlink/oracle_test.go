package chainlink

import (
	"context"
	"errors"
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

var feedAddr = common.HexToAddress("0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419")

type fakeReader struct {
	outputs []any
	err     error

	gotContract common.Address
	gotMethod   string
}

func (f *fakeReader) Call(_ context.Context, contract common.Address, _ abi.ABI, method string, _ ...any) ([]any, error) {
	f.gotContract = contract
	f.gotMethod = method
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs, nil
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test")
}

func TestLatestRate(t *testing.T) {
	// 123456789012 at 8 decimals is 1234.56789012.
	reader := &fakeReader{outputs: []any{big.NewInt(123456789012)}}
	feed, err := NewFeed(reader, feedAddr, testLogger())
	require.NoError(t, err)

	rate, err := feed.LatestRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1234.56789012, rate, 1e-9)
	assert.Equal(t, feedAddr, reader.gotContract)
	assert.Equal(t, "latestAnswer", reader.gotMethod)
}

func TestLatestRateNegativeAnswer(t *testing.T) {
	// Negative answers are passed through unvalidated.
	reader := &fakeReader{outputs: []any{big.NewInt(-100000000)}}
	feed, err := NewFeed(reader, feedAddr, testLogger())
	require.NoError(t, err)

	rate, err := feed.LatestRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -1.0, rate, 1e-9)
}

func TestLatestRateReaderError(t *testing.T) {
	reader := &fakeReader{err: errors.New("execution reverted")}
	feed, err := NewFeed(reader, feedAddr, testLogger())
	require.NoError(t, err)

	_, err = feed.LatestRate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeOracleUnavailable, apperror.GetCode(err))
}

func TestLatestRateEmptyOutput(t *testing.T) {
	reader := &fakeReader{outputs: []any{}}
	feed, err := NewFeed(reader, feedAddr, testLogger())
	require.NoError(t, err)

	_, err = feed.LatestRate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeOracleUnavailable, apperror.GetCode(err))
}
