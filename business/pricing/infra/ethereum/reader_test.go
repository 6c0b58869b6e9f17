package ethereum

import (
	"context"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlens/tokenlens/business/pricing/infra/uniswap"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

var (
	factoryAddr = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	pairAddr    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenA      = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
	tokenB      = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

type fakeCaller struct {
	response []byte
	err      error

	gotMsg goethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, msg goethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.gotMsg = msg
	return f.response, f.err
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test")
}

func v2FactoryABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(uniswap.V2FactoryABI))
	require.NoError(t, err)
	return parsed
}

func TestCallDecodesOutputs(t *testing.T) {
	factoryABI := v2FactoryABI(t)

	encoded, err := factoryABI.Methods["getPair"].Outputs.Pack(pairAddr)
	require.NoError(t, err)

	caller := &fakeCaller{response: encoded}
	reader, err := NewReader(caller, ReaderConfig{}, testLogger())
	require.NoError(t, err)

	outputs, err := reader.Call(context.Background(), factoryAddr, factoryABI, "getPair", tokenA, tokenB)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, pairAddr, outputs[0])

	// The call data carries the packed method selector and arguments.
	require.NotNil(t, caller.gotMsg.To)
	assert.Equal(t, factoryAddr, *caller.gotMsg.To)
	expectedData, err := factoryABI.Pack("getPair", tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, expectedData, caller.gotMsg.Data)
}

func TestCallTransportError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	reader, err := NewReader(caller, ReaderConfig{}, testLogger())
	require.NoError(t, err)

	_, err = reader.Call(context.Background(), factoryAddr, v2FactoryABI(t), "getPair", tokenA, tokenB)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeContractCallFailed, apperror.GetCode(err))
}

func TestCallUnknownMethod(t *testing.T) {
	caller := &fakeCaller{}
	reader, err := NewReader(caller, ReaderConfig{}, testLogger())
	require.NoError(t, err)

	_, err = reader.Call(context.Background(), factoryAddr, v2FactoryABI(t), "noSuchMethod")
	require.Error(t, err)
}

func TestCallDecodeFailure(t *testing.T) {
	// A truncated response cannot be unpacked as an address.
	caller := &fakeCaller{response: []byte{0x01, 0x02}}
	reader, err := NewReader(caller, ReaderConfig{}, testLogger())
	require.NoError(t, err)

	_, err = reader.Call(context.Background(), factoryAddr, v2FactoryABI(t), "getPair", tokenA, tokenB)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeContractCallFailed, apperror.GetCode(err))
}
