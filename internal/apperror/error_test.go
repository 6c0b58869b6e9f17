package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	err := New(CodePoolLookupFailed)

	assert.Equal(t, CodePoolLookupFailed, err.Code)
	assert.NotEmpty(t, err.Message)
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.False(t, err.Timestamp.IsZero())
}

func TestNewWithOptions(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(CodeContractCallFailed,
		WithMessage("call failed"),
		WithContext("getPair"),
		WithStatusCode(http.StatusGatewayTimeout),
		WithCause(cause),
	)

	assert.Equal(t, "call failed", err.Message)
	assert.Equal(t, "getPair", err.Context)
	assert.Equal(t, http.StatusGatewayTimeout, err.StatusCode)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "CONTRACT_CALL_FAILED")
	assert.Contains(t, err.Error(), "getPair")
}

func TestWrapPlainError(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, CodeOracleUnavailable, "latestAnswer")

	require.NotNil(t, err)
	assert.Equal(t, CodeOracleUnavailable, err.Code)
	assert.Equal(t, "latestAnswer", err.Context)
	assert.ErrorIs(t, err, cause)
}

func TestWrapPreservesAppError(t *testing.T) {
	inner := New(CodePoolLookupFailed)
	err := Wrap(inner, CodeInternalError, "outer context")

	assert.Equal(t, CodePoolLookupFailed, err.Code)
	assert.Equal(t, "outer context", err.Context)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternalError, ""))
}

func TestGetCode(t *testing.T) {
	inner := New(CodeOracleUnavailable)
	outer := New(CodePriceResolutionFailed, WithCause(inner))

	assert.Equal(t, CodePriceResolutionFailed, GetCode(outer))
	assert.Equal(t, CodeUnknownError, GetCode(errors.New("plain")))
	assert.Equal(t, CodeUnknownError, GetCode(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeCircuitOpen, WithContext("eth reader"))

	assert.ErrorIs(t, err, New(CodeCircuitOpen))
	assert.NotErrorIs(t, err, New(CodePoolLookupFailed))
}

func TestIsFindsWrappedCode(t *testing.T) {
	inner := New(CodePoolLookupFailed)
	outer := New(CodePriceResolutionFailed, WithCause(inner))

	assert.ErrorIs(t, outer, New(CodePoolLookupFailed))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(New(CodeNotFound)))
	assert.False(t, IsAppError(errors.New("plain")))
}

func TestDefaultStatusCodes(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeOracleUnavailable, http.StatusServiceUnavailable},
		{CodeEthereumConnectionFailed, http.StatusServiceUnavailable},
		{CodeCircuitOpen, http.StatusServiceUnavailable},
		{CodePoolLookupFailed, http.StatusBadGateway},
		{CodePriceExtractionFailed, http.StatusBadGateway},
		{CodePriceResolutionFailed, http.StatusBadGateway},
		{CodeContractCallFailed, http.StatusBadGateway},
		{CodeEthereumRPCError, http.StatusBadGateway},
		{CodeUnknownError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code).StatusCode)
		})
	}
}
