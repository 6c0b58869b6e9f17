// Package ethereum implements the ChainReader port on top of go-ethereum.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokenlens/tokenlens/business/pricing/app"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/circuitbreaker"
	"github.com/tokenlens/tokenlens/internal/logger"
	"github.com/tokenlens/tokenlens/internal/ratelimit"
)

const (
	tracerName = "chainreader"
	meterName  = "chainreader"
)

// ContractCaller is the slice of ethclient.Client the reader needs.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ReaderConfig holds transport-side tuning for the reader.
type ReaderConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// readerMetrics holds OTEL metric instruments.
type readerMetrics struct {
	callsTotal  metric.Int64Counter
	callLatency metric.Float64Histogram
	callErrors  metric.Int64Counter
}

// Reader implements app.ChainReader. Every call is rate limited and runs
// through a circuit breaker; results are ABI-decoded before returning.
type Reader struct {
	caller  ContractCaller
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *readerMetrics
}

var _ app.ChainReader = (*Reader)(nil)

// NewReader creates a Reader around the given caller.
func NewReader(caller ContractCaller, cfg ReaderConfig, log logger.LoggerInterface) (*Reader, error) {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 20
	}

	r := &Reader{
		caller:  caller,
		limiter: ratelimit.New(rps, cfg.RateLimitBurst),
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("eth-call")),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return r, nil
}

func (r *Reader) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &readerMetrics{}

	r.metrics.callsTotal, err = meter.Int64Counter(
		"chain_calls_total",
		metric.WithDescription("Total eth_call requests"),
	)
	if err != nil {
		return err
	}

	r.metrics.callLatency, err = meter.Float64Histogram(
		"chain_call_latency_ms",
		metric.WithDescription("eth_call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.callErrors, err = meter.Int64Counter(
		"chain_call_errors_total",
		metric.WithDescription("Total eth_call errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Call invokes a read-only contract method and returns the decoded
// outputs. Transport failures and reverts surface as CONTRACT_CALL_FAILED.
func (r *Reader) Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	ctx, span := r.tracer.Start(ctx, "ethereum.call",
		trace.WithAttributes(
			attribute.String("contract", contract.Hex()),
			attribute.String("method", method),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.callsTotal.Add(ctx, 1)

	callData, err := contractABI.Pack(method, args...)
	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "encode failed")
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "rate limit wait aborted")
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, contract.Hex())))
	}

	raw, err := r.cb.Execute(func() ([]byte, error) {
		return r.caller.CallContract(ctx, ethereum.CallMsg{
			To:   &contract,
			Data: callData,
		}, nil)
	})

	r.metrics.callLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, contract.Hex())))
	}

	outputs, err := contractABI.Unpack(method, raw)
	if err != nil {
		r.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "decode failed")
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("decode %s result from %s", method, contract.Hex())))
	}

	span.SetStatus(codes.Ok, "call completed")
	return outputs, nil
}
