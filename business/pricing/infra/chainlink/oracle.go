// Package chainlink implements the RateOracle port against a Chainlink
// aggregator feed.
package chainlink

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokenlens/tokenlens/business/pricing/app"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

const tracerName = "chainlink"

// feedDecimals is the fixed-point precision of aggregator answers.
const feedDecimals = 8

// AggregatorABI covers the latest answer read on a Chainlink feed.
const AggregatorABI = `[
	{
		"inputs": [],
		"name": "latestAnswer",
		"outputs": [{"internalType": "int256", "name": "", "type": "int256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Feed implements app.RateOracle for one aggregator contract.
type Feed struct {
	reader  app.ChainReader
	feed    common.Address
	feedABI abi.ABI

	logger logger.LoggerInterface
	tracer trace.Tracer
}

var _ app.RateOracle = (*Feed)(nil)

// NewFeed creates a rate oracle bound to the given feed address.
func NewFeed(reader app.ChainReader, feed common.Address, log logger.LoggerInterface) (*Feed, error) {
	parsed, err := abi.JSON(strings.NewReader(AggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}

	return &Feed{
		reader:  reader,
		feed:    feed,
		feedABI: parsed,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// LatestRate fetches latestAnswer and converts the 8-decimal fixed-point
// integer to a float64 rate.
func (f *Feed) LatestRate(ctx context.Context) (float64, error) {
	ctx, span := f.tracer.Start(ctx, "chainlink.latest_rate",
		trace.WithAttributes(attribute.String("feed", f.feed.Hex())),
	)
	defer span.End()

	outputs, err := f.reader.Call(ctx, f.feed, f.feedABI, "latestAnswer")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("latestAnswer on "+f.feed.Hex()))
	}

	if len(outputs) < 1 {
		err := fmt.Errorf("empty latestAnswer output")
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("latestAnswer on "+f.feed.Hex()))
	}

	answer, ok := outputs[0].(*big.Int)
	if !ok {
		err := fmt.Errorf("unexpected latestAnswer type %T", outputs[0])
		span.SetStatus(codes.Error, err.Error())
		return 0, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithCause(err),
			apperror.WithContext("latestAnswer on "+f.feed.Hex()))
	}

	rate := decimal.NewFromBigInt(answer, -feedDecimals).InexactFloat64()

	span.SetAttributes(attribute.Float64("rate", rate))
	span.SetStatus(codes.Ok, "rate fetched")
	return rate, nil
}
