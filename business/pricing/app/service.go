package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tokenlens/tokenlens/business/pricing/domain"
	"github.com/tokenlens/tokenlens/internal/apperror"
	"github.com/tokenlens/tokenlens/internal/logger"
)

// PriceService resolves a token's price against the reference asset and a
// fiat unit. It owns the precedence policy between pool designs; all
// network I/O goes through the injected ports.
type PriceService struct {
	locator   PoolLocator
	extractor PriceExtractor
	oracle    RateOracle
	logger    logger.LoggerInterface
}

// NewPriceService creates a PriceService with the given collaborators.
func NewPriceService(locator PoolLocator, extractor PriceExtractor, oracle RateOracle, log logger.LoggerInterface) *PriceService {
	return &PriceService{
		locator:   locator,
		extractor: extractor,
		oracle:    oracle,
		logger:    log,
	}
}

type poolResult struct {
	pool  domain.PoolReference
	found bool
	err   error
}

type rateResult struct {
	rate float64
	err  error
}

// GetPrice resolves the token's spot price. The two pool lookups and the
// oracle fetch run in parallel and all three are awaited before any error
// is acted on; a failure in any branch voids the whole call. When pools
// exist under both designs, the concentrated-liquidity price overwrites
// the constant-product one. Absent pools yield a quote with nil price
// fields, not an error.
func (s *PriceService) GetPrice(ctx context.Context, token common.Address) (domain.Quote, error) {
	cpCh := make(chan poolResult, 1)
	clCh := make(chan poolResult, 1)
	rateCh := make(chan rateResult, 1)

	go func() {
		addr, found, err := s.locator.FindConstantProductPool(ctx, token)
		cpCh <- poolResult{domain.PoolReference{Design: domain.ConstantProduct, Address: addr}, found, err}
	}()
	go func() {
		addr, found, err := s.locator.FindConcentratedLiquidityPool(ctx, token)
		clCh <- poolResult{domain.PoolReference{Design: domain.ConcentratedLiquidity, Address: addr}, found, err}
	}()
	go func() {
		rate, err := s.oracle.LatestRate(ctx)
		rateCh <- rateResult{rate, err}
	}()

	// Join all three before inspecting errors. There is no cancellation
	// of siblings on early failure; in-flight calls run to completion.
	cp := <-cpCh
	cl := <-clCh
	rate := <-rateCh

	if err := firstError(cp.err, cl.err, rate.err); err != nil {
		return domain.Quote{}, s.resolutionFailed(ctx, token, err)
	}

	quote := domain.NewQuote(token)

	if cp.found {
		price, err := s.extractor.PriceFromConstantProductPool(ctx, cp.pool)
		if err != nil {
			return domain.Quote{}, s.resolutionFailed(ctx, token, err)
		}
		quote.PriceInReference = &price
	}

	if cl.found {
		price, err := s.extractor.PriceFromConcentratedLiquidityPool(ctx, cl.pool)
		if err != nil {
			return domain.Quote{}, s.resolutionFailed(ctx, token, err)
		}
		// Concentrated liquidity is authoritative when both designs
		// resolved.
		quote.PriceInReference = &price
	}

	if quote.PriceInReference != nil {
		fiat := *quote.PriceInReference * rate.rate
		quote.PriceInFiat = &fiat
	}

	s.logger.Debug(ctx, "price resolved",
		"token", token.Hex(),
		"cp_pool_found", cp.found,
		"cl_pool_found", cl.found,
		"price_reference", quote.ReferenceString(),
		"price_fiat", quote.FiatString(),
	)

	return quote, nil
}

// ReferenceFiatRate exposes the oracle's current reference/fiat rate.
func (s *PriceService) ReferenceFiatRate(ctx context.Context) (float64, error) {
	return s.oracle.LatestRate(ctx)
}

func (s *PriceService) resolutionFailed(ctx context.Context, token common.Address, cause error) error {
	s.logger.Warn(ctx, "price resolution failed", "token", token.Hex(), "error", cause)
	return apperror.New(apperror.CodePriceResolutionFailed,
		apperror.WithCause(cause),
		apperror.WithContext("token "+token.Hex()))
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
