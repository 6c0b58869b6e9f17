// Package circuitbreaker wraps sony/gobreaker with app-level defaults and
// error-code translation.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tokenlens/tokenlens/internal/apperror"
)

// Config holds circuit breaker tuning parameters.
type Config struct {
	Name        string
	MaxRequests uint32        // allowed through while half-open
	Interval    time.Duration // counters reset interval while closed
	Timeout     time.Duration // open -> half-open delay
	MinRequests uint32        // minimum samples before tripping
	FailureRate float64       // trip threshold, 0..1
}

// DefaultConfig returns conservative defaults for RPC-facing breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// CircuitBreaker is a typed wrapper around gobreaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the given config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRate >= cfg.FailureRate
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker. An open breaker surfaces as an
// apperror with CodeCircuitOpen so callers can branch on it.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		return result, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err),
			apperror.WithContext(c.cb.Name()))
	}
	return result, err
}

// State returns the current breaker state string.
func (c *CircuitBreaker[T]) State() string {
	return c.cb.State().String()
}
