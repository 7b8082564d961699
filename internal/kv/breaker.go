package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrBackendUnavailable is returned while the breaker is open.
var ErrBackendUnavailable = errors.New("kv backend unavailable")

// BreakerConfig holds circuit breaker settings for a guarded store.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a trial request is allowed.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns defaults suitable for a local Redis or Postgres.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

type getResult struct {
	value string
	ok    bool
}

// Breaker guards a Store with a circuit breaker so that an unreachable
// backend fails fast instead of stalling every mutation.
type Breaker struct {
	store  Store
	cb     *gobreaker.CircuitBreaker[getResult]
	logger *slog.Logger
}

// NewBreaker wraps store with a circuit breaker.
func NewBreaker(store Store, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller giving up says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("kv circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Breaker{
		store:  store,
		cb:     gobreaker.NewCircuitBreaker[getResult](settings),
		logger: logger,
	}
}

// Get reads through the breaker.
func (b *Breaker) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.cb.Execute(func() (getResult, error) {
		value, ok, err := b.store.Get(ctx, key)
		return getResult{value: value, ok: ok}, err
	})
	if err != nil {
		return "", false, b.wrap(err)
	}
	return res.value, res.ok, nil
}

// Set writes through the breaker.
func (b *Breaker) Set(ctx context.Context, key, value string) error {
	_, err := b.cb.Execute(func() (getResult, error) {
		return getResult{}, b.store.Set(ctx, key, value)
	})
	return b.wrap(err)
}

// Delete removes key through the breaker when the wrapped store supports it.
func (b *Breaker) Delete(ctx context.Context, key string) error {
	d, ok := b.store.(Deleter)
	if !ok {
		return nil
	}
	_, err := b.cb.Execute(func() (getResult, error) {
		return getResult{}, d.Delete(ctx, key)
	})
	return b.wrap(err)
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return err
}
