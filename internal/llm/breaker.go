package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/metrics"
)

// BreakerSettings configures a BreakerClient.
type BreakerSettings struct {
	Name         string
	MinRequests  uint32        // requests in the window before the breaker may trip
	FailureRatio float64       // failure share at or above which it trips
	Interval     time.Duration // closed-state counting window; 0 never resets
	OpenTimeout  time.Duration // time spent open before probing again
}

// DefaultBreakerSettings opens after 60% failures over at least 5 calls and
// probes again after a minute.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "scoring-oracle",
		MinRequests:  5,
		FailureRatio: 0.6,
		Interval:     time.Minute,
		OpenTimeout:  time.Minute,
	}
}

// BreakerClient wraps a Client with a circuit breaker so a failing provider
// is skipped quickly instead of costing every request a full timeout.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[string]
	name string
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Client, s BreakerSettings) *BreakerClient {
	if s.Name == "" {
		s.Name = DefaultBreakerSettings().Name
	}
	log := logging.Component("circuit_breaker")
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				log.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio).Msg("opening circuit")
				return true
			}
			return false
		},
		// A caller giving up is not a provider fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerClient{next: next, cb: cb, name: s.Name}
}

// GenerateJSON calls the wrapped client unless the circuit is open.
func (b *BreakerClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.GenerateJSON(ctx, prompt, tier)
	})
}

// GetModel delegates to the wrapped client.
func (b *BreakerClient) GetModel(tier ModelTier) string {
	return b.next.GetModel(tier)
}

// Close closes the wrapped client.
func (b *BreakerClient) Close() error {
	return b.next.Close()
}

// State reports the current breaker state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

// IsCircuitOpen reports whether err is a rejection by an open or probing breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
