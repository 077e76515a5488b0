package breaker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"FeedstockSourcing/internal/domain"
)

// Settings tunes a circuit breaker around an external HTTP service.
type Settings struct {
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// DefaultSettings returns the breaker tuning used for the routing and harvest-model services.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// New builds a breaker. Errors matching one of ignore count as successes, so
// per-request rejections such as an unroutable point do not open the circuit.
func New(name string, cfg Settings, log *slog.Logger, ignore ...error) *gobreaker.CircuitBreaker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg == (Settings{}) {
		cfg = DefaultSettings()
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			for _, target := range ignore {
				if errors.Is(err, target) {
					return true
				}
			}
			return false
		},
	})
}

// Do runs fn through cb and returns its typed result. Calls refused by an open or
// half-open breaker are wrapped with domain.ErrServiceUnavailable.
func Do[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", cb.Name(), domain.ErrServiceUnavailable, err)
		}
		return zero, err
	}
	return out.(T), nil
}
