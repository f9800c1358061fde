package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/thermal-policy-host/internal/connectors"
)

// ReliabilityConfig — параметры защиты канала к платформе.
type ReliabilityConfig struct {
	Name              string
	RateLimit         float64
	Burst             int
	Attempts          uint
	AttemptTimeout    time.Duration
	BreakerInterval   time.Duration
	BreakerTimeout    time.Duration
	BreakerMaxFailure uint32
}

// ReliableChannel оборачивает канал в rate limiter, circuit breaker и повторы.
type ReliableChannel struct {
	next    connectors.Channel
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cfg     ReliabilityConfig
}

func NewReliableChannel(next connectors.Channel, cfg ReliabilityConfig, metrics *Metrics, logger *zap.Logger) *ReliableChannel {
	if cfg.Name == "" {
		cfg.Name = "platform"
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 2 * time.Second
	}
	if cfg.BreakerMaxFailure == 0 {
		cfg.BreakerMaxFailure = 5
	}
	logger = logger.Named("reliability")

	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 3,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Больше BreakerMaxFailure ошибок подряд — открываемся
			return counts.ConsecutiveFailures > cfg.BreakerMaxFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("channel", name), zap.Stringer("from", from), zap.Stringer("to", to))
			if metrics != nil {
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &ReliableChannel{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
	}
}

func (c *ReliableChannel) Submit(ctx context.Context, req connectors.Request) (connectors.Result, error) {
	// 1. Rate Limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return connectors.Result{}, fmt.Errorf("rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	res, err := c.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(c.cfg.Attempts),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Платформа попросила подождать
				var tErr *connectors.ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		var out connectors.Result
		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
			defer cancel()

			var callErr error
			out, callErr = c.next.Submit(tCtx, req)
			return callErr
		})
		return out, retryErr
	})
	if err != nil {
		return connectors.Result{}, err
	}
	return res.(connectors.Result), nil
}

// State — текущее состояние предохранителя.
func (c *ReliableChannel) State() gobreaker.State {
	return c.cb.State()
}
