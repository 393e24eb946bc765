package llm

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"go.uber.org/zap"
)

// BreakerProvider is a decorator that short-circuits calls after repeated
// failures and bounds the number of concurrent requests.
type BreakerProvider struct {
	inner   Provider
	cb      circuitbreaker.CircuitBreaker[*Response]
	bh      bulkhead.Bulkhead[*Response]
	timeout time.Duration
}

// WithBreaker wraps a Provider with a circuit breaker. timeout bounds each
// call including whatever retries happen underneath; zero means no bound.
func WithBreaker(p Provider, cfg BreakerConfig, timeout time.Duration, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 60 * time.Second
	}

	bp := &BreakerProvider{inner: p, timeout: timeout}
	bp.cb = circuitbreaker.New[*Response](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("llm circuit breaker state change",
				zap.String("model", p.ModelID()),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	if cfg.MaxConcurrent > 0 {
		bp.bh = bulkhead.New[*Response](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 2,
			QueueTimeout:  30 * time.Second,
		})
	}

	return bp
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	operation := func(ctx context.Context) (*Response, error) {
		return b.inner.Generate(ctx, req)
	}
	if b.bh != nil {
		operation = func(ctx context.Context) (*Response, error) {
			return b.bh.Execute(ctx, func(ctx context.Context) (*Response, error) {
				return b.inner.Generate(ctx, req)
			})
		}
	}

	resp, err := b.cb.Execute(ctx, operation)
	if err != nil {
		if ctx.Err() != nil || IsServiceError(err) {
			return nil, err
		}
		// Open circuit and full bulkhead come back as plain errors.
		return nil, &ErrProviderUnavailable{Err: err}
	}
	return resp, nil
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}
