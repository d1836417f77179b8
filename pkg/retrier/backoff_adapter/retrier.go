package backoff_adapter

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"packagesync/pkg/retrier"
)

type Retrier struct {
	config retrier.Config
}

func New(config retrier.Config) *Retrier {
	return &Retrier{config: config}
}

func (r *Retrier) ExecuteWithContext(ctx context.Context, fn func(context.Context) error) error {
	operation := func() error {
		err := fn(ctx)
		if err != nil && r.config.ShouldRetry != nil && !r.config.ShouldRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if r.config.OnRetry != nil {
		notify = backoff.Notify(r.config.OnRetry)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(r.newBackOff(), ctx), notify)
}

func (r *Retrier) newBackOff() backoff.BackOff {
	var b backoff.BackOff
	switch r.config.Policy {
	case retrier.Linear:
		b = &linearBackOff{base: r.config.BaseDelay}
	default:
		b = backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(r.config.InitialInterval),
			backoff.WithMaxInterval(r.config.MaxInterval),
			backoff.WithMaxElapsedTime(r.config.MaxElapsedTime),
			backoff.WithRandomizationFactor(r.config.Randomization),
			backoff.WithMultiplier(r.config.Multiplier),
		)
	}

	if r.config.MaxAttempts > 0 {
		// WithMaxRetries считает повторы, а не попытки
		b = backoff.WithMaxRetries(b, r.config.MaxAttempts-1)
	}
	return b
}

// linearBackOff пауза перед n-м повтором равна base*n.
type linearBackOff struct {
	base    time.Duration
	attempt int64
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return l.base * time.Duration(l.attempt)
}

func (l *linearBackOff) Reset() {
	l.attempt = 0
}
