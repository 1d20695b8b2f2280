// Package retry retries operations that fail with transient errors.
package retry

import (
	"context"
	"time"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/ulogger"
)

type Options struct {
	RetryCount          int
	BackoffMultiplier   int
	BackoffDurationType time.Duration
	Message             string
	ExponentialBackoff  bool
	BackoffFactor       float64
	MaxBackoff          time.Duration
	RetryIf             func(error) bool
}

type Option func(*Options)

func WithRetryCount(retryCount int) Option {
	return func(o *Options) {
		o.RetryCount = retryCount
	}
}

func WithBackoffMultiplier(multiplier int) Option {
	return func(o *Options) {
		o.BackoffMultiplier = multiplier
	}
}

func WithBackoffDurationType(d time.Duration) Option {
	return func(o *Options) {
		o.BackoffDurationType = d
	}
}

func WithMessage(message string) Option {
	return func(o *Options) {
		o.Message = message
	}
}

func WithExponentialBackoff() Option {
	return func(o *Options) {
		o.ExponentialBackoff = true
	}
}

func WithBackoffFactor(factor float64) Option {
	return func(o *Options) {
		o.BackoffFactor = factor
	}
}

func WithMaxBackoff(d time.Duration) Option {
	return func(o *Options) {
		o.MaxBackoff = d
	}
}

// WithRetryIf only retries errors for which fn returns true. Other errors are returned immediately.
func WithRetryIf(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryIf = fn
	}
}

func defaultOptions() *Options {
	return &Options{
		RetryCount:          3,
		BackoffMultiplier:   2,
		BackoffDurationType: time.Second,
		Message:             "retrying",
		BackoffFactor:       2.0,
		MaxBackoff:          30 * time.Second,
		RetryIf:             func(error) bool { return true },
	}
}

// Retry calls f until it succeeds, the retry count is exhausted or ctx is cancelled.
// The last error is returned when all attempts fail.
func Retry[T any](ctx context.Context, logger ulogger.Logger, f func() (T, error), opts ...Option) (T, error) {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	var (
		result  T
		err     error
		backoff = options.BackoffDurationType
	)

	for i := 0; i < options.RetryCount; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, errors.NewContextCanceledError("[Retry] %s", options.Message, ctxErr)
		}

		result, err = f()
		if err == nil {
			return result, nil
		}

		if !options.RetryIf(err) || i == options.RetryCount-1 {
			return result, err
		}

		logger.Warnf("[Retry] %s (attempt %d/%d): %v", options.Message, i+1, options.RetryCount, err)

		if options.ExponentialBackoff {
			err = sleepFunc(ctx, backoff)
			backoff = CappedExponentialBackoff(backoff, options.BackoffFactor, options.MaxBackoff)
		} else {
			err = BackoffAndSleep(ctx, i, options.BackoffMultiplier, options.BackoffDurationType)
		}

		if err != nil {
			return result, errors.NewContextCanceledError("[Retry] %s", options.Message, err)
		}
	}

	return result, err
}
