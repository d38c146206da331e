package llm

import (
	"context"
	"time"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/logger"
)

// defaultRetryDelays gives two extra attempts after the first failure.
var defaultRetryDelays = []time.Duration{1 * time.Second, 3 * time.Second}

// retryProvider wraps another Provider and re-issues transient failures.
// Only rate-limit and network errors are retried; auth, quota and
// validation failures surface immediately.
type retryProvider struct {
	inner  Provider
	log    *logger.Logger
	delays []time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps p with the standard transient-failure retry policy.
func WithRetry(p Provider, baseLog *logger.Logger) Provider {
	return &retryProvider{
		inner:  p,
		log:    baseLog.With("provider", p.Name()),
		delays: defaultRetryDelays,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryable(err error) bool {
	switch apierr.KindOf(err) {
	case apierr.KindProviderRateLimit, apierr.KindProviderNetwork:
		return true
	default:
		return false
	}
}

func (r *retryProvider) Name() string { return r.inner.Name() }

func (r *retryProvider) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(r.delays); attempt++ {
		if attempt > 0 {
			r.log.Warn("Retrying completion",
				"attempt", attempt+1,
				"delay", r.delays[attempt-1].String(),
				"error", lastErr)
			if err := r.sleep(ctx, r.delays[attempt-1]); err != nil {
				return "", lastErr
			}
		}
		text, err := r.inner.Complete(ctx, messages, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

// Stream retries only when the failure happened before any delta was
// delivered. Once output has reached the caller a replay would duplicate
// text, so mid-stream failures surface as-is.
func (r *retryProvider) Stream(ctx context.Context, messages []Message, opts Options, onDelta func(delta string)) error {
	var lastErr error
	for attempt := 0; attempt <= len(r.delays); attempt++ {
		if attempt > 0 {
			r.log.Warn("Retrying stream",
				"attempt", attempt+1,
				"delay", r.delays[attempt-1].String(),
				"error", lastErr)
			if err := r.sleep(ctx, r.delays[attempt-1]); err != nil {
				return lastErr
			}
		}
		delivered := false
		err := r.inner.Stream(ctx, messages, opts, func(delta string) {
			delivered = true
			onDelta(delta)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if delivered || !retryable(err) {
			return err
		}
	}
	return lastErr
}

func (r *retryProvider) CountTokens(ctx context.Context, text string) (int, error) {
	return r.inner.CountTokens(ctx, text)
}

func (r *retryProvider) TestConnection(ctx context.Context) bool {
	return r.inner.TestConnection(ctx)
}
