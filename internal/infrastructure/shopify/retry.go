package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"archie-shopify-sync/internal/domain"
)

// RetryConfig controls retries of throttled and server-failed requests
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries three times starting at 500ms
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// do runs fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent
func (rc RetryConfig) do(ctx context.Context, fn func() (time.Duration, error)) error {
	backoff := rc.InitialBackoff
	for attempt := 0; ; attempt++ {
		retryAfter, err := fn()
		if err == nil || attempt >= rc.MaxRetries || !retryable(ctx, err) {
			return err
		}

		wait := backoff
		if retryAfter > wait {
			wait = retryAfter
		}
		if rc.MaxBackoff > 0 && wait > rc.MaxBackoff {
			wait = rc.MaxBackoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		backoff *= 2
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var te *domain.TransportError
	if !errors.As(err, &te) {
		return false
	}
	switch {
	case te.Status == http.StatusTooManyRequests:
		return true
	case te.Status >= http.StatusInternalServerError:
		return true
	case te.Status == 0:
		// no response at all, e.g. a reset connection or a request timeout.
		// A body that does not decode will not decode on the next try either.
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		return !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr)
	}
	return false
}
