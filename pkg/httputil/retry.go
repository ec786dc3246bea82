package httputil

import (
	"context"
	"time"

	"github.com/matzehuels/barrace/pkg/cache"
)

// RetryableError marks a transient failure (network error, 5xx, 429) that
// [Retry] should attempt again. It is the cache package's marker, so one
// backoff loop serves both remote fetches and cache backends.
type RetryableError = cache.RetryableError

// Retry executes fn up to attempts times, doubling delay after each failure.
// Errors not wrapped in [RetryableError] are returned immediately, and
// ctx.Err() is returned if the context ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return cache.Backoff{Attempts: attempts, Initial: delay}.Do(ctx, fn)
}
