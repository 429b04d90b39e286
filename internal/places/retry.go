package places

import (
	"context"
	"time"

	"evntly_backend/platform/logger"
)

// DefaultRetryBackoff is the pause before the single retry of a 429/503.
const DefaultRetryBackoff = 1500 * time.Millisecond

// Searcher runs one place search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]Suggestion, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]Suggestion, error) {
	return f(ctx, query)
}

// RetryingSearcher retries exactly once, after a fixed backoff, when the
// first attempt fails with 429 or 503. Every other outcome passes through.
type RetryingSearcher struct {
	next    Searcher
	backoff time.Duration
	log     *logger.Logger
}

// WithRetry wraps next with the one-shot retry policy.
func WithRetry(next Searcher, backoff time.Duration, log *logger.Logger) *RetryingSearcher {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	return &RetryingSearcher{next: next, backoff: backoff, log: log}
}

// Search implements Searcher.
func (r *RetryingSearcher) Search(ctx context.Context, query string) ([]Suggestion, error) {
	results, err := r.next.Search(ctx, query)
	if err == nil || !IsTransient(err) {
		return results, err
	}

	code, _ := StatusCode(err)
	r.log.Info("transient geocoding failure, retrying once", "status", code, "backoff", r.backoff)

	timer := time.NewTimer(r.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return r.next.Search(ctx, query)
}
