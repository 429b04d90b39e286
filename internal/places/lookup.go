package places

import (
	"context"
	"time"

	"evntly_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

const (
	sharedCacheTimeout = 250 * time.Millisecond
	upstreamCallBudget = 30 * time.Second
)

// SharedLookup sits in front of the retrying client for every session of the
// process. It consults the shared cache tier and collapses concurrent
// identical queries into one upstream call.
type SharedLookup struct {
	next   Searcher
	shared SharedCache
	group  singleflight.Group
	log    *logger.Logger
}

// NewSharedLookup wraps next. shared may be nil, which disables the tier.
func NewSharedLookup(next Searcher, shared SharedCache, log *logger.Logger) *SharedLookup {
	return &SharedLookup{next: next, shared: shared, log: log}
}

// Search implements Searcher. A caller whose ctx ends stops waiting, but the
// collapsed upstream call keeps running for the other callers and fills the
// shared cache.
func (l *SharedLookup) Search(ctx context.Context, query string) ([]Suggestion, error) {
	key := Normalize(query)

	if results, ok := l.fromShared(ctx, key); ok {
		return results, nil
	}

	ch := l.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upstreamCallBudget)
		defer cancel()

		results, err := l.next.Search(callCtx, query)
		if err != nil {
			return nil, err
		}
		l.toShared(callCtx, key, results)
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Suggestion), nil
	}
}

func (l *SharedLookup) fromShared(ctx context.Context, key string) ([]Suggestion, bool) {
	if l.shared == nil {
		return nil, false
	}
	getCtx, cancel := context.WithTimeout(ctx, sharedCacheTimeout)
	defer cancel()

	results, ok, err := l.shared.Get(getCtx, key)
	if err != nil {
		l.log.Warn("shared suggestion cache read failed", "error", err)
		return nil, false
	}
	return results, ok
}

func (l *SharedLookup) toShared(ctx context.Context, key string, results []Suggestion) {
	if l.shared == nil {
		return
	}
	setCtx, cancel := context.WithTimeout(ctx, sharedCacheTimeout)
	defer cancel()

	if err := l.shared.Set(setCtx, key, results); err != nil {
		l.log.Warn("shared suggestion cache write failed", "error", err)
	}
}
