package common

import (
	"context"
	"time"

	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/querycache"
	"github.com/lens-forum/app/thread"
)

// Env carries what every view of a session needs: the cached content
// source, the session's account and the forum settings.
type Env struct {
	Source          content.Source
	Cache           *querycache.Cache // nil disables invalidation
	Account         domain.Account
	Community       string
	PageSize        int
	Timeout         time.Duration
	Gate            thread.Gate
	MaxContextDepth int
}

// Context returns the context a single remote call runs with
func (e Env) Context() (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), e.Timeout)
}

// Invalidate drops cached queries under each prefix
func (e Env) Invalidate(prefixes ...querycache.Key) {
	if e.Cache == nil {
		return
	}
	for _, p := range prefixes {
		e.Cache.Invalidate(p)
	}
}

// Limit is the page size used for list queries
func (e Env) Limit() int {
	if e.PageSize <= 0 {
		return thread.DefaultPageSize
	}
	return e.PageSize
}
