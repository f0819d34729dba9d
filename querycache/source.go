package querycache

import (
	"context"

	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
)

// Source is a read-through content.Source. Reads are served from the cache,
// mutations go straight to the wrapped source; callers invalidate explicitly.
type Source struct {
	content.Source
	Cache *Cache
}

var _ content.Source = (*Source)(nil)

func NewSource(src content.Source, cache *Cache) *Source {
	return &Source{Source: src, Cache: cache}
}

func (s *Source) FetchThread(ctx context.Context, address string) (domain.Thread, error) {
	return Fetch(ctx, s.Cache, ThreadKey(address), func(ctx context.Context) (domain.Thread, error) {
		return s.Source.FetchThread(ctx, address)
	})
}

func (s *Source) FetchReply(ctx context.Context, id string) (domain.Reply, error) {
	return Fetch(ctx, s.Cache, ContextKey(id), func(ctx context.Context) (domain.Reply, error) {
		return s.Source.FetchReply(ctx, id)
	})
}

func (s *Source) FetchRepliesByParent(ctx context.Context, parentId, thread string) ([]domain.Reply, error) {
	return Fetch(ctx, s.Cache, ChildrenKey(thread, parentId), func(ctx context.Context) ([]domain.Reply, error) {
		return s.Source.FetchRepliesByParent(ctx, parentId, thread)
	})
}

func (s *Source) FetchRepliesPaginated(ctx context.Context, thread string, pageSize int, cursor string) (domain.RepliesPage, error) {
	return Fetch(ctx, s.Cache, RepliesKey(thread, cursor), func(ctx context.Context) (domain.RepliesPage, error) {
		return s.Source.FetchRepliesPaginated(ctx, thread, pageSize, cursor)
	})
}

func (s *Source) FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error) {
	return Fetch(ctx, s.Cache, ThreadsKey(community, cursor), func(ctx context.Context) (domain.ThreadsPage, error) {
		return s.Source.FetchThreads(ctx, community, pageSize, cursor)
	})
}

func (s *Source) LookupReputation(ctx context.Context, wallet, account string) (domain.Reputation, error) {
	return Fetch(ctx, s.Cache, ReputationKey(wallet, account), func(ctx context.Context) (domain.Reputation, error) {
		return s.Source.LookupReputation(ctx, wallet, account)
	})
}
