// Package thread holds the state of a thread page that is independent of any
// rendering: context chains, the lazily expanded reply tree, the composer,
// pagination and the new-thread form.
package thread

import (
	"context"
	"errors"

	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
)

// DefaultMaxContextDepth bounds a context walk when no limit is configured
const DefaultMaxContextDepth = 64

type ReplyFetcher interface {
	FetchReply(ctx context.Context, id string) (domain.Reply, error)
}

// ResolveContext walks up from parentId and returns the ancestors strictly
// below the root post, ordered root to leaf, ending with the immediate parent.
//
// A missing ancestor ends the walk normally. Any other fetch error ends it too
// and is returned together with the chain collected so far. The walk never
// visits an id twice and stops after maxDepth fetches.
func ResolveContext(ctx context.Context, f ReplyFetcher, parentId, rootId string, maxDepth int) ([]domain.Reply, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxContextDepth
	}

	var chain []domain.Reply
	seen := make(map[string]bool)
	ptr := parentId

	for ptr != "" && ptr != rootId && !seen[ptr] && len(chain) < maxDepth {
		seen[ptr] = true

		reply, err := f.FetchReply(ctx, ptr)
		if errors.Is(err, content.ErrNotFound) {
			break
		}
		if err != nil {
			return reverse(chain), err
		}
		if reply.Id == "" || reply.Id == rootId {
			break
		}

		chain = append(chain, reply)
		ptr = reply.ParentReplyId
	}
	return reverse(chain), nil
}

// reverse turns the leaf-to-root walk order into display order
func reverse(chain []domain.Reply) []domain.Reply {
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
