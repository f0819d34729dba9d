// Package content talks to the external content API that stores communities,
// threads and replies.
package content

import (
	"context"

	"github.com/lens-forum/app/domain"
)

// Source is everything the client needs from the content API.
// The HTTP Client is the production implementation; tests use in-memory fakes.
type Source interface {
	FetchThread(ctx context.Context, address string) (domain.Thread, error)
	// FetchReply returns ErrNotFound when the reply does not exist
	FetchReply(ctx context.Context, id string) (domain.Reply, error)
	FetchRepliesByParent(ctx context.Context, parentId, thread string) ([]domain.Reply, error)
	FetchRepliesPaginated(ctx context.Context, thread string, pageSize int, cursor string) (domain.RepliesPage, error)
	FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error)

	CreateThread(ctx context.Context, community string, req domain.CreateThreadRequest) (domain.Thread, error)
	CreateReply(ctx context.Context, parentId string, req domain.CreateReplyRequest) (domain.Reply, error)
	Vote(ctx context.Context, postId, account string, vote domain.Vote) error

	LookupReputation(ctx context.Context, wallet, account string) (domain.Reputation, error)
}
