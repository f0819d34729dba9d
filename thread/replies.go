package thread

import (
	"sort"
	"time"

	"github.com/lens-forum/app/domain"
)

// DefaultPageSize is the number of first-level replies requested per page
const DefaultPageSize = 50

var epoch = time.Unix(0, 0).UTC()

// PrepareReplies drops the root post from a fetched page and orders the rest
// by creation time, oldest first. Replies without a timestamp sort as the epoch.
// The input is not modified.
func PrepareReplies(items []domain.Reply, rootId string) []domain.Reply {
	out := make([]domain.Reply, 0, len(items))
	for _, r := range items {
		if r.Id == rootId {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return createdAt(out[i]).Before(createdAt(out[j]))
	})
	return out
}

func createdAt(r domain.Reply) time.Time {
	if r.CreatedAt.IsZero() {
		return epoch
	}
	return r.CreatedAt
}
