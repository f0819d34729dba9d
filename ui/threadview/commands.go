package threadview

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui/common"
)

// Every result carries the thread address it was issued for; results for a
// thread that is no longer shown are dropped.

type threadLoadedMsg struct {
	address string
	thread  domain.Thread
	err     error
}

type repliesLoadedMsg struct {
	address string
	cursor  string
	page    domain.RepliesPage
	err     error
}

type contextLoadedMsg struct {
	address string
	req     thread.Request
	chain   []domain.Reply
	err     error
}

type childrenLoadedMsg struct {
	address  string
	req      thread.Request
	children []domain.Reply
	err      error
}

type replyPostedMsg struct {
	address  string
	target   thread.Composer
	parentId string
	reply    domain.Reply
	err      error
}

type votedMsg struct {
	address string
	reply   domain.Reply
	vote    domain.Vote
	err     error
}

func loadThread(env common.Env, address string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		t, err := env.Source.FetchThread(ctx, address)
		return threadLoadedMsg{address: address, thread: t, err: err}
	}
}

func loadReplies(env common.Env, address, cursor string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		page, err := env.Source.FetchRepliesPaginated(ctx, address, env.Limit(), cursor)
		return repliesLoadedMsg{address: address, cursor: cursor, page: page, err: err}
	}
}

func resolveContext(env common.Env, address, rootId string, req thread.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		chain, err := thread.ResolveContext(ctx, env.Source, req.ParentId, rootId, env.MaxContextDepth)
		return contextLoadedMsg{address: address, req: req, chain: chain, err: err}
	}
}

func loadChildren(env common.Env, address string, req thread.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		children, err := env.Source.FetchRepliesByParent(ctx, req.ReplyId, address)
		return childrenLoadedMsg{address: address, req: req, children: children, err: err}
	}
}

func postReply(env common.Env, address string, target thread.Composer, parentId string, req domain.CreateReplyRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		reply, err := env.Source.CreateReply(ctx, parentId, req)
		return replyPostedMsg{address: address, target: target, parentId: parentId, reply: reply, err: err}
	}
}

func castVote(env common.Env, address string, reply domain.Reply, vote domain.Vote) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		err := env.Source.Vote(ctx, reply.Id, env.Account.AccountAddress, vote)
		return votedMsg{address: address, reply: reply, vote: vote, err: err}
	}
}
