package domain

import (
	"strings"
	"time"
)

// Author is the public profile attached to threads and replies
type Author struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Handle returns the username without the namespace prefix (e.g. "lens/alice" -> "alice")
func (a Author) Handle() string {
	if idx := strings.LastIndex(a.Username, "/"); idx >= 0 {
		return a.Username[idx+1:]
	}
	return a.Username
}

// DisplayName falls back to the handle when the profile has no name
func (a Author) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	if h := a.Handle(); h != "" {
		return h
	}
	return "anonymous"
}

// RootPost is the opening post of a thread, rendered as the thread body
type RootPost struct {
	Id        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// Thread is a discussion inside a community
type Thread struct {
	Address      string   `json:"address"`
	Community    string   `json:"community"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tags         []string `json:"tags"`
	Author       Author   `json:"author"`
	RootPost     RootPost `json:"rootPost"`
	RepliesCount int      `json:"repliesCount"`
}

// Reply is a post somewhere below a thread's root post.
// ParentReplyId is empty or equal to the root post id for first-level replies.
type Reply struct {
	Id            string    `json:"id"`
	ParentReplyId string    `json:"parentReplyId,omitempty"`
	Author        Author    `json:"author"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	Upvotes       int       `json:"upvotes"`
	Downvotes     int       `json:"downvotes"`
	RepliesCount  int       `json:"repliesCount"`
	Tips          int       `json:"tips"`
}

// Score is the net vote count shown next to a reply
func (r Reply) Score() int {
	return r.Upvotes - r.Downvotes
}

// HasContext reports whether the reply sits below another reply rather than the root post
func (r Reply) HasContext(rootPostId string) bool {
	return r.ParentReplyId != "" && r.ParentReplyId != rootPostId
}

// PageInfo carries the opaque cursors of a paginated response. Empty means no page.
type PageInfo struct {
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

type RepliesPage struct {
	Items    []Reply  `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

type ThreadsPage struct {
	Items    []Thread `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

// CreateThreadRequest is the payload for publishing a new thread
type CreateThreadRequest struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Author  string   `json:"author"`
}

type CreateReplyRequest struct {
	Content string `json:"content"`
	Thread  string `json:"thread"`
	Author  string `json:"author,omitempty"`
}

// Vote is a reaction on a post
type Vote string

const (
	VoteUp   Vote = "upvote"
	VoteDown Vote = "downvote"
)

// Reputation is the result of a reputation lookup for a wallet/account pair
type Reputation struct {
	HasToken bool `json:"hasToken"`
	Score    int  `json:"score"`
	Eligible bool `json:"eligible"`
}
