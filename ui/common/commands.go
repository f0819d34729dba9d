package common

import "github.com/lens-forum/app/domain"

type SessionState uint

const (
	CommunityView SessionState = iota // Thread list of the community
	ThreadView                        // Thread page with the reply tree
	NewThreadView                     // Thread creation form
)

// ActivateViewMsg is sent when a view becomes active (visible)
type ActivateViewMsg struct{}

// DeactivateViewMsg is sent when a view becomes inactive (hidden)
type DeactivateViewMsg struct{}

// ViewThreadMsg opens the thread page for Address
type ViewThreadMsg struct {
	Address string
	Title   string
}

// NewThreadMsg opens the creation form for a community
type NewThreadMsg struct {
	Community string
}

// ThreadCreatedMsg is sent after a thread was published
type ThreadCreatedMsg struct {
	Thread domain.Thread
}

// StatusMsg is a one-line notice for the footer
type StatusMsg struct {
	Text  string
	Error bool
}
