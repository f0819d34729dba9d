package thread

import (
	"errors"

	"github.com/lens-forum/app/util"
)

var ErrEmptyReply = errors.New("Reply cannot be empty")

type ComposerKind int

const (
	ComposerNone ComposerKind = iota
	ComposerThread
	ComposerReply
)

// Composer identifies which composer is open: none, the thread-level one,
// or the one under a specific reply. It is comparable and used as a map key.
type Composer struct {
	Kind    ComposerKind
	ReplyId string
}

func ThreadComposer() Composer {
	return Composer{Kind: ComposerThread}
}

func ReplyComposer(id string) Composer {
	return Composer{Kind: ComposerReply, ReplyId: id}
}

func (c Composer) IsOpen() bool {
	return c.Kind != ComposerNone
}

// ParentId is the post a reply from this composer is attached to
func (c Composer) ParentId(rootId string) string {
	if c.Kind == ComposerReply {
		return c.ReplyId
	}
	return rootId
}

// Composing holds the single open composer of a page and the drafts of every
// composer the user has typed into.
type Composing struct {
	Current Composer
	drafts  map[Composer]string
}

func NewComposing() *Composing {
	return &Composing{drafts: make(map[Composer]string)}
}

// Open switches to c; the draft of the previously open composer is kept
func (s *Composing) Open(c Composer) {
	s.Current = c
}

// Cancel closes the open composer and discards its draft
func (s *Composing) Cancel() {
	delete(s.drafts, s.Current)
	s.Current = Composer{}
}

func (s *Composing) Draft(c Composer) string {
	return s.drafts[c]
}

func (s *Composing) SetDraft(text string) {
	if !s.Current.IsOpen() {
		return
	}
	if text == "" {
		delete(s.drafts, s.Current)
		return
	}
	s.drafts[s.Current] = text
}

// Prepare validates the open composer's draft and returns the normalized
// content and the parent it replies to
func (s *Composing) Prepare(rootId string) (parentId, text string, err error) {
	if !s.Current.IsOpen() {
		return "", "", errors.New("no composer open")
	}
	text = util.NormalizeReplyContent(s.drafts[s.Current])
	if util.IsBlank(text) {
		return "", "", ErrEmptyReply
	}
	return s.Current.ParentId(rootId), text, nil
}

// Submitted clears the draft of c and closes it if it is still open
func (s *Composing) Submitted(c Composer) {
	delete(s.drafts, c)
	if s.Current == c {
		s.Current = Composer{}
	}
}
