package threadview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/querycache"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/ui/writereply"
)

const (
	threadAddr = "0xthread"
	rootId     = "root"
)

type fakeSource struct {
	mu        sync.Mutex
	thread    domain.Thread
	threadErr error
	replies   map[string]domain.Reply
	pages     map[string]domain.RepliesPage
	children  map[string][]domain.Reply
	childErr  error
	postErr   error
	calls     map[string]int
	posted    []domain.CreateReplyRequest
	parents   []string
	votes     []string
}

func newFakeSource() *fakeSource {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fakeSource{
		thread: domain.Thread{
			Address:  threadAddr,
			Title:    "Where do we go from here",
			Tags:     []string{"discussion"},
			Author:   domain.Author{Username: "lens/alice"},
			RootPost: domain.RootPost{Id: rootId, Content: "<p>Opening post</p>"},
		},
		replies:  map[string]domain.Reply{},
		pages:    map[string]domain.RepliesPage{},
		children: map[string][]domain.Reply{},
		calls:    map[string]int{},
	}
	f.pages[""] = domain.RepliesPage{
		Items: []domain.Reply{
			{Id: "r2", Content: "<p>second</p>", CreatedAt: base.Add(2 * time.Minute)},
			{Id: rootId, Content: "<p>root echo</p>", CreatedAt: base},
			{Id: "r1", Content: "<p>first</p>", CreatedAt: base.Add(time.Minute), RepliesCount: 2},
			{Id: "r3", ParentReplyId: "a2", Content: "<p>deep</p>", CreatedAt: base.Add(3 * time.Minute)},
		},
		PageInfo: domain.PageInfo{Next: "c2"},
	}
	f.pages["c2"] = domain.RepliesPage{
		Items:    []domain.Reply{{Id: "p2", Content: "<p>page two</p>"}},
		PageInfo: domain.PageInfo{Prev: "c1"},
	}
	f.children["r1"] = []domain.Reply{
		{Id: "c1b", ParentReplyId: "r1", CreatedAt: base.Add(5 * time.Minute)},
		{Id: "c1a", ParentReplyId: "r1", CreatedAt: base.Add(4 * time.Minute)},
	}
	f.replies["a1"] = domain.Reply{Id: "a1", ParentReplyId: rootId}
	f.replies["a2"] = domain.Reply{Id: "a2", ParentReplyId: "a1"}
	return f
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) inc(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeSource) FetchThread(ctx context.Context, address string) (domain.Thread, error) {
	f.inc("thread")
	if f.threadErr != nil {
		return domain.Thread{}, f.threadErr
	}
	return f.thread, nil
}

func (f *fakeSource) FetchReply(ctx context.Context, id string) (domain.Reply, error) {
	f.inc("reply")
	r, ok := f.replies[id]
	if !ok {
		return domain.Reply{}, content.ErrNotFound
	}
	return r, nil
}

func (f *fakeSource) FetchRepliesByParent(ctx context.Context, parentId, thread string) ([]domain.Reply, error) {
	f.inc("children")
	if f.childErr != nil {
		return nil, f.childErr
	}
	return f.children[parentId], nil
}

func (f *fakeSource) FetchRepliesPaginated(ctx context.Context, thread string, pageSize int, cursor string) (domain.RepliesPage, error) {
	f.inc("page")
	return f.pages[cursor], nil
}

func (f *fakeSource) FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error) {
	return domain.ThreadsPage{}, nil
}

func (f *fakeSource) CreateThread(ctx context.Context, community string, req domain.CreateThreadRequest) (domain.Thread, error) {
	return domain.Thread{}, errors.New("not supported")
}

func (f *fakeSource) CreateReply(ctx context.Context, parentId string, req domain.CreateReplyRequest) (domain.Reply, error) {
	f.inc("post")
	if f.postErr != nil {
		return domain.Reply{}, f.postErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, req)
	f.parents = append(f.parents, parentId)
	return domain.Reply{Id: "new", ParentReplyId: parentId, Content: req.Content}, nil
}

func (f *fakeSource) Vote(ctx context.Context, postId, account string, vote domain.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, fmt.Sprintf("%s:%s:%s", postId, account, vote))
	return nil
}

func (f *fakeSource) LookupReputation(ctx context.Context, wallet, account string) (domain.Reputation, error) {
	return domain.Reputation{}, nil
}

var loggedIn = domain.Account{Handle: "bob", AccountAddress: "0xb0b", WalletAddress: "0xw"}

func newModel(src *fakeSource, acc domain.Account) Model {
	cache := querycache.New(time.Minute)
	env := common.Env{
		Source:   querycache.NewSource(src, cache),
		Cache:    cache,
		Account:  acc,
		PageSize: 50,
		Timeout:  time.Second,
	}
	return InitialModel(env, 120, 60)
}

// run executes a command, giving up on commands that wait for a timer
// such as cursor blinking
func run(c tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// drain feeds every message produced by cmd back into the model until no
// commands are left
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("Too many commands, possible update loop")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := run(c).(type) {
		case nil, spinner.TickMsg, cursor.BlinkMsg, common.SessionState:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		m = drain(t, m, cmd)
	}
	return m
}

func openThread(t *testing.T, src *fakeSource, acc domain.Account) Model {
	t.Helper()
	m := newModel(src, acc)
	m, cmd := m.Update(common.ViewThreadMsg{Address: threadAddr})
	return drain(t, m, cmd)
}

func selectReply(t *testing.T, m Model, id string) Model {
	t.Helper()
	for i := 0; i < 20; i++ {
		if r, ok := m.SelectedReply(); ok && r.Id == id {
			return m
		}
		m = press(t, m, "j")
	}
	t.Fatalf("Reply %s not reachable", id)
	return m
}

func ids(replies []domain.Reply) string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Id
	}
	return strings.Join(out, ",")
}

func TestViewThreadLoadsThreadThenReplies(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})

	if m.Thread == nil || m.Thread.Title != "Where do we go from here" {
		t.Fatalf("Expected thread to be loaded, got %+v", m.Thread)
	}
	if src.count("thread") != 1 || src.count("page") != 1 {
		t.Errorf("Expected one thread and one page fetch, got %v", src.calls)
	}
	if got := ids(m.Replies); got != "r1,r2,r3" {
		t.Errorf("Expected root filtered and replies ordered, got %s", got)
	}
	if !m.Pager.CanNext() || m.Pager.CanPrev() {
		t.Error("Expected next enabled and prev disabled on the first page")
	}
}

func TestRepliesNotRequestedWithoutThread(t *testing.T) {
	src := newFakeSource()
	src.threadErr = errors.New("boom")
	m := openThread(t, src, domain.Account{})

	if src.count("page") != 0 {
		t.Errorf("Replies must wait for the thread, got %d page fetches", src.count("page"))
	}
	if !strings.Contains(m.View(), "Could not load thread") {
		t.Errorf("Expected error in view, got %s", m.View())
	}
}

func TestResultsForOtherThreadAreDropped(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})

	m, _ = m.Update(repliesLoadedMsg{address: "0xother", page: domain.RepliesPage{Items: []domain.Reply{{Id: "x"}}}})

	if got := ids(m.Replies); got != "r1,r2,r3" {
		t.Errorf("Result for another thread should be ignored, got %s", got)
	}
}

func TestChildrenToggleFetchesOnce(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")

	m = press(t, m, "enter")
	state := m.Tree.State("r1")
	if !state.ChildrenShown || state.ChildrenLoading {
		t.Fatalf("Expected children shown after first toggle, got %+v", state)
	}
	if got := ids(state.Children); got != "c1a,c1b" {
		t.Errorf("Expected children sorted oldest first, got %s", got)
	}

	m = press(t, m, "enter", "enter")
	if !m.Tree.State("r1").ChildrenShown {
		t.Error("Expected children shown again")
	}
	if src.count("children") != 1 {
		t.Errorf("Expected exactly one children fetch, got %d", src.count("children"))
	}

	rows := m.Rows()
	if len(rows) != 5 || rows[1].Reply.Id != "c1a" || rows[1].Depth != 1 {
		t.Errorf("Expected children below r1 at depth 1, got %+v", rows)
	}
}

func TestChildrenFailureCollapsesSilently(t *testing.T) {
	src := newFakeSource()
	src.childErr = errors.New("timeout")
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")

	m = press(t, m, "enter")

	state := m.Tree.State("r1")
	if state.ChildrenLoading || state.ChildrenShown || state.ChildrenLoaded {
		t.Errorf("Expected collapsed node after failure, got %+v", state)
	}
	if m.status != "" {
		t.Errorf("Children failures should not show a message, got %q", m.status)
	}
}

func TestEnterWithoutRepliesDoesNothing(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r2")

	press(t, m, "enter")

	if src.count("children") != 0 {
		t.Error("A reply without replies should not fetch children")
	}
}

func TestContextToggleResolvesOnce(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r3")

	m = press(t, m, "c")
	state := m.Tree.State("r3")
	if !state.ContextShown {
		t.Fatalf("Expected context shown, got %+v", state)
	}
	if got := ids(state.Context); got != "a1,a2" {
		t.Errorf("Expected chain root to leaf, got %s", got)
	}
	fetches := src.count("reply")

	m = press(t, m, "c", "c")
	if !m.Tree.State("r3").ContextShown {
		t.Error("Expected context shown after hide and show")
	}
	if src.count("reply") != fetches {
		t.Errorf("Showing a resolved chain should not fetch, got %d more", src.count("reply")-fetches)
	}
	if r, ok := m.SelectedReply(); !ok || r.Id != "r3" {
		t.Error("Selection should stay on the reply when context rows appear above it")
	}
}

func TestFirstLevelReplyHasNoContextControl(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")

	m = press(t, m, "c")

	if src.count("reply") != 0 || m.Tree.State("r1").ContextShown {
		t.Error("First-level replies have no context to show")
	}
}

func TestReplyRequiresLogin(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})

	m = press(t, m, "r")

	if m.Composer.IsOpen() {
		t.Error("Anonymous session should not open a composer")
	}
	if m.status != loginMessage {
		t.Errorf("Expected login message, got %q", m.status)
	}
}

func TestEmptyReplyIsRejected(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, loggedIn)

	m = press(t, m, "r", " ", "ctrl+s")

	if m.Composer.Error != thread.ErrEmptyReply.Error() {
		t.Errorf("Expected empty reply error, got %q", m.Composer.Error)
	}
	if src.count("post") != 0 {
		t.Error("Empty reply must not reach the API")
	}
}

func TestPostReplyToThread(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, loggedIn)
	pagesBefore := src.count("page")

	m = press(t, m, "r", "h", "i", "ctrl+s")

	if len(src.posted) != 1 {
		t.Fatalf("Expected one posted reply, got %d", len(src.posted))
	}
	if src.parents[0] != rootId {
		t.Errorf("Thread composer should reply to the root post, got %s", src.parents[0])
	}
	req := src.posted[0]
	if req.Content != "<p>hi</p>" || req.Thread != threadAddr || req.Author != "0xb0b" {
		t.Errorf("Unexpected request %+v", req)
	}
	if m.Composer.IsOpen() || m.Composing.Current.IsOpen() {
		t.Error("Composer should close after posting")
	}
	if m.Composing.Draft(thread.ThreadComposer()) != "" {
		t.Error("Draft should be cleared after posting")
	}
	if src.count("page") != pagesBefore+1 {
		t.Errorf("Expected reply list refetched past the cache, got %d fetches", src.count("page")-pagesBefore)
	}
}

func TestPostReplyToReply(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, loggedIn)
	m = selectReply(t, m, "r2")

	press(t, m, "r", "o", "k", "ctrl+s")

	if len(src.parents) != 1 || src.parents[0] != "r2" {
		t.Errorf("Expected reply to r2, got %v", src.parents)
	}
}

func TestPostReplyFailureKeepsDraft(t *testing.T) {
	src := newFakeSource()
	src.postErr = errors.New("503")
	m := openThread(t, src, loggedIn)

	m = press(t, m, "r", "h", "i", "ctrl+s")

	if !m.Composer.IsOpen() {
		t.Fatal("Composer should stay open after a failed post")
	}
	if m.Composer.Error != failedPostMessage {
		t.Errorf("Expected generic failure message, got %q", m.Composer.Error)
	}
	if m.Composing.Draft(thread.ThreadComposer()) != "hi" {
		t.Errorf("Draft should be kept, got %q", m.Composing.Draft(thread.ThreadComposer()))
	}
	if m.posting {
		t.Error("Posting flag should be cleared")
	}
}

func TestSwitchingComposerKeepsDraft(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, loggedIn)

	m = press(t, m, "r", "a", "tab")
	m = selectReply(t, m, "r1")
	m = press(t, m, "r")

	if m.Composing.Current != thread.ReplyComposer("r1") {
		t.Fatalf("Expected composer on r1, got %+v", m.Composing.Current)
	}
	if m.Composing.Draft(thread.ThreadComposer()) != "a" {
		t.Error("Draft of the replaced composer should be kept")
	}

	m = press(t, m, "esc")
	if m.Composer.IsOpen() {
		t.Error("Esc should close the composer")
	}
	if m.Composing.Draft(thread.ThreadComposer()) != "a" {
		t.Error("Cancel should only clear the draft of the cancelled composer")
	}
}

func TestPageChangeResetsTree(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")
	m = press(t, m, "enter")

	m = press(t, m, "l")

	if m.Pager.Cursor != "c2" {
		t.Errorf("Expected cursor c2, got %q", m.Pager.Cursor)
	}
	if m.Tree.State("r1").ChildrenShown {
		t.Error("Node state should be reset on page change")
	}
	if got := ids(m.Replies); got != "p2" {
		t.Errorf("Expected second page, got %s", got)
	}
	if !m.Pager.CanPrev() || m.Pager.CanNext() {
		t.Error("Expected prev enabled and next disabled on the last page")
	}
}

func TestPrevDisabledOnFirstPage(t *testing.T) {
	src := newFakeSource()
	src.pages[""] = domain.RepliesPage{PageInfo: domain.PageInfo{Prev: "bogus"}}
	m := openThread(t, src, domain.Account{})
	pages := src.count("page")

	m = press(t, m, "h")

	if src.count("page") != pages || m.Pager.Cursor != "" {
		t.Error("Prev must be disabled on the first page")
	}
}

func TestRefreshKeepsExpandedChildren(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")
	m = press(t, m, "enter")

	m = press(t, m, "R")

	state := m.Tree.State("r1")
	if !state.ChildrenShown || state.Stale || state.ChildrenLoading {
		t.Errorf("Expected expanded node refreshed in place, got %+v", state)
	}
	if src.count("children") != 2 {
		t.Errorf("Expected children refetched once, got %d fetches", src.count("children"))
	}
}

func TestVoteRequiresLoginAndRefreshes(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})
	m = selectReply(t, m, "r1")
	press(t, m, "+")
	if len(src.votes) != 0 {
		t.Fatal("Anonymous session must not vote")
	}

	m = openThread(t, src, loggedIn)
	m = selectReply(t, m, "r1")
	pages := src.count("page")
	press(t, m, "-")

	if len(src.votes) != 1 || src.votes[0] != "r1:0xb0b:downvote" {
		t.Errorf("Unexpected votes %v", src.votes)
	}
	if src.count("page") != pages+1 {
		t.Error("Expected replies to be refetched after voting")
	}
}

func TestBackReturnsToCommunity(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("Expected navigation command")
	}
	if state, ok := cmd().(common.SessionState); !ok || state != common.CommunityView {
		t.Errorf("Expected CommunityView, got %v", cmd())
	}
}

func TestViewRendersThread(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, domain.Account{})

	view := m.View()
	for _, want := range []string{"Where do we go from here", "Opening post", "@alice", "#discussion", "first", "show 2 replies", "show context"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
	if strings.Contains(view, "root echo") {
		t.Error("Root post must not be rendered as a reply")
	}
}

func TestViewEmptyReplies(t *testing.T) {
	src := newFakeSource()
	src.pages[""] = domain.RepliesPage{}
	m := openThread(t, src, domain.Account{})

	if !strings.Contains(m.View(), "No replies yet.") {
		t.Errorf("Expected empty state, got %s", m.View())
	}
}

func TestSubmitForClosedComposerIsIgnored(t *testing.T) {
	src := newFakeSource()
	m := openThread(t, src, loggedIn)

	_, cmd := m.Update(writereply.SubmitMsg{Target: thread.ReplyComposer("r9"), Text: "hi"})

	if cmd != nil || src.count("post") != 0 {
		t.Error("Submit for a composer that is not open should be ignored")
	}
}
