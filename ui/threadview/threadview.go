package threadview

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/querycache"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/ui/writereply"
	"github.com/lens-forum/app/util"
)

const (
	failedPostMessage = "Failed to post reply"
	failedVoteMessage = "Failed to vote"
	loginMessage      = "Log in to reply and vote"
)

var (
	rootContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_WHITE))

	replyContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_LIGHT))

	selectedBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color(common.COLOR_ACCENT)).
			PaddingLeft(1)

	unselectedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.HiddenBorder()).
				BorderLeft(true).
				PaddingLeft(1)

	upvoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_SUCCESS))
	downvoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_ERROR))
)

type keyMap struct {
	common.KeyMap
	Children key.Binding
	Context  key.Binding
	Reply    key.Binding
	Upvote   key.Binding
	Downvote key.Binding
}

var keys = keyMap{
	KeyMap:   common.Keys,
	Children: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "replies")),
	Context:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "context")),
	Reply:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reply")),
	Upvote:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "upvote")),
	Downvote: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "downvote")),
}

// Model is the thread page: the root post, one page of first-level replies
// and whatever the user expanded below them.
type Model struct {
	Env       common.Env
	Address   string
	Thread    *domain.Thread
	Replies   []domain.Reply // current page, root post removed, oldest first
	Tree      *thread.Tree
	Pager     thread.Pager
	Composing *thread.Composing
	Composer  writereply.Model
	Width     int
	Height    int

	selectedId     string // "" selects the root post
	isActive       bool
	loadingThread  bool
	loadingReplies bool
	repliesLoaded  bool
	posting        bool
	voting         bool
	errorMessage   string
	status         string
	statusErr      bool
	spinner        spinner.Model
	now            func() time.Time
}

func InitialModel(env common.Env, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_ACCENT))

	return Model{
		Env:       env,
		Tree:      thread.NewTree("", ""),
		Composing: thread.NewComposing(),
		Composer:  writereply.New(width),
		Width:     width,
		Height:    height,
		spinner:   sp,
		now:       time.Now,
	}
}

// SetThread switches the page to address and forgets everything about the previous thread
func (m *Model) SetThread(address string) {
	m.Address = address
	m.Thread = nil
	m.Replies = nil
	m.Tree = thread.NewTree(address, "")
	m.Pager.Reset()
	m.Composing = thread.NewComposing()
	m.Composer.Close()
	m.selectedId = ""
	m.loadingThread = true
	m.loadingReplies = false
	m.repliesLoaded = false
	m.posting = false
	m.voting = false
	m.errorMessage = ""
	m.status = ""
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) busy() bool {
	return m.loadingThread || m.loadingReplies || m.posting || m.voting
}

func (m Model) rootId() string {
	if m.Thread == nil {
		return ""
	}
	return m.Thread.RootPost.Id
}

// Rows is the flattened reply tree currently on screen
func (m Model) Rows() []thread.Row {
	return m.Tree.Rows(m.Replies)
}

// SelectedReply returns the selected reply, false when the root post is selected
func (m Model) SelectedReply() (domain.Reply, bool) {
	if m.selectedId == "" {
		return domain.Reply{}, false
	}
	for _, row := range m.Rows() {
		if row.Kind == thread.RowReply && row.Reply.Id == m.selectedId {
			return row.Reply, true
		}
	}
	return domain.Reply{}, false
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.DeactivateViewMsg:
		m.isActive = false
		m.Composer.Textarea.Blur()
		return m, nil

	case common.ActivateViewMsg:
		m.isActive = true
		if m.Composer.IsOpen() {
			return m, m.Composer.Textarea.Focus()
		}
		return m, nil

	case common.ViewThreadMsg:
		m.SetThread(msg.Address)
		m.isActive = true
		return m, tea.Batch(loadThread(m.Env, msg.Address), m.spinner.Tick)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case threadLoadedMsg:
		if msg.address != m.Address {
			return m, nil
		}
		m.loadingThread = false
		if msg.err != nil {
			log.Printf("Failed to load thread %s: %v", msg.address, msg.err)
			if m.Thread == nil {
				m.errorMessage = "Could not load thread"
			}
			return m, nil
		}
		t := msg.thread
		m.Thread = &t
		m.Tree.Thread = t.Address
		m.Tree.RootId = t.RootPost.Id
		if m.repliesLoaded || m.loadingReplies {
			return m, nil
		}
		m.loadingReplies = true
		return m, loadReplies(m.Env, m.Address, m.Pager.Cursor)

	case repliesLoadedMsg:
		if msg.address != m.Address || msg.cursor != m.Pager.Cursor {
			return m, nil
		}
		m.loadingReplies = false
		if msg.err != nil {
			log.Printf("Failed to load replies of %s: %v", msg.address, msg.err)
			if !m.repliesLoaded {
				m.errorMessage = "Could not load replies"
			}
			return m, nil
		}
		m.repliesLoaded = true
		m.errorMessage = ""
		m.Replies = thread.PrepareReplies(msg.page.Items, m.rootId())
		m.Pager.Update(msg.page.PageInfo)
		if _, ok := m.SelectedReply(); !ok {
			m.selectedId = ""
		}
		return m, nil

	case contextLoadedMsg:
		if msg.address != m.Address {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("Failed to resolve context of reply %s: %v", msg.req.ReplyId, msg.err)
			m.Tree.ContextFailed(msg.req.ReplyId, msg.req.Seq)
			return m, nil
		}
		m.Tree.ContextLoaded(msg.req.ReplyId, msg.req.Seq, msg.chain)
		return m, nil

	case childrenLoadedMsg:
		if msg.address != m.Address {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("Failed to load replies below %s: %v", msg.req.ReplyId, msg.err)
			m.Tree.ChildrenFailed(msg.req.ReplyId, msg.req.Seq)
			return m, nil
		}
		m.Tree.ChildrenLoaded(msg.req.ReplyId, msg.req.Seq, thread.PrepareReplies(msg.children, m.rootId()))
		return m, nil

	case writereply.SubmitMsg:
		return m.submit(msg)

	case writereply.CancelMsg:
		if msg.Target == m.Composing.Current {
			m.Composing.Cancel()
			m.Composer.Close()
		}
		return m, nil

	case replyPostedMsg:
		if msg.address != m.Address {
			return m, nil
		}
		m.posting = false
		m.Composer.Posting = false
		if msg.err != nil {
			log.Printf("Failed to post reply to %s: %v", msg.parentId, msg.err)
			if m.Composer.Target == msg.target {
				m.Composer.Error = failedPostMessage
			}
			m.setStatus(failedPostMessage, true)
			return m, nil
		}
		m.Composing.Submitted(msg.target)
		if m.Composer.Target == msg.target {
			m.Composer.Close()
		}
		m.setStatus("Reply posted", false)
		return m, m.refresh(msg.parentId)

	case votedMsg:
		if msg.address != m.Address {
			return m, nil
		}
		m.voting = false
		if msg.err != nil {
			log.Printf("Failed to %s reply %s: %v", msg.vote, msg.reply.Id, msg.err)
			m.setStatus(failedVoteMessage, true)
			return m, nil
		}
		m.setStatus("Vote recorded", false)
		return m, m.refresh(msg.reply.ParentReplyId, msg.reply.Id)

	case tea.KeyMsg:
		if m.Composer.IsOpen() && msg.Type == tea.KeyTab {
			if m.Composer.Textarea.Focused() {
				m.Composer.Textarea.Blur()
				return m, nil
			}
			return m, m.Composer.Textarea.Focus()
		}
		if m.Composer.IsOpen() && m.Composer.Textarea.Focused() {
			var cmd tea.Cmd
			m.Composer, cmd = m.Composer.Update(msg)
			m.Composing.SetDraft(m.Composer.Value())
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if m.Composer.IsOpen() {
		var cmd tea.Cmd
		m.Composer, cmd = m.Composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		return m, func() tea.Msg { return common.CommunityView }

	case key.Matches(msg, keys.Up):
		m.moveSelection(-1)

	case key.Matches(msg, keys.Down):
		m.moveSelection(1)

	case key.Matches(msg, keys.Children):
		reply, ok := m.SelectedReply()
		if !ok {
			return m, nil
		}
		state := m.Tree.State(reply.Id)
		if reply.RepliesCount == 0 && !state.ChildrenLoaded && !state.ChildrenShown {
			return m, nil
		}
		if req, ok := m.Tree.ToggleChildren(reply.Id); ok {
			return m, loadChildren(m.Env, m.Address, req)
		}

	case key.Matches(msg, keys.Context):
		reply, ok := m.SelectedReply()
		if !ok {
			return m, nil
		}
		if req, ok := m.Tree.ToggleContext(reply); ok {
			return m, resolveContext(m.Env, m.Address, m.rootId(), req)
		}

	case key.Matches(msg, keys.Reply):
		return m.openComposer()

	case key.Matches(msg, keys.Upvote):
		return m.vote(domain.VoteUp)

	case key.Matches(msg, keys.Downvote):
		return m.vote(domain.VoteDown)

	case key.Matches(msg, keys.PrevPage):
		if m.Pager.Prev() {
			return m, m.changePage()
		}

	case key.Matches(msg, keys.NextPage):
		if m.Pager.Next() {
			return m, m.changePage()
		}

	case key.Matches(msg, keys.Refresh):
		if m.Thread == nil {
			if m.Address == "" || m.loadingThread {
				return m, nil
			}
			m.loadingThread = true
			m.errorMessage = ""
			return m, tea.Batch(loadThread(m.Env, m.Address), m.spinner.Tick)
		}
		return m, m.refresh()
	}
	return m, nil
}

// moveSelection steps over reply rows; context rows are not selectable
func (m *Model) moveSelection(delta int) {
	rows := m.Rows()
	ids := []string{""}
	for _, row := range rows {
		if row.Kind == thread.RowReply {
			ids = append(ids, row.Reply.Id)
		}
	}
	pos := 0
	for i, id := range ids {
		if id == m.selectedId {
			pos = i
			break
		}
	}
	pos += delta
	if pos < 0 || pos >= len(ids) {
		return
	}
	m.selectedId = ids[pos]
}

func (m *Model) changePage() tea.Cmd {
	m.Tree.Reset()
	m.Replies = nil
	m.repliesLoaded = false
	m.selectedId = ""
	m.loadingReplies = true
	return tea.Batch(loadReplies(m.Env, m.Address, m.Pager.Cursor), m.spinner.Tick)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) openComposer() (Model, tea.Cmd) {
	if m.Thread == nil {
		return m, nil
	}
	if !m.Env.Account.IsLoggedIn() {
		m.setStatus(loginMessage, true)
		return m, nil
	}

	target := thread.ThreadComposer()
	caption := "reply to thread"
	preview := util.FirstLine(util.HTMLToText(m.Thread.RootPost.Content))
	if reply, ok := m.SelectedReply(); ok {
		target = thread.ReplyComposer(reply.Id)
		caption = "reply to @" + reply.Author.Handle()
		preview = util.FirstLine(util.HTMLToText(reply.Content))
	}
	if m.Composing.Current == target && m.Composer.IsOpen() {
		return m, m.Composer.Textarea.Focus()
	}

	m.Composing.Open(target)
	cmd := m.Composer.Open(target, caption, preview, m.Composing.Draft(target))
	return m, cmd
}

func (m Model) submit(msg writereply.SubmitMsg) (Model, tea.Cmd) {
	if m.posting || m.Thread == nil || msg.Target != m.Composing.Current {
		return m, nil
	}
	m.Composing.SetDraft(msg.Text)
	parentId, text, err := m.Composing.Prepare(m.rootId())
	if err != nil {
		m.Composer.Error = err.Error()
		return m, nil
	}
	html, err := util.MarkdownToHTML(text)
	if err == nil {
		html = util.NormalizeReplyContent(html)
	}
	if err != nil || util.IsBlank(html) {
		if err == nil {
			err = errors.New("rendered reply is empty")
		}
		log.Printf("Failed to render reply for %s: %v", parentId, err)
		m.Composer.Error = failedPostMessage
		return m, nil
	}

	m.posting = true
	m.Composer.Posting = true
	req := domain.CreateReplyRequest{
		Content: html,
		Thread:  m.Address,
		Author:  m.Env.Account.AccountAddress,
	}
	return m, tea.Batch(postReply(m.Env, m.Address, msg.Target, parentId, req), m.spinner.Tick)
}

func (m Model) vote(v domain.Vote) (Model, tea.Cmd) {
	reply, ok := m.SelectedReply()
	if !ok || m.voting {
		return m, nil
	}
	if !m.Env.Account.IsLoggedIn() {
		m.setStatus(loginMessage, true)
		return m, nil
	}
	m.voting = true
	return m, tea.Batch(castVote(m.Env, m.Address, reply, v), m.spinner.Tick)
}

// refresh invalidates the cached queries of this thread and reloads them.
// Expanded nodes keep their place on screen while their children are refetched.
func (m *Model) refresh(changed ...string) tea.Cmd {
	prefixes := []querycache.Key{
		querycache.ThreadKey(m.Address),
		querycache.AllReplies(m.Address),
		querycache.AllChildren(m.Address),
	}
	for _, id := range changed {
		if id != "" && id != m.rootId() {
			prefixes = append(prefixes, querycache.ContextKey(id))
		}
	}
	m.Env.Invalidate(prefixes...)

	cmds := []tea.Cmd{m.spinner.Tick}
	for _, req := range m.Tree.MarkStale() {
		cmds = append(cmds, loadChildren(m.Env, m.Address, req))
	}
	if !m.loadingThread {
		m.loadingThread = true
		cmds = append(cmds, loadThread(m.Env, m.Address))
	}
	m.loadingReplies = true
	cmds = append(cmds, loadReplies(m.Env, m.Address, m.Pager.Cursor))
	return tea.Batch(cmds...)
}

func (m Model) View() string {
	var s strings.Builder

	if m.Thread == nil {
		s.WriteString(common.CaptionStyle.Render("thread"))
		s.WriteString("\n\n")
		switch {
		case m.errorMessage != "":
			s.WriteString(common.ListErrorStyle.Render("Error: " + m.errorMessage))
			s.WriteString("\n\n")
			s.WriteString(common.HelpStyle.Render(common.HelpLine(keys.Refresh, keys.Back)))
		case m.loadingThread:
			s.WriteString(m.spinner.View() + common.ListEmptyStyle.Render(" Loading thread..."))
		default:
			s.WriteString(common.ListEmptyStyle.Render("No thread to display"))
		}
		return s.String()
	}

	contentWidth := max(m.Width-4, 20)

	caption := util.TruncateWidth(m.Thread.Title, contentWidth-4)
	if m.busy() {
		caption += " " + m.spinner.View()
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n")

	var blocks []string
	selected := 0
	blocks = append(blocks, m.renderRoot(contentWidth, m.selectedId == ""))

	if m.errorMessage != "" {
		blocks = append(blocks, common.ListErrorStyle.Render("Error: "+m.errorMessage))
	} else if m.repliesLoaded && len(m.Replies) == 0 {
		blocks = append(blocks, common.ListEmptyStyle.Render("No replies yet."))
	}

	for _, row := range m.Rows() {
		isSel := row.Kind == thread.RowReply && row.Reply.Id == m.selectedId
		if isSel {
			selected = len(blocks)
		}
		blocks = append(blocks, m.renderRow(row, contentWidth, isSel))
	}

	composer := m.Composer.View()
	footer := m.renderFooter()

	avail := m.Height - common.MeasureHeight(s.String()) - common.MeasureHeight(footer) - 1
	if composer != "" {
		avail -= common.MeasureHeight(composer) + 1
	}
	s.WriteString(visibleBlocks(blocks, selected, avail))

	if composer != "" {
		s.WriteString("\n")
		s.WriteString(composer)
	}
	s.WriteString("\n")
	s.WriteString(footer)
	return s.String()
}

// visibleBlocks drops blocks from the top until the selected one fits in height
func visibleBlocks(blocks []string, selected, height int) string {
	start := 0
	used := func(from int) int {
		total := 0
		for i := from; i <= selected && i < len(blocks); i++ {
			total += common.MeasureHeight(blocks[i]) + 1
		}
		return total
	}
	for start < selected && used(start) > height {
		start++
	}

	var s strings.Builder
	total := 0
	for i := start; i < len(blocks); i++ {
		h := common.MeasureHeight(blocks[i]) + 1
		if total+h > height && i > selected {
			break
		}
		s.WriteString(blocks[i])
		s.WriteString("\n\n")
		total += h
	}
	return s.String()
}

func (m Model) renderRoot(width int, selected bool) string {
	t := m.Thread
	meta := fmt.Sprintf("%s · %s",
		common.AuthorStyle.Render("@"+t.Author.Handle()),
		common.TimeStyle.Render(util.TimeAgo(t.RootPost.Timestamp, m.now())))
	if len(t.Tags) > 0 {
		meta += " · " + common.TagStyle.Render("#"+strings.Join(t.Tags, " #"))
	}

	body := rootContentStyle.Width(width - 2).Render(util.HTMLToText(t.RootPost.Content))
	count := common.ListBadgeStyle.Render(pluralReplies(t.RepliesCount))

	block := meta + "\n" + body + "\n" + count
	if selected {
		return selectedBorder.Render(block)
	}
	return unselectedBorder.Render(block)
}

func (m Model) renderRow(row thread.Row, width int, selected bool) string {
	indent := row.Indent * common.ReplyIndentWidth
	itemWidth := max(width-indent-2, 10)

	if row.Kind == thread.RowContext {
		line := fmt.Sprintf("↳ @%s: %s", row.Reply.Author.Handle(), util.FirstLine(util.HTMLToText(row.Reply.Content)))
		return lipgloss.NewStyle().PaddingLeft(indent + 2).Render(
			common.ContextStyle.Render(util.TruncateWidth(line, itemWidth)))
	}

	r := row.Reply
	meta := fmt.Sprintf("%s · %s · %s · %s · %d tips",
		common.AuthorStyle.Render("@"+r.Author.Handle()),
		common.TimeStyle.Render(util.TimeAgo(r.CreatedAt, m.now())),
		renderScore(r),
		pluralReplies(r.RepliesCount),
		r.Tips)

	body := replyContentStyle.Width(itemWidth).Render(util.HTMLToText(r.Content))
	block := meta + "\n" + body
	if controls := m.renderControls(row); controls != "" {
		block += "\n" + controls
	}

	if selected {
		block = selectedBorder.Render(block)
	} else {
		block = unselectedBorder.Render(block)
	}
	return lipgloss.NewStyle().PaddingLeft(indent).Render(block)
}

func (m Model) renderControls(row thread.Row) string {
	var parts []string
	state := row.State

	if row.Reply.HasContext(m.rootId()) {
		switch {
		case state.ContextLoading:
			parts = append(parts, common.DisabledControlStyle.Render("loading context..."))
		case state.ContextShown:
			parts = append(parts, common.EnabledControlStyle.Render("[c] hide context"))
		default:
			parts = append(parts, common.EnabledControlStyle.Render("[c] show context"))
		}
	}

	switch {
	case state.ChildrenLoading && state.Stale:
		parts = append(parts, common.DisabledControlStyle.Render("refreshing replies..."))
	case state.ChildrenLoading:
		parts = append(parts, common.DisabledControlStyle.Render("loading replies..."))
	case state.ChildrenShown:
		parts = append(parts, common.EnabledControlStyle.Render("[enter] hide replies"))
	case row.Reply.RepliesCount > 0 || state.ChildrenLoaded:
		parts = append(parts, common.EnabledControlStyle.Render(fmt.Sprintf("[enter] show %s", pluralReplies(row.Reply.RepliesCount))))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	prev := common.DisabledControlStyle.Render("‹ prev")
	if m.Pager.CanPrev() {
		prev = common.EnabledControlStyle.Render("‹ prev")
	}
	next := common.DisabledControlStyle.Render("next ›")
	if m.Pager.CanNext() {
		next = common.EnabledControlStyle.Render("next ›")
	}
	line := prev + "  " + next

	if m.status != "" {
		style := common.ListStatusStyle
		if m.statusErr {
			style = common.ListErrorStyle
		}
		line += "  " + style.Render(m.status)
	}
	return common.HelpStyle.Render(line)
}

// Help lists the bindings usable in the current state
func (m Model) Help() string {
	if m.Composer.IsOpen() && m.Composer.Textarea.Focused() {
		return "ctrl+s: post • esc: cancel • tab: replies"
	}
	bindings := []key.Binding{keys.Up, keys.Down, keys.Children, keys.Context}
	if m.Env.Account.IsLoggedIn() {
		bindings = append(bindings, keys.Reply, keys.Upvote, keys.Downvote)
	}
	bindings = append(bindings, keys.PrevPage, keys.NextPage, keys.Refresh, keys.Back)
	help := common.HelpLine(bindings...)
	if m.Composer.IsOpen() {
		help += " • tab: composer"
	}
	return help
}

func renderScore(r domain.Reply) string {
	score := r.Score()
	switch {
	case score > 0:
		return upvoteStyle.Render(fmt.Sprintf("▲%d", score))
	case score < 0:
		return downvoteStyle.Render(fmt.Sprintf("▼%d", -score))
	default:
		return common.ListBadgeStyle.Render("0")
	}
}

func pluralReplies(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", n)
}
