package community

import (
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
	"github.com/lens-forum/app/util"
)

const (
	failedLoadMessage = "Could not load threads"
	loginMessage      = "Log in to create threads"

	// threadItemHeight is title, summary, meta and the blank separator
	threadItemHeight = 4
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_WHITE)).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_LIGHT))

	selectedTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_WHITE)).
				Background(lipgloss.Color(common.COLOR_ACCENT)).
				Bold(true)
)

type keyMap struct {
	common.KeyMap
	New     key.Binding
	Refresh key.Binding
}

var keys = keyMap{
	KeyMap:  common.Keys,
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new thread")),
	Refresh: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
}

type threadsLoadedMsg struct {
	community string
	cursor    string
	page      domain.ThreadsPage
	err       error
}

// Model lists one page of a community's threads
type Model struct {
	Env       common.Env
	Community string
	Threads   []domain.Thread
	Pager     thread.Pager
	Selected  int
	Width     int
	Height    int

	isActive     bool
	loading      bool
	loaded       bool
	errorMessage string
	status       string
	spinner      spinner.Model
	now          func() time.Time
}

func InitialModel(env common.Env, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_ACCENT))

	return Model{
		Env:       env,
		Community: env.Community,
		Width:     width,
		Height:    height,
		spinner:   sp,
		now:       time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// SelectedThread returns the highlighted thread, false on an empty page
func (m Model) SelectedThread() (domain.Thread, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Threads) {
		return domain.Thread{}, false
	}
	return m.Threads[m.Selected], true
}

func (m *Model) load() tea.Cmd {
	if m.Community == "" {
		return nil
	}
	m.loading = true
	m.errorMessage = ""
	env, community, cursor := m.Env, m.Community, m.Pager.Cursor
	fetch := func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		page, err := env.Source.FetchThreads(ctx, community, env.Limit(), cursor)
		return threadsLoadedMsg{community: community, cursor: cursor, page: page, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

func (m *Model) refresh() tea.Cmd {
	m.Env.Invalidate(querycache.AllThreads(m.Community))
	return m.load()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.DeactivateViewMsg:
		m.isActive = false
		return m, nil

	case common.ActivateViewMsg:
		m.isActive = true
		if !m.loaded && !m.loading {
			return m, m.load()
		}
		return m, nil

	case common.ThreadCreatedMsg:
		m.Pager.Reset()
		m.Selected = 0
		m.status = "Thread published"
		return m, m.refresh()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case threadsLoadedMsg:
		if msg.community != m.Community || msg.cursor != m.Pager.Cursor {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			log.Printf("Failed to load threads of %s: %v", msg.community, msg.err)
			m.errorMessage = failedLoadMessage
			return m, nil
		}
		m.loaded = true
		m.Threads = msg.page.Items
		m.Pager.Update(msg.page.PageInfo)
		if m.Selected >= len(m.Threads) {
			m.Selected = max(0, len(m.Threads)-1)
		}
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, keys.Up):
			if m.Selected > 0 {
				m.Selected--
			}
		case key.Matches(msg, keys.Down):
			if m.Selected < len(m.Threads)-1 {
				m.Selected++
			}
		case key.Matches(msg, keys.Open):
			if t, ok := m.SelectedThread(); ok {
				return m, func() tea.Msg {
					return common.ViewThreadMsg{Address: t.Address, Title: t.Title}
				}
			}
		case key.Matches(msg, keys.New):
			if !m.Env.Account.IsLoggedIn() {
				m.status = loginMessage
				return m, nil
			}
			community := m.Community
			return m, func() tea.Msg {
				return common.NewThreadMsg{Community: community}
			}
		case key.Matches(msg, keys.PrevPage):
			if m.Pager.Prev() {
				m.Selected = 0
				return m, m.load()
			}
		case key.Matches(msg, keys.NextPage):
			if m.Pager.Next() {
				m.Selected = 0
				return m, m.load()
			}
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	caption := "threads"
	if m.Community != "" {
		caption = fmt.Sprintf("threads in %s", util.TruncateWidth(m.Community, 40))
	}
	if m.loading {
		caption += " " + m.spinner.View()
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n\n")

	switch {
	case m.Community == "":
		s.WriteString(common.ListEmptyStyle.Render("No community configured."))
		return s.String()
	case m.errorMessage != "":
		s.WriteString(common.ListErrorStyle.Render("Error: " + m.errorMessage))
		s.WriteString("\n\n")
	case m.loaded && len(m.Threads) == 0:
		s.WriteString(common.ListEmptyStyle.Render("No threads yet.\nPress n to start one!"))
		s.WriteString("\n\n")
	}

	contentWidth := max(m.Width-4, 20)
	perPage := common.CalculateItemsPerPage(m.Height-6, threadItemHeight)
	start := 0
	if m.Selected >= perPage {
		start = m.Selected - perPage + 1
	}
	end := min(start+perPage, len(m.Threads))

	for i := start; i < end; i++ {
		s.WriteString(m.renderThread(m.Threads[i], contentWidth, i == m.Selected))
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderFooter())
	return s.String()
}

func (m Model) renderThread(t domain.Thread, width int, selected bool) string {
	prefix := common.ListUnselectedPrefix
	title := titleStyle.Render(util.TruncateWidth(t.Title, width-2))
	if selected {
		prefix = common.ListSelectedPrefix
		title = selectedTitleStyle.Render(util.TruncateWidth(t.Title, width-2))
	}

	summary := summaryStyle.Render(util.TruncateWidth(t.Summary, width-2))

	meta := fmt.Sprintf("%s · %s · %s",
		common.AuthorStyle.Render("@"+t.Author.Handle()),
		common.TimeStyle.Render(util.TimeAgo(t.RootPost.Timestamp, m.now())),
		common.ListBadgeStyle.Render(pluralReplies(t.RepliesCount)))
	if len(t.Tags) > 0 {
		meta += " · " + common.TagStyle.Render("#"+strings.Join(t.Tags, " #"))
	}

	return prefix + title + "\n" + common.ListUnselectedPrefix + summary + "\n" + common.ListUnselectedPrefix + meta
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
		line += "  " + common.ListStatusStyle.Render(m.status)
	}
	return common.HelpStyle.Render(line)
}

func (m Model) Help() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Open}
	if m.Env.Account.IsLoggedIn() {
		bindings = append(bindings, keys.New)
	}
	bindings = append(bindings, keys.PrevPage, keys.NextPage, keys.Refresh)
	return common.HelpLine(bindings...)
}

func pluralReplies(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", n)
}
