package newthread

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/querycache"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/util"
)

const (
	failedCreateMessage     = "Failed to create thread"
	failedReputationMessage = "Could not check your reputation"
	loginMessage            = "Log in to create threads"
)

// Step is the focused field of the form
type Step int

const (
	StepTitle Step = iota
	StepSummary
	StepContent
	StepTags
	stepCount
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_MUTED))

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_ACCENT)).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_ERROR)).
			Bold(true)
)

type reputationMsg struct {
	rep domain.Reputation
	err error
}

type createdMsg struct {
	thread domain.Thread
	err    error
}

type Model struct {
	Env        common.Env
	Community  string
	Title      textinput.Model
	Summary    textinput.Model
	Content    textarea.Model
	TagInput   textinput.Model
	Tags       thread.Tags
	Step       Step
	Error      string
	Submitting bool
	width      int
}

func InitialModel(env common.Env, width int) Model {
	inputWidth := max(width-20, common.TextInputDefaultWidth)

	title := textinput.New()
	title.Placeholder = "thread title"
	title.Prompt = common.ListSelectedPrefix
	title.CharLimit = 200
	title.Width = inputWidth

	summary := textinput.New()
	summary.Placeholder = "one line summary"
	summary.Prompt = common.ListSelectedPrefix
	summary.CharLimit = thread.SummaryMaxLength
	summary.Width = inputWidth

	body := textarea.New()
	body.Placeholder = "what do you want to discuss? (markdown)"
	body.ShowLineNumbers = false
	body.CharLimit = 20000
	body.SetWidth(inputWidth)
	body.SetHeight(8)

	tags := textinput.New()
	tags.Placeholder = "add tags, comma separated"
	tags.Prompt = common.ListSelectedPrefix
	tags.CharLimit = 100
	tags.Width = inputWidth

	m := Model{
		Env:       env,
		Community: env.Community,
		Title:     title,
		Summary:   summary,
		Content:   body,
		TagInput:  tags,
		width:     width,
	}
	m.focus(StepTitle)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Form is the current content of the inputs
func (m Model) Form() thread.Form {
	return thread.Form{
		Title:   m.Title.Value(),
		Summary: m.Summary.Value(),
		Content: m.Content.Value(),
		Tags:    m.Tags,
	}
}

// Reset empties the form for the next thread
func (m *Model) Reset() {
	m.Title.Reset()
	m.Summary.Reset()
	m.Content.Reset()
	m.TagInput.Reset()
	m.Tags.Clear()
	m.Error = ""
	m.Submitting = false
	m.focus(StepTitle)
}

func (m *Model) focus(step Step) tea.Cmd {
	m.Step = step
	m.Title.Blur()
	m.Summary.Blur()
	m.Content.Blur()
	m.TagInput.Blur()
	switch step {
	case StepTitle:
		return m.Title.Focus()
	case StepSummary:
		return m.Summary.Focus()
	case StepContent:
		return m.Content.Focus()
	default:
		return m.TagInput.Focus()
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.NewThreadMsg:
		if msg.Community != "" && msg.Community != m.Community {
			m.Community = msg.Community
			m.Reset()
		}
		m.Error = ""
		return m, m.focus(m.Step)

	case reputationMsg:
		if !m.Submitting {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("Reputation lookup failed for %s: %v", m.Env.Account.AccountAddress, msg.err)
			m.Submitting = false
			m.Error = failedReputationMessage
			return m, nil
		}
		if err := m.Form().Check(m.Env.Gate, msg.rep); err != nil {
			m.Submitting = false
			m.Error = err.Error()
			return m, nil
		}
		return m, m.create()

	case createdMsg:
		if !m.Submitting {
			return m, nil
		}
		m.Submitting = false
		if msg.err != nil {
			log.Printf("Failed to create thread in %s: %v", m.Community, msg.err)
			m.Error = failedCreateMessage
			return m, nil
		}
		m.Env.Invalidate(querycache.AllThreads(m.Community))
		m.Reset()
		created := msg.thread
		return m, func() tea.Msg {
			return common.ThreadCreatedMsg{Thread: created}
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace {
			m.Error = ""
		}

		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return common.CommunityView }
		case "tab":
			return m, m.focus((m.Step + 1) % stepCount)
		case "shift+tab":
			return m, m.focus((m.Step + stepCount - 1) % stepCount)
		case "ctrl+s":
			return m.submit()
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6":
			m.addSuggestion(int(msg.Runes[0] - '1'))
			return m, nil
		}

		if m.Step == StepTags {
			switch msg.Type {
			case tea.KeyEnter:
				m.Tags.Add(m.TagInput.Value())
				m.TagInput.Reset()
				return m, nil
			case tea.KeyBackspace:
				if m.TagInput.Value() == "" {
					m.Tags.RemoveLast()
					return m, nil
				}
			}
		}
		if msg.Type == tea.KeyEnter && (m.Step == StepTitle || m.Step == StepSummary) {
			return m, m.focus(m.Step + 1)
		}
	}

	var cmd tea.Cmd
	switch m.Step {
	case StepTitle:
		m.Title, cmd = m.Title.Update(msg)
	case StepSummary:
		m.Summary, cmd = m.Summary.Update(msg)
	case StepContent:
		m.Content, cmd = m.Content.Update(msg)
	case StepTags:
		m.TagInput, cmd = m.TagInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) addSuggestion(i int) {
	suggestions := m.Tags.Suggestions()
	if i < 0 || i >= len(suggestions) {
		return
	}
	m.Tags.Add(suggestions[i])
}

// submit validates locally, then checks the reputation gate, then creates.
// Nothing reaches the network while a field is missing.
func (m Model) submit() (Model, tea.Cmd) {
	if m.Submitting {
		return m, nil
	}
	if !m.Env.Account.IsLoggedIn() {
		m.Error = loginMessage
		return m, nil
	}
	if pending := strings.TrimSpace(m.TagInput.Value()); pending != "" {
		m.Tags.Add(pending)
		m.TagInput.Reset()
	}
	if err := m.Form().Validate(); err != nil {
		m.Error = err.Error()
		return m, nil
	}

	m.Error = ""
	m.Submitting = true
	if !m.Env.Gate.Required {
		return m, m.create()
	}
	env := m.Env
	return m, func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		rep, err := env.Source.LookupReputation(ctx, env.Account.WalletAddress, env.Account.AccountAddress)
		return reputationMsg{rep: rep, err: err}
	}
}

func (m Model) create() tea.Cmd {
	form := m.Form()
	html, err := util.MarkdownToHTML(form.Content)
	if err != nil {
		return func() tea.Msg { return createdMsg{err: err} }
	}
	req := form.Request(m.Env.Account.AccountAddress, html)
	env, community := m.Env, m.Community
	return func() tea.Msg {
		ctx, cancel := env.Context()
		defer cancel()
		t, err := env.Source.CreateThread(ctx, community, req)
		return createdMsg{thread: t, err: err}
	}
}

func (m Model) label(step Step, text string) string {
	if m.Step == step {
		return focusedLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (m Model) View() string {
	var s strings.Builder

	caption := "new thread"
	if m.Community != "" {
		caption += " in " + util.TruncateWidth(m.Community, 40)
	}
	s.WriteString(common.CaptionStyle.Render(caption))
	s.WriteString("\n\n")

	s.WriteString(m.label(StepTitle, "title") + "\n")
	s.WriteString(m.Title.View() + "\n\n")

	summaryLabel := fmt.Sprintf("summary (%d/%d)", len([]rune(m.Summary.Value())), thread.SummaryMaxLength)
	s.WriteString(m.label(StepSummary, summaryLabel) + "\n")
	s.WriteString(m.Summary.View() + "\n\n")

	s.WriteString(m.label(StepContent, "content") + "\n")
	s.WriteString(m.Content.View() + "\n\n")

	s.WriteString(m.label(StepTags, fmt.Sprintf("tags (%d/%d)", m.Tags.Len(), thread.MaxTags)) + "\n")
	if m.Tags.Len() > 0 {
		s.WriteString("  " + common.TagStyle.Render("#"+strings.Join(m.Tags.List(), " #")) + "\n")
	}
	if !m.Tags.Full() {
		s.WriteString(m.TagInput.View() + "\n")
		var hints []string
		for i, tag := range m.Tags.Suggestions() {
			hints = append(hints, fmt.Sprintf("alt+%d %s", i+1, tag))
		}
		if len(hints) > 0 {
			s.WriteString(common.ListBadgeStyle.Render("  suggestions: "+strings.Join(hints, " · ")) + "\n")
		}
	}

	if m.Env.Gate.Required {
		minScore := m.Env.Gate.MinScore
		if minScore <= 0 {
			minScore = thread.DefaultMinReputation
		}
		s.WriteString("\n" + common.WarningStyle.Render(fmt.Sprintf("  a reputation score of %d is required to post", minScore)))
	}

	if m.Error != "" {
		s.WriteString("\n\n" + errorStyle.Render("  "+m.Error))
	}
	if m.Submitting {
		s.WriteString("\n\n" + common.ListStatusStyle.Render("  publishing..."))
	}
	return s.String()
}

func (m Model) Help() string {
	return "tab: next field • enter: add tag • ctrl+s: publish • esc: cancel"
}
