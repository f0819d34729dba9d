package writereply

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/util"
)

const charLimit = 10000

// SubmitMsg asks the owning page to post Text from Target
type SubmitMsg struct {
	Target thread.Composer
	Text   string
}

// CancelMsg closes Target and discards its draft
type CancelMsg struct {
	Target thread.Composer
}

// Model is the reply textarea. The owning page decides what a submit does;
// the model only edits text and reports ctrl+s / esc.
type Model struct {
	Textarea textarea.Model
	Error    string
	Target   thread.Composer
	Posting  bool
	caption  string
	preview  string
	width    int
}

func New(width int) Model {
	ti := textarea.New()
	ti.Placeholder = "write your reply (markdown)"
	ti.CharLimit = charLimit
	ti.ShowLineNumbers = false
	ti.SetWidth(max(width-10, common.TextInputDefaultWidth))
	ti.SetHeight(5)
	ti.Cursor.SetMode(cursor.CursorBlink)

	return Model{Textarea: ti, width: width}
}

// Open shows the composer for target with its saved draft
func (m *Model) Open(target thread.Composer, caption, preview, draft string) tea.Cmd {
	m.Target = target
	m.caption = caption
	m.preview = preview
	m.Error = ""
	m.Posting = false
	m.Textarea.SetValue(draft)
	m.Textarea.CursorEnd()
	return m.Textarea.Focus()
}

func (m *Model) Close() {
	m.Target = thread.Composer{}
	m.Error = ""
	m.Posting = false
	m.Textarea.Reset()
	m.Textarea.Blur()
}

func (m Model) IsOpen() bool {
	return m.Target.IsOpen()
}

func (m Model) Value() string {
	return m.Textarea.Value()
}

func (m *Model) SetWidth(width int) {
	m.width = width
	m.Textarea.SetWidth(max(width-10, common.TextInputDefaultWidth))
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.IsOpen() {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		// Clear error when user starts typing
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace {
			m.Error = ""
		}

		switch msg.Type {
		case tea.KeyCtrlS:
			if m.Posting {
				return m, nil
			}
			target, text := m.Target, m.Textarea.Value()
			return m, func() tea.Msg {
				return SubmitMsg{Target: target, Text: text}
			}
		case tea.KeyEsc:
			target := m.Target
			return m, func() tea.Msg {
				return CancelMsg{Target: target}
			}
		}
	}

	var cmd tea.Cmd
	m.Textarea, cmd = m.Textarea.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.IsOpen() {
		return ""
	}
	var s strings.Builder

	s.WriteString(common.CaptionStyle.PaddingLeft(2).Render(m.caption))
	s.WriteString("\n")

	if m.preview != "" {
		quote := util.TruncateWidth(m.preview, max(m.width-8, 20))
		s.WriteString(common.ContextStyle.PaddingLeft(2).Render("\"" + quote + "\""))
		s.WriteString("\n\n")
	}

	s.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(m.Textarea.View()))

	if m.Error != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_ERROR)).
			Bold(true).
			PaddingLeft(2)
		s.WriteString("\n" + errorStyle.Render(m.Error))
	}

	help := "post reply: ctrl+s • cancel: esc"
	if m.Posting {
		help = "posting..."
	}
	s.WriteString("\n" + common.HelpStyle.Render(fmt.Sprintf("%d characters • %s", len([]rune(m.Textarea.Value())), help)))
	return s.String()
}
