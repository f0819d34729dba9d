package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/ui/community"
	"github.com/lens-forum/app/ui/header"
	"github.com/lens-forum/app/ui/newthread"
	"github.com/lens-forum/app/ui/threadview"
	"github.com/lens-forum/app/util"
)

var focusedModelStyle = lipgloss.NewStyle().
	Align(lipgloss.Top, lipgloss.Top).
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color(common.COLOR_ACCENT)).MarginLeft(1)

type MainModel struct {
	width           int
	height          int
	env             common.Env
	account         domain.Account
	state           common.SessionState
	headerModel     header.Model
	communityModel  community.Model
	threadViewModel threadview.Model
	newThreadModel  newthread.Model
}

func NewModel(env common.Env, width int, height int) MainModel {
	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)
	panelWidth := common.CalculatePanelWidth(width)
	panelHeight := common.CalculateAvailableHeight(height)

	m := MainModel{state: common.CommunityView}
	m.env = env
	m.account = env.Account
	m.headerModel = header.Model{Width: width, Acc: &m.account}
	m.communityModel = community.InitialModel(env, panelWidth, panelHeight)
	m.threadViewModel = threadview.InitialModel(env, panelWidth, panelHeight)
	m.newThreadModel = newthread.InitialModel(env, panelWidth)
	m.width = width
	m.height = height
	return m
}

func (m MainModel) Init() tea.Cmd {
	return func() tea.Msg { return common.ActivateViewMsg{} }
}

// State is the view currently shown
func (m MainModel) State() common.SessionState {
	return m.state
}

// switchTo moves focus to state, deactivating the view that loses it
func (m *MainModel) switchTo(state common.SessionState) []tea.Cmd {
	if state == m.state {
		return nil
	}
	var cmds []tea.Cmd
	cmds = append(cmds, m.updateView(m.state, common.DeactivateViewMsg{}))
	m.state = state
	cmds = append(cmds, m.updateView(state, common.ActivateViewMsg{}))
	return cmds
}

func (m *MainModel) updateView(state common.SessionState, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch state {
	case common.CommunityView:
		m.communityModel, cmd = m.communityModel.Update(msg)
	case common.ThreadView:
		m.threadViewModel, cmd = m.threadViewModel.Update(msg)
	case common.NewThreadView:
		m.newThreadModel, cmd = m.newThreadModel.Update(msg)
	}
	return cmd
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		panelWidth := common.CalculatePanelWidth(msg.Width)
		panelHeight := common.CalculateAvailableHeight(msg.Height)
		m.communityModel.Width = panelWidth
		m.communityModel.Height = panelHeight
		m.threadViewModel.Width = panelWidth
		m.threadViewModel.Height = panelHeight
		m.threadViewModel.Composer.SetWidth(panelWidth)
		return m, nil

	case common.SessionState:
		cmds = append(cmds, m.switchTo(msg)...)

	case common.ActivateViewMsg, common.DeactivateViewMsg:
		// Only the visible view runs its loaders
		cmds = append(cmds, m.updateView(m.state, msg))

	case common.ViewThreadMsg:
		m.threadViewModel, cmd = m.threadViewModel.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, m.switchTo(common.ThreadView)...)

	case common.NewThreadMsg:
		m.newThreadModel, cmd = m.newThreadModel.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, m.switchTo(common.NewThreadView)...)

	case common.ThreadCreatedMsg:
		m.communityModel, cmd = m.communityModel.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, m.switchTo(common.CommunityView)...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Keyboard input goes to the focused view only
		cmds = append(cmds, m.updateView(m.state, msg))

	default:
		// Results carry the thread or community they were issued for, so
		// every view can see them and drop what is not theirs.
		m.communityModel, cmd = m.communityModel.Update(msg)
		cmds = append(cmds, cmd)
		m.threadViewModel, cmd = m.threadViewModel.Update(msg)
		cmds = append(cmds, cmd)
		m.newThreadModel, cmd = m.newThreadModel.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Filter out nil commands to keep tea.Batch from spawning idle goroutines
	var nonNilCmds []tea.Cmd
	for _, cmd := range cmds {
		if cmd != nil {
			nonNilCmds = append(nonNilCmds, cmd)
		}
	}

	switch len(nonNilCmds) {
	case 0:
		return m, nil
	case 1:
		return m, nonNilCmds[0]
	default:
		return m, tea.Batch(nonNilCmds...)
	}
}

func (m MainModel) View() string {
	if m.width < common.MinWidth || m.height < common.MinHeight {
		message := fmt.Sprintf(
			"Terminal too small!\n\nMinimum required: %dx%d\nCurrent size: %dx%d\n\nPlease resize your terminal.",
			common.MinWidth, common.MinHeight, m.width, m.height,
		)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color(common.COLOR_CRITICAL)).
			Bold(true).
			Render(message)
	}

	availableHeight := common.CalculateAvailableHeight(m.height)
	panelWidth := common.CalculatePanelWidth(m.width)

	var content, viewCommands string
	switch m.state {
	case common.ThreadView:
		content = m.threadViewModel.View()
		viewCommands = m.threadViewModel.Help()
	case common.NewThreadView:
		content = m.newThreadModel.View()
		viewCommands = m.newThreadModel.Help()
	default:
		content = m.communityModel.View()
		viewCommands = m.communityModel.Help()
	}

	panel := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(panelWidth).
		MaxWidth(panelWidth).
		Margin(1).
		Render(content)

	m.headerModel.Location = m.location()
	s := m.headerModel.View() + "\n"
	s += focusedModelStyle.Render(panel)

	helpText := fmt.Sprintf("focused > %s\t\tkeys > %s • ctrl-c: exit", m.currentFocusedModel(), viewCommands)
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(common.COLOR_HELP)).
		Width(m.width).
		Align(lipgloss.Center)

	currentContentHeight := availableHeight + common.PanelMarginVertical
	remainingHeight := m.height - currentContentHeight - common.FooterHeight
	if remainingHeight > 0 {
		s += strings.Repeat("\n", remainingHeight)
	}

	s += helpStyle.Render(helpText)
	return s
}

// location is the right-hand side of the header
func (m MainModel) location() string {
	switch m.state {
	case common.ThreadView:
		if t := m.threadViewModel.Thread; t != nil {
			return t.Title
		}
		return util.TruncateWidth(m.threadViewModel.Address, 20)
	case common.NewThreadView:
		return "new thread"
	default:
		if m.env.Community == "" {
			return ""
		}
		return "community " + util.TruncateWidth(m.env.Community, 20)
	}
}

func (m MainModel) currentFocusedModel() string {
	switch m.state {
	case common.ThreadView:
		return "thread"
	case common.NewThreadView:
		return "new thread"
	default:
		return "community"
	}
}
