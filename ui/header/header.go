package header

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/util"
	"github.com/mattn/go-runewidth"
)

type Model struct {
	Width    int
	Acc      *domain.Account
	Location string // community or thread currently shown
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.Acc, m.Width, m.Location)
}

func GetHeaderStyle(acc *domain.Account, width int, location string) string {
	// Single-line header with manual spacing

	leftText := "guest (read-only)"
	if acc != nil && acc.IsLoggedIn() {
		leftText = "@" + acc.Name()
	}
	centerText := fmt.Sprintf("%s v%s", util.Name, util.GetVersion())
	rightText := location

	leftLen := runewidth.StringWidth(leftText)
	centerLen := runewidth.StringWidth(centerText)

	// The location gives way first on narrow terminals
	room := width - common.HeaderTotalPadding - leftLen - centerLen - 2
	if runewidth.StringWidth(rightText) > room {
		rightText = util.TruncateWidth(rightText, maxInt(room, 0))
	}
	rightLen := runewidth.StringWidth(rightText)

	totalSpacing := maxInt(width-leftLen-centerLen-rightLen-common.HeaderTotalPadding, 2)
	leftSpacing := totalSpacing / 2
	rightSpacing := totalSpacing - leftSpacing

	header := fmt.Sprintf("  %s%s%s%s%s  ",
		leftText,
		strings.Repeat(" ", leftSpacing),
		centerText,
		strings.Repeat(" ", rightSpacing),
		rightText,
	)

	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(lipgloss.Color(common.COLOR_ACCENT)).
		Foreground(lipgloss.Color(common.COLOR_WHITE)).
		Bold(true).
		Render(header)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
