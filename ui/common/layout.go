package common

import "github.com/charmbracelet/lipgloss"

// Layout constants for the TUI

const (
	// HeaderHeight is the height of the header bar (single line)
	HeaderHeight = 1

	// HeaderNewline is the newline added after the header in View()
	HeaderNewline = 1

	// FooterHeight is the height of the help/footer text
	FooterHeight = 1

	// PanelMarginVertical is the vertical margin applied to the panel (Margin(1) = 1 top + 1 bottom)
	PanelMarginVertical = 2

	// PanelBorderWidth is the horizontal space of the panel border and margins
	PanelBorderWidth = 4

	// HeaderTotalPadding is the total horizontal padding for header content (2 spaces each side)
	HeaderTotalPadding = 4

	// DefaultItemHeight is the estimated height of a single list item in lines
	DefaultItemHeight = 3

	// MinItemsPerPage is the minimum number of items to show per page
	MinItemsPerPage = 3

	// TextInputDefaultWidth is a reasonable default width for text input fields
	TextInputDefaultWidth = 50

	// MaxContentTruncateWidth is the maximum width for truncating post content
	MaxContentTruncateWidth = 150

	// ReplyIndentWidth is the number of spaces per nesting level in the thread page
	ReplyIndentWidth = 2

	// MinWidth and MinHeight are the smallest terminal the client renders in
	MinWidth  = 80
	MinHeight = 24
)

// VerticalLayoutOffset returns the total vertical space taken by header, footer, and margins
func VerticalLayoutOffset() int {
	return HeaderHeight + HeaderNewline + PanelMarginVertical + FooterHeight
}

// CalculateAvailableHeight returns the height available for panel content
func CalculateAvailableHeight(totalHeight int) int {
	return totalHeight - VerticalLayoutOffset()
}

// CalculatePanelWidth returns the content width of the single main panel
func CalculatePanelWidth(totalWidth int) int {
	return totalWidth - PanelBorderWidth
}

// CalculateItemsPerPage returns the number of items that fit in the available height
func CalculateItemsPerPage(availableHeight, itemHeight int) int {
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	items := availableHeight / itemHeight
	if items < MinItemsPerPage {
		return MinItemsPerPage
	}
	return items
}

// MeasureHeight returns the height of a rendered string using lipgloss
func MeasureHeight(rendered string) int {
	return lipgloss.Height(rendered)
}
