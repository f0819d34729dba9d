package common

import "github.com/charmbracelet/lipgloss"

const (
	// === Primary UI Colors ===
	COLOR_ACCENT    = "69" // ANSI 69 (#5f87ff) - Primary accent: borders, selections, header
	COLOR_SECONDARY = "75" // ANSI 75 (#5fafff) - Secondary accent: timestamps, tags

	// === Text Colors ===
	COLOR_WHITE = "255" // ANSI 255 (#eeeeee) - Primary text, post content
	COLOR_LIGHT = "250" // ANSI 250 (#bcbcbc) - Secondary text, slightly dimmed
	COLOR_MUTED = "245" // ANSI 245 (#8a8a8a) - Tertiary text, disabled, hints
	COLOR_DIM   = "240" // ANSI 240 (#585858) - Very dim text, borders, context chains

	// === Semantic Colors ===
	COLOR_USERNAME = "48"  // ANSI 48 (#00ff87) - Usernames stand out
	COLOR_SUCCESS  = "48"  // ANSI 48 (#00ff87) - Success messages
	COLOR_ERROR    = "196" // ANSI 196 (#ff0000) - Errors, downvotes
	COLOR_CRITICAL = "9"   // ANSI 9 (#ff5555) - Terminal size warnings
	COLOR_WARNING  = "214" // ANSI 214 (#ffaf00) - Reputation warnings, tips

	// === Interactive Elements ===
	COLOR_TAG    = "75"  // ANSI 75 (#5fafff) - Tags
	COLOR_BUTTON = "117" // ANSI 117 (#87d7ff) - Enabled controls

	// === Section/Title Colors ===
	COLOR_CAPTION = "170" // ANSI 170 (#d75fd7) - Section captions, titles
	COLOR_HELP    = "245" // ANSI 245 (#8a8a8a) - Help text
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_HELP)).Padding(0, 2)
	CaptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_CAPTION)).Padding(1, 2)

	TimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM))

	AuthorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_USERNAME)).
			Bold(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_TAG))

	// ContextStyle renders ancestors shown above a reply
	ContextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM)).
			Italic(true)

	SelectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color(COLOR_ACCENT)).
			Foreground(lipgloss.Color(COLOR_WHITE))

	EnabledControlStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(COLOR_BUTTON))

	DisabledControlStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(COLOR_DIM))

	// === Shared List Styles ===

	ListItemStyle = lipgloss.NewStyle()

	ListItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(COLOR_USERNAME)).
				Bold(true)

	ListEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM)).
			Italic(true)

	ListStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_SUCCESS))

	ListErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_ERROR))

	ListBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_WARNING))
)

const (
	// ListSelectedPrefix is the indicator shown before selected items
	ListSelectedPrefix = "› "
	// ListUnselectedPrefix is the spacing for unselected items (same width as selected)
	ListUnselectedPrefix = "  "
)

// DefaultWindowWidth returns the usable width after accounting for outer margins
func DefaultWindowWidth(width int) int {
	return width - 10
}

// DefaultWindowHeight returns the usable height after accounting for outer margins
func DefaultWindowHeight(height int) int {
	return height - 10
}
