package ask

import "github.com/charmbracelet/lipgloss"

// Prompt styles stay on ANSI colors 0–15 so they follow the terminal theme.
var (
	questionMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6)).Bold(true)  // Cyan
	labelStyle        = lipgloss.NewStyle().Bold(true)
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)).Italic(true) // Dark gray
	doneMarkStyle     = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(10))            // Bright green
	answerStyle       = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6))             // Cyan

	cursorMarkStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(14)).Bold(true) // Bright cyan
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(14))
	optionStyle      = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(7))
	disabledStyle    = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)).Strikethrough(true)
	checkedStyle     = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(10))
	reasonStyle      = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(3)) // Yellow
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(11))
	helpKeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8))
	helpDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(7))
	confirmOnStyle   = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(14)).Underline(true)
	confirmOffStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8))
	inputPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(6))
)
