package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	primaryColor   = lipgloss.Color("#0969DA") // GitHub blue
	secondaryColor = lipgloss.Color("#8250DF") // Purple
	accentColor    = lipgloss.Color("#2DA44E") // Green
	warningColor   = lipgloss.Color("#D29922") // Orange
	errorColor     = lipgloss.Color("#CF222E") // Red
	dimColor       = lipgloss.Color("#6E7681") // Gray
	linkColor      = lipgloss.Color("#58A6FF") // Light blue
	memoColor      = lipgloss.Color("#F778BA") // Pink
	titleColor     = lipgloss.Color("#39D353") // Bright green
	dateColor      = lipgloss.Color("#A371F7") // Light purple
	sourceColor    = lipgloss.Color("#FFA657") // Light orange
	selectedBg     = lipgloss.Color("#2D333B") // Selected item background

	HeaderStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(1, 0).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	CommandStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	ArrowStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			SetString("│ ")

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(linkColor).
			Underline(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	SummaryStyle = lipgloss.NewStyle().
			Foreground(memoColor).
			PaddingLeft(2)

	SavedStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			SetString("★")

	TitleStyle = lipgloss.NewStyle().
			Foreground(titleColor).
			Bold(true)

	DateStyle = lipgloss.NewStyle().
			Foreground(dateColor).
			Italic(true)

	SourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(accentColor)

	// Menu
	KeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Width(4).
			Align(lipgloss.Right)

	StatusStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Background(selectedBg).
			Padding(0, 1).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(memoColor).
			Bold(true).
			Underline(true)

	// Bookmark card
	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)
