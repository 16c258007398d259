package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorLike      = lipgloss.Color("204") // Red-pink
)

// Title style for the "Stories" heading.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Padding(0, 1).
	MarginBottom(1)

// UserCard style for an unselected carousel card with unseen stories.
var UserCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Foreground(lipgloss.Color("255")).
	Width(cardWidth-2).
	Align(lipgloss.Center)

// SeenCard style for a card whose stories have all been viewed.
var SeenCard = UserCard.
	BorderForeground(colorMuted).
	Foreground(colorSecondary)

// SelectedCard style for the highlighted card.
var SelectedCard = UserCard.
	BorderForeground(colorPrimary).
	Border(lipgloss.ThickBorder()).
	Bold(true)

// StoryFrame style for the player body.
var StoryFrame = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// PlayerHeader style for the user name in the player.
var PlayerHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// SegmentDone, SegmentActive and SegmentPending render the per-story
// segments across the top of the player.
var (
	SegmentDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	SegmentActive  = lipgloss.NewStyle().Foreground(colorHighlight)
	SegmentPending = lipgloss.NewStyle().Foreground(colorMuted)
)

// LikedBadge style for the heart on a liked story.
var LikedBadge = lipgloss.NewStyle().
	Foreground(colorLike).
	Bold(true)

// SeenBadge style for the "seen" marker on a revisited story.
var SeenBadge = lipgloss.NewStyle().
	Foreground(colorSuccess)

// MetaItem style for URLs and other secondary text.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DebugPanel style for the debug overlay box.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
