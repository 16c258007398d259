package ui

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/abelbrown/stories/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// cardWidth is the rendered width of one carousel card including border.
const cardWidth = 18

// cardGap is the space between cards.
const cardGap = 1

// visibleCards returns how many cards fit in width (at least one).
func visibleCards(width int) int {
	n := (width + cardGap) / (cardWidth + cardGap)
	if n < 1 {
		n = 1
	}
	return n
}

// scrollTarget returns the first card index that keeps cursor centred
// where possible without scrolling past either end.
func scrollTarget(cursor, total, width int) float64 {
	visible := visibleCards(width)
	if total <= visible {
		return 0
	}
	first := cursor - visible/2
	if first < 0 {
		first = 0
	}
	if first > total-visible {
		first = total - visible
	}
	return float64(first)
}

// RenderCarousel renders a horizontal strip of user cards starting at the
// animated scroll position. seen reports whether every story of a user
// has been viewed.
func RenderCarousel(users []model.User, cursor int, scrollPos float64, width int, seen func(model.User) bool) string {
	if len(users) == 0 {
		return HelpStyle.Render("No stories to show. Press 'r' to reload.")
	}

	first := int(math.Round(scrollPos))
	visible := visibleCards(width)
	if first > len(users)-visible {
		first = len(users) - visible
	}
	if first < 0 {
		first = 0
	}
	last := first + visible
	if last > len(users) {
		last = len(users)
	}

	cards := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		allSeen := seen != nil && seen(users[i])
		cards = append(cards, renderCard(users[i], i == cursor, allSeen))
		if i < last-1 {
			cards = append(cards, strings.Repeat(" ", cardGap))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderCard renders one user: an initials "avatar", then "{name}, {count}".
func renderCard(u model.User, selected, allSeen bool) string {
	style := UserCard
	switch {
	case selected:
		style = SelectedCard
	case allSeen:
		style = SeenCard
	}

	inner := cardWidth - 2
	avatar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(avatarColor(u.ID)).
		Padding(0, 1).
		Render(initials(u.Name))
	label := truncateRunes(fmt.Sprintf("%s, %d", u.Name, u.StoryCount()), inner)

	return style.Render(avatar + "\n\n" + label)
}

// initials returns up to two leading letters of name, upper-cased.
func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteString(strings.ToUpper(string(r)))
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func avatarColor(id string) lipgloss.Color {
	palette := []lipgloss.Color{
		lipgloss.Color("62"),
		lipgloss.Color("69"),
		lipgloss.Color("39"),
		lipgloss.Color("141"),
		lipgloss.Color("208"),
		lipgloss.Color("75"),
		lipgloss.Color("99"),
		lipgloss.Color("212"),
	}
	sum := 0
	for i := 0; i < len(id); i++ {
		sum += int(id[i])
	}
	return palette[sum%len(palette)]
}

// truncateRunes shortens s to max runes, ending in "…" when cut.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

// RenderStatusBar renders the bottom status bar: position or loading
// indicator on the left, key hints on the right.
func RenderStatusBar(left string, hints string, width int) string {
	left = " " + left + " "
	padding := width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if padding < 0 {
		padding = 0
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + hints)
}
