package ui

import (
	"strings"

	"github.com/abelbrown/stories/internal/player"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// renderPlayer renders the full-screen player: story segments, the timer
// bar, the user header, and the story frame.
func renderPlayer(p *player.Player, bar progress.Model, percent float64, paused bool, width int) string {
	user, ok := p.CurrentUser()
	if !ok {
		return HelpStyle.Render("Nothing to play.")
	}
	story, _ := p.CurrentStory()

	var lines []string
	lines = append(lines, renderSegments(len(user.Stories), p.Position().Story, width))
	lines = append(lines, bar.ViewAs(percent))

	header := PlayerHeader.Render(user.Name)
	if p.IsCurrentStoryLiked() {
		header += " " + LikedBadge.Render("♥")
	}
	if p.IsCurrentStoryViewed() {
		header += " " + SeenBadge.Render("seen")
	}
	if paused {
		header += " " + MetaItem.Render("(paused)")
	}
	lines = append(lines, header)
	if user.AvatarURL != nil {
		lines = append(lines, MetaItem.Render(truncateRunes(user.AvatarURL.String(), width-2)))
	}

	frameWidth := max(20, width-2)
	content := "story " + story.ID
	if story.ImageURL != nil {
		content += "\n\n" + truncateRunes(story.ImageURL.String(), frameWidth-6)
	}
	lines = append(lines, StoryFrame.Width(frameWidth-2).Render(content))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderSegments draws one segment per story, highlighting current.
func renderSegments(count, current, width int) string {
	if count == 0 {
		return ""
	}
	seg := (width - (count - 1)) / count
	if seg < 1 {
		seg = 1
	}
	parts := make([]string, count)
	for i := range parts {
		style := SegmentPending
		switch {
		case i < current:
			style = SegmentDone
		case i == current:
			style = SegmentActive
		}
		parts[i] = style.Render(strings.Repeat("━", seg))
	}
	return strings.Join(parts, " ")
}
