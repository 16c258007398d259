// Package player drives the full-screen story player.
//
// A Player walks a fixed snapshot of users in two dimensions: stories
// within a user, and users within the snapshot. Every move that lands on a
// new story marks it viewed in the ledger and refreshes the liked flag.
// Moving past either end is a no-op; dismissing the player is the
// presentation layer's business.
package player

import (
	"fmt"

	"github.com/abelbrown/stories/internal/model"
	"github.com/abelbrown/stories/internal/notify"
	"github.com/abelbrown/stories/internal/otel"
)

// Ledger is the part of the interaction ledger the player uses.
type Ledger interface {
	MarkViewed(userID, storyID string) bool
	IsViewed(userID, storyID string) bool
	ToggleLike(userID, storyID string) bool
	IsLiked(userID, storyID string) bool
}

// Position is a (user, story) coordinate into the snapshot.
type Position struct {
	User  int
	Story int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.User, p.Story)
}

// Player is the navigation state machine. It is not safe for concurrent
// use; drive it from the UI goroutine.
type Player struct {
	users  []model.User
	ledger Ledger
	log    *otel.Logger

	pos           Position
	alreadyViewed bool
	liked         bool

	changes *notify.Signal
}

// New creates a Player over a private copy of users, starting at the
// requested indices clamped into range, and marks the first story viewed.
// With no users both indices are 0 and there is no current story.
func New(users []model.User, userIndex, storyIndex int, ledger Ledger, log *otel.Logger) *Player {
	p := &Player{
		users:   model.CloneUsers(users),
		ledger:  ledger,
		log:     log,
		changes: notify.New(),
	}
	if len(p.users) == 0 {
		return p
	}

	p.pos.User = clamp(userIndex, 0, len(p.users)-1)
	p.pos.Story = clamp(storyIndex, 0, len(p.users[p.pos.User].Stories)-1)
	p.arrive()
	p.log.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindPlayerOpen,
		Comp:    "player",
		UserID:  p.users[p.pos.User].ID,
		Count:   len(p.users),
		Msg:     p.pos.String(),
		StoryID: p.currentStoryID(),
	})
	return p
}

// clamp bounds v to [lo, hi]; an empty range (hi < lo) yields lo.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// arrive refreshes the derived flags for the current position and records
// the view, remembering whether the story had been seen before.
func (p *Player) arrive() {
	story, ok := p.CurrentStory()
	if !ok {
		p.alreadyViewed, p.liked = false, false
		return
	}
	userID := p.users[p.pos.User].ID
	p.liked = p.ledger.IsLiked(userID, story.ID)
	p.alreadyViewed = p.ledger.IsViewed(userID, story.ID)
	p.ledger.MarkViewed(userID, story.ID)
}

// moveTo commits a position change.
func (p *Player) moveTo(next Position, action string) {
	from := p.pos
	p.pos = next
	p.arrive()
	p.log.Emit(otel.Event{
		Level:   otel.LevelDebug,
		Kind:    otel.KindPlayerMove,
		Comp:    "player",
		UserID:  p.users[p.pos.User].ID,
		StoryID: p.currentStoryID(),
		Msg:     action + " " + from.String() + "->" + next.String(),
	})
	p.changes.Notify()
}

// GoToNextStory advances within the current user, or to the first story
// of the next user. At the last story of the last user it does nothing.
func (p *Player) GoToNextStory() {
	if len(p.users) == 0 {
		return
	}
	if p.pos.Story+1 < len(p.users[p.pos.User].Stories) {
		p.moveTo(Position{User: p.pos.User, Story: p.pos.Story + 1}, "next-story")
		return
	}
	p.GoToNextUser(true)
}

// GoToPreviousStory retreats within the current user, or to the last story
// of the previous user. At the first story of the first user it does nothing.
func (p *Player) GoToPreviousStory() {
	if len(p.users) == 0 {
		return
	}
	if p.pos.Story > 0 {
		p.moveTo(Position{User: p.pos.User, Story: p.pos.Story - 1}, "previous-story")
		return
	}
	p.GoToPreviousUser(true)
}

// GoToNextUser moves to the next user, at story 0 if resetStoryIndex and
// otherwise at the current story index clamped to that user's stories.
// No-op at the last user.
func (p *Player) GoToNextUser(resetStoryIndex bool) {
	if p.pos.User+1 >= len(p.users) {
		return
	}
	u := p.pos.User + 1
	s := 0
	if !resetStoryIndex {
		s = clamp(p.pos.Story, 0, len(p.users[u].Stories)-1)
	}
	p.moveTo(Position{User: u, Story: s}, "next-user")
}

// GoToPreviousUser moves to the previous user, at its last story if
// goToLastStory and otherwise at the current story index clamped.
// No-op at the first user.
func (p *Player) GoToPreviousUser(goToLastStory bool) {
	if p.pos.User <= 0 || len(p.users) == 0 {
		return
	}
	u := p.pos.User - 1
	last := len(p.users[u].Stories) - 1
	s := clamp(p.pos.Story, 0, last)
	if goToLastStory {
		s = clamp(last, 0, last)
	}
	p.moveTo(Position{User: u, Story: s}, "previous-user")
}

// ToggleLike flips the like on the current story.
func (p *Player) ToggleLike() {
	story, ok := p.CurrentStory()
	if !ok {
		return
	}
	p.ledger.ToggleLike(p.users[p.pos.User].ID, story.ID)
	p.liked = p.ledger.IsLiked(p.users[p.pos.User].ID, story.ID)
	p.changes.Notify()
}

// Position returns the current coordinate.
func (p *Player) Position() Position {
	return p.pos
}

// Len returns the number of users in the snapshot.
func (p *Player) Len() int {
	return len(p.users)
}

// CurrentUser returns the user being shown; ok is false when there are no
// users.
func (p *Player) CurrentUser() (model.User, bool) {
	if len(p.users) == 0 {
		return model.User{}, false
	}
	return p.users[p.pos.User], true
}

// CurrentStory returns the story being shown; ok is false when there is
// none.
func (p *Player) CurrentStory() (model.Story, bool) {
	if len(p.users) == 0 {
		return model.Story{}, false
	}
	stories := p.users[p.pos.User].Stories
	if p.pos.Story >= len(stories) {
		return model.Story{}, false
	}
	return stories[p.pos.Story], true
}

func (p *Player) currentStoryID() string {
	s, _ := p.CurrentStory()
	return s.ID
}

// PositionText renders "{1-based story index}/{story count}" for the
// current user, or "" when there is no current story.
func (p *Player) PositionText() string {
	if _, ok := p.CurrentStory(); !ok {
		return ""
	}
	return fmt.Sprintf("%d/%d", p.pos.Story+1, len(p.users[p.pos.User].Stories))
}

// IsCurrentStoryViewed reports whether the current story had already been
// viewed before the player arrived on it.
func (p *Player) IsCurrentStoryViewed() bool {
	return p.alreadyViewed
}

// IsCurrentStoryLiked reports whether the current story is liked.
func (p *Player) IsCurrentStoryLiked() bool {
	return p.liked
}

// AtEnd reports whether the current story is the last story of the last user.
func (p *Player) AtEnd() bool {
	if len(p.users) == 0 {
		return true
	}
	return p.pos.User == len(p.users)-1 && p.pos.Story >= len(p.users[p.pos.User].Stories)-1
}

// Changes fires after every move or like toggle.
func (p *Player) Changes() <-chan struct{} {
	return p.changes.C()
}
