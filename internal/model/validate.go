package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/abelbrown/stories/internal/otel"
)

// DropKind says whether a whole user or a single story was rejected.
type DropKind string

const (
	DropUser  DropKind = "user"
	DropStory DropKind = "story"
)

// DropReason explains why a record was rejected.
type DropReason string

const (
	ReasonBlankID     DropReason = "blank-id"
	ReasonDuplicateID DropReason = "duplicate-id"
	ReasonBlankName   DropReason = "blank-name"
	ReasonBadURL      DropReason = "bad-url"
	ReasonNoStories   DropReason = "no-stories"
)

// Drop records one rejected raw record. Index is the user's position in
// the raw input; StoryIndex is the story's position within that user's raw
// stories, or -1 for user drops.
type Drop struct {
	Kind       DropKind
	Reason     DropReason
	Index      int
	StoryIndex int
	UserID     string
	StoryID    string
}

func (d Drop) String() string {
	if d.Kind == DropStory {
		return fmt.Sprintf("story #%d (%q) of user #%d (%q): %s", d.StoryIndex, d.StoryID, d.Index, d.UserID, d.Reason)
	}
	return fmt.Sprintf("user #%d (%q): %s", d.Index, d.UserID, d.Reason)
}

// Validate converts raw records into the domain model, dropping invalid and
// duplicate entries. Each drop is reported to log as a diagnostic event.
func Validate(raw []RawUser, log *otel.Logger) []User {
	users, drops := ValidateReport(raw)
	for _, d := range drops {
		kind := otel.KindDropUser
		if d.Kind == DropStory {
			kind = otel.KindDropStory
		}
		log.Emit(otel.Event{
			Level:   otel.LevelWarn,
			Kind:    kind,
			Comp:    "validate",
			UserID:  d.UserID,
			StoryID: d.StoryID,
			Msg:     string(d.Reason),
			Extra:   map[string]any{"index": d.Index, "story_index": d.StoryIndex},
		})
	}
	log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindValidated,
		Comp:  "validate",
		Count: len(users),
		Msg:   fmt.Sprintf("%d of %d users kept, %d records dropped", len(users), len(raw), len(drops)),
	})
	return users
}

// ValidateReport is Validate without logging: it returns the surviving
// users in source order and every drop in the order it was decided.
//
// Ids are trimmed. A user or story id is a duplicate only if an earlier
// record with the same id was accepted; story ids are scoped to their user.
func ValidateReport(raw []RawUser) ([]User, []Drop) {
	users := make([]User, 0, len(raw))
	var drops []Drop
	seen := make(map[string]struct{}, len(raw))

	for i, ru := range raw {
		id := strings.TrimSpace(ru.ID.Value)
		userDrop := func(reason DropReason) {
			drops = append(drops, Drop{Kind: DropUser, Reason: reason, Index: i, StoryIndex: -1, UserID: id})
		}

		if id == "" {
			userDrop(ReasonBlankID)
			continue
		}
		if _, dup := seen[id]; dup {
			userDrop(ReasonDuplicateID)
			continue
		}
		name := strings.TrimSpace(ru.Name.Value)
		if name == "" {
			userDrop(ReasonBlankName)
			continue
		}
		avatar, ok := parseURL(ru.AvatarURL.Value)
		if !ok {
			userDrop(ReasonBadURL)
			continue
		}

		stories, storyDrops := validateStories(i, id, ru.Stories)
		drops = append(drops, storyDrops...)
		if len(stories) == 0 {
			userDrop(ReasonNoStories)
			continue
		}

		seen[id] = struct{}{}
		users = append(users, User{
			ID:        id,
			Name:      name,
			AvatarURL: avatar,
			Stories:   stories,
		})
	}
	return users, drops
}

func validateStories(userIndex int, userID string, raw []RawStory) ([]Story, []Drop) {
	stories := make([]Story, 0, len(raw))
	var drops []Drop
	seen := make(map[string]struct{}, len(raw))

	for j, rs := range raw {
		id := strings.TrimSpace(rs.ID.Value)
		drop := func(reason DropReason) {
			drops = append(drops, Drop{
				Kind: DropStory, Reason: reason,
				Index: userIndex, StoryIndex: j,
				UserID: userID, StoryID: id,
			})
		}

		if id == "" {
			drop(ReasonBlankID)
			continue
		}
		if _, dup := seen[id]; dup {
			drop(ReasonDuplicateID)
			continue
		}
		img, ok := parseURL(rs.ImageURL.Value)
		if !ok {
			drop(ReasonBadURL)
			continue
		}
		seen[id] = struct{}{}
		stories = append(stories, Story{ID: id, ImageURL: img})
	}
	return stories, drops
}

// parseURL accepts absolute URLs with a host, or file URLs.
func parseURL(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if u.Host == "" && u.Scheme != "file" {
		return nil, false
	}
	return u, true
}
