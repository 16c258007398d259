// Package model holds the validated story feed domain and the Validator
// that builds it from untrusted records.
package model

import "net/url"

// Story is a single image in a user's story sequence.
// ID is unique within the owning user's Stories.
type Story struct {
	ID       string
	ImageURL *url.URL
}

// User owns a non-empty, ordered sequence of stories.
// ID is unique within a loaded feed.
type User struct {
	ID        string
	Name      string
	AvatarURL *url.URL
	Stories   []Story
}

// StoryCount returns len(u.Stories).
func (u User) StoryCount() int {
	return len(u.Stories)
}

// Clone returns a deep copy of u. URLs are shared; they are never mutated.
func (u User) Clone() User {
	c := u
	c.Stories = append([]Story(nil), u.Stories...)
	return c
}

// CloneUsers deep-copies a feed snapshot.
func CloneUsers(users []User) []User {
	if users == nil {
		return nil
	}
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
