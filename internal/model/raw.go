package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// errNotArray is returned by DecodeRawUsers when the document is valid JSON
// but not a list of records.
var errNotArray = errors.New("feed document is not a JSON array")

// Field is an optional string read from an untrusted record.
// Null and values of any non-string JSON type decode as absent.
type Field struct {
	Value   string
	Present bool
}

// UnmarshalJSON implements json.Unmarshaler. It never fails.
func (f *Field) UnmarshalJSON(b []byte) error {
	*f = Field{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	*f = Field{Value: s, Present: true}
	return nil
}

// S is shorthand for a present Field, mostly for tests and fixtures.
func S(v string) Field {
	return Field{Value: v, Present: true}
}

// RawStory is the untrusted shape of a story record.
type RawStory struct {
	ID       Field `json:"id"`
	ImageURL Field `json:"imageURL"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object decodes as an
// empty record, which the Validator then drops.
func (r *RawStory) UnmarshalJSON(b []byte) error {
	type plain RawStory
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*r = RawStory{}
		return nil
	}
	*r = RawStory(p)
	return nil
}

// RawStories tolerates a missing, null or non-array "stories" value.
type RawStories []RawStory

// UnmarshalJSON implements json.Unmarshaler.
func (rs *RawStories) UnmarshalJSON(b []byte) error {
	var items []RawStory
	if err := json.Unmarshal(b, &items); err != nil {
		*rs = nil
		return nil
	}
	*rs = items
	return nil
}

// RawUser is the untrusted shape of a user record.
type RawUser struct {
	ID        Field      `json:"id"`
	Name      Field      `json:"name"`
	AvatarURL Field      `json:"avatarURL"`
	Stories   RawStories `json:"stories"`
}

// UnmarshalJSON implements json.Unmarshaler. A non-object decodes as an
// empty record.
func (r *RawUser) UnmarshalJSON(b []byte) error {
	type plain RawUser
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*r = RawUser{}
		return nil
	}
	*r = RawUser(p)
	return nil
}

// DecodeRawUsers parses a feed document. Only a document that is not JSON,
// or not a top-level array, is an error; every per-record problem is left
// for the Validator.
func DecodeRawUsers(data []byte) ([]RawUser, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, errors.New("feed document is not valid JSON")
		}
		return nil, errNotArray
	}
	var users []RawUser
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return nil, err
	}
	return users, nil
}
