package ods

import (
	"errors"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// ErrMissingField is returned when a response payload lacks a required field.
var ErrMissingField = errors.New("missing required field")

// UniverseID identifies a universe. It is rendered in decimal with no separators.
type UniverseID uint64

// String implements fmt.Stringer.
func (u UniverseID) String() string {
	return strconv.FormatUint(uint64(u), 10)
}

// PageToken is an opaque pagination cursor issued by the service.
//
// Tokens are only ever threaded from one ListEntriesResponse into the next
// ListEntriesParams. They are never constructed or inspected client side.
type PageToken string

// IsZero reports whether the token is absent.
func (t PageToken) IsZero() bool {
	return t == ""
}

// String implements fmt.Stringer.
func (t PageToken) String() string {
	return string(t)
}

// Entry is a single entry of an ordered data store as reported by the service.
//
// Value is decoded as a float64 even though every write path sends an int64.
// Integers beyond 2^53 cannot be represented exactly and will not round-trip.
type Entry struct {
	Path  string  `json:"path"  yaml:"path"`
	ID    string  `json:"id"    yaml:"id"`
	Value float64 `json:"value" yaml:"value"`
}

// UnmarshalJSON decodes an entry and rejects payloads missing any field.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var wire struct {
		Path  *string  `json:"path"`
		ID    *string  `json:"id"`
		Value *float64 `json:"value"`
	}

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("decoding entry: %w", err)
	}

	switch {
	case wire.Path == nil:
		return fmt.Errorf("entry: %w: path", ErrMissingField)
	case wire.ID == nil:
		return fmt.Errorf("entry: %w: id", ErrMissingField)
	case wire.Value == nil:
		return fmt.Errorf("entry: %w: value", ErrMissingField)
	}

	e.Path = *wire.Path
	e.ID = *wire.ID
	e.Value = *wire.Value

	return nil
}

// ListEntriesResponse is one page of a listing.
//
// Entries keep the order the service returned them in. An empty
// NextPageToken marks the final page.
type ListEntriesResponse struct {
	Entries       []Entry   `json:"entries"                 yaml:"entries"`
	NextPageToken PageToken `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// UnmarshalJSON decodes a listing page and rejects payloads without entries.
func (l *ListEntriesResponse) UnmarshalJSON(data []byte) error {
	var wire struct {
		Entries       *[]Entry `json:"entries"`
		NextPageToken *string  `json:"nextPageToken"`
	}

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("decoding entry listing: %w", err)
	}

	if wire.Entries == nil {
		return fmt.Errorf("entry listing: %w: entries", ErrMissingField)
	}

	l.Entries = *wire.Entries
	l.NextPageToken = ""

	if wire.NextPageToken != nil {
		l.NextPageToken = PageToken(*wire.NextPageToken)
	}

	return nil
}

// HasNextPage reports whether another page can be requested.
func (l *ListEntriesResponse) HasNextPage() bool {
	return !l.NextPageToken.IsZero()
}
