package ods

import (
	"strings"

	"github.com/fivetwenty-io/ods-client/internal/constants"
)

const (
	entriesSegment  = "entries"
	incrementAction = ":increment"
)

// ResourceSegments returns the segments of a scope's resource path followed
// by extra. An absent scope resolves to "global"; this is the only place that
// default is applied.
//
// Segments are not escaped here. The transport escapes each one on its own,
// so a "/" or ".." inside an id or scope never changes the addressed resource.
func ResourceSegments(universeID UniverseID, datastoreName string, scope *string, extra ...string) []string {
	resolved := constants.DefaultScope
	if scope != nil {
		resolved = *scope
	}

	segments := []string{
		"universes", universeID.String(),
		"orderedDataStores", datastoreName,
		"scopes", resolved,
	}

	return append(segments, extra...)
}

// ResourcePath builds the resource path of a scope within an ordered data
// store, followed by suffix. It is the unescaped, joined form of
// ResourceSegments.
func ResourcePath(universeID UniverseID, datastoreName string, scope *string, suffix string) string {
	return joinSegments(ResourceSegments(universeID, datastoreName, scope)) + suffix
}

// EntriesSegments address the entry collection.
func EntriesSegments() []string {
	return []string{entriesSegment}
}

// EntrySegments address a single entry.
func EntrySegments(id string) []string {
	return []string{entriesSegment, id}
}

// IncrementSegments address the increment action of an entry. The action is
// part of the entry's segment.
func IncrementSegments(id string) []string {
	return []string{entriesSegment, id + incrementAction}
}

// EntriesSuffix is the suffix addressing the entry collection.
func EntriesSuffix() string {
	return joinSegments(EntriesSegments())
}

// EntrySuffix is the suffix addressing a single entry.
func EntrySuffix(id string) string {
	return joinSegments(EntrySegments(id))
}

// IncrementSuffix is the suffix addressing the increment action of an entry.
func IncrementSuffix(id string) string {
	return joinSegments(IncrementSegments(id))
}

func joinSegments(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
