package ods_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

var errListFailed = errors.New("list failed")

// pagedLister serves fixed pages and records the tokens it was asked for.
type pagedLister struct {
	pages     map[ods.PageToken]*ods.ListEntriesResponse
	requested []*ods.PageToken
	failOn    ods.PageToken
}

func (l *pagedLister) ListEntries(_ context.Context, params *ods.ListEntriesParams) (*ods.ListEntriesResponse, error) {
	l.requested = append(l.requested, params.PageToken)

	token := ods.PageToken("")
	if params.PageToken != nil {
		token = *params.PageToken
	}

	if l.failOn != "" && token == l.failOn {
		return nil, errListFailed
	}

	return l.pages[token], nil
}

func threePages() *pagedLister {
	return &pagedLister{
		pages: map[ods.PageToken]*ods.ListEntriesResponse{
			"":   {Entries: []ods.Entry{{ID: "a", Value: 3}, {ID: "b", Value: 2}}, NextPageToken: "t/1"},
			"t/1": {Entries: []ods.Entry{}, NextPageToken: "t+2"},
			"t+2": {Entries: []ods.Entry{{ID: "c", Value: 1}}},
		},
	}
}

func TestEntryIterator_All(t *testing.T) {
	t.Parallel()

	lister := threePages()
	params := &ods.ListEntriesParams{OrderBy: ods.Ptr("desc")}

	entries, err := ods.ListAllEntries(context.Background(), lister, params)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "c", entries[2].ID)

	require.Len(t, lister.requested, 3)
	assert.Nil(t, lister.requested[0])
	assert.Equal(t, ods.PageToken("t/1"), *lister.requested[1])
	assert.Equal(t, ods.PageToken("t+2"), *lister.requested[2])

	assert.Nil(t, params.PageToken)
}

func TestEntryIterator_Next(t *testing.T) {
	t.Parallel()

	it := ods.NewEntryIterator(context.Background(), threePages(), nil)

	var ids []string

	for it.HasNext() {
		entry, err := it.Next()
		if errors.Is(err, ods.ErrNoMoreEntries) {
			break
		}

		require.NoError(t, err)

		ids = append(ids, entry.ID)
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.True(t, it.NextPageToken().IsZero())

	_, err := it.Next()
	require.ErrorIs(t, err, ods.ErrNoMoreEntries)
}

func TestEntryIterator_StartsFromToken(t *testing.T) {
	t.Parallel()

	lister := threePages()

	entries, err := ods.ListAllEntries(context.Background(), lister, &ods.ListEntriesParams{PageToken: ods.Ptr(ods.PageToken("t+2"))})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].ID)
}

func TestEntryIterator_Error(t *testing.T) {
	t.Parallel()

	lister := threePages()
	lister.failOn = "t/1"

	it := ods.NewEntryIterator(context.Background(), lister, nil)

	entries, err := it.All()
	require.ErrorIs(t, err, errListFailed)
	assert.Len(t, entries, 2)
	assert.False(t, it.HasNext())

	_, err = it.Next()
	require.ErrorIs(t, err, ods.ErrIteratorStopped)
	require.ErrorIs(t, err, errListFailed)
}
