//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

func TestEntryLifecycle(t *testing.T) {
	config := LoadTestConfig(t)
	client := config.NewClient(t)
	stores := client.OrderedDataStores()
	ref := config.Ref(t)
	ctx := context.Background()

	cleanupEntries(t, client, ref, "lifecycle")

	entry, err := stores.CreateEntry(ctx, &ods.CreateEntryParams{DatastoreRef: ref, ID: "lifecycle", Value: 10})
	require.NoError(t, err)
	assert.Equal(t, "lifecycle", entry.ID)
	assert.InDelta(t, 10.0, entry.Value, 0)

	_, err = stores.CreateEntry(ctx, &ods.CreateEntryParams{DatastoreRef: ref, ID: "lifecycle", Value: 11})
	assert.True(t, ods.IsAlreadyExists(err), "got %v", err)

	entry, err = stores.UpdateEntry(ctx, &ods.UpdateEntryParams{DatastoreRef: ref, ID: "lifecycle", Value: 40})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, entry.Value, 0)

	entry, err = stores.IncrementEntry(ctx, &ods.IncrementEntryParams{DatastoreRef: ref, ID: "lifecycle", Increment: -15})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, entry.Value, 0)

	entry, err = stores.GetEntry(ctx, &ods.EntryParams{DatastoreRef: ref, ID: "lifecycle"})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, entry.Value, 0)

	require.NoError(t, stores.DeleteEntry(ctx, &ods.EntryParams{DatastoreRef: ref, ID: "lifecycle"}))

	_, err = stores.GetEntry(ctx, &ods.EntryParams{DatastoreRef: ref, ID: "lifecycle"})
	assert.True(t, ods.IsNotFound(err), "got %v", err)
}

func TestUpdateAllowMissing(t *testing.T) {
	config := LoadTestConfig(t)
	client := config.NewClient(t)
	stores := client.OrderedDataStores()
	ref := config.Ref(t)
	ctx := context.Background()

	cleanupEntries(t, client, ref, "upsert")

	_, err := stores.UpdateEntry(ctx, &ods.UpdateEntryParams{DatastoreRef: ref, ID: "upsert", Value: 1})
	assert.True(t, ods.IsNotFound(err), "got %v", err)

	entry, err := stores.UpdateEntry(ctx, &ods.UpdateEntryParams{DatastoreRef: ref, ID: "upsert", Value: 1, AllowMissing: ods.Ptr(true)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, entry.Value, 0)
}

func TestOrderedListing(t *testing.T) {
	config := LoadTestConfig(t)
	client := config.NewClient(t)
	stores := client.OrderedDataStores()
	ref := config.Ref(t)
	ctx := context.Background()

	scores := map[string]int64{"p1": 50, "p2": 10, "p3": 30, "p4": 40, "p5": 20}
	ids := make([]string, 0, len(scores))

	for id, value := range scores {
		ids = append(ids, id)

		_, err := stores.CreateEntry(ctx, &ods.CreateEntryParams{DatastoreRef: ref, ID: id, Value: value})
		require.NoError(t, err)
	}

	cleanupEntries(t, client, ref, ids...)

	entries, err := ods.ListAllEntries(ctx, stores, &ods.ListEntriesParams{
		DatastoreRef: ref,
		MaxPageSize:  ods.Ptr(2),
		OrderBy:      ods.Ptr("desc"),
	})
	require.NoError(t, err)
	require.Len(t, entries, len(scores))

	got := make([]string, 0, len(entries))
	for _, entry := range entries {
		got = append(got, entry.ID)
	}

	assert.Equal(t, []string{"p1", "p4", "p3", "p5", "p2"}, got)

	page, err := stores.ListEntries(ctx, &ods.ListEntriesParams{
		DatastoreRef: ref,
		Filter:       ods.Ptr("entry >= 20 && entry <= 40"),
	})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 3)
}

func TestInvalidCredentials(t *testing.T) {
	config := LoadTestConfig(t)
	client := config.NewClient(t)
	ref := config.Ref(t)
	ref.APIKey = "definitely-not-valid"

	_, err := client.OrderedDataStores().GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: ref, ID: "x"})
	require.Error(t, err)
	assert.Equal(t, ods.ErrorKindService, ods.KindOf(err))
}
