package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/ods-client/internal/http"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

const (
	testAPIKey   = "secret-key"
	testBasePath = "/universes/123/orderedDataStores/Leaderboard/scopes"
)

func testRef() ods.DatastoreRef {
	return ods.DatastoreRef{
		APIKey:        testAPIKey,
		UniverseID:    123,
		DatastoreName: "Leaderboard",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OrderedDataStoresClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOrderedDataStoresClient(internalhttp.NewClient(server.URL))
}

func readBody(t *testing.T, r *http.Request) string {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	return string(body)
}

func TestOrderedDataStoresClient_ListEntries(t *testing.T) {
	t.Parallel()

	t.Run("absent parameters are not sent", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, testBasePath+"/global/entries", r.URL.Path)
			assert.Empty(t, r.URL.RawQuery)
			assert.Equal(t, testAPIKey, r.Header.Get("x-api-key"))
			assert.Empty(t, r.Header.Get("Content-Type"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"entries":[{"path":"p/a","id":"a","value":1}]}`))
		})

		list, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{DatastoreRef: testRef()})
		require.NoError(t, err)
		require.Len(t, list.Entries, 1)
		assert.Equal(t, "a", list.Entries[0].ID)
		assert.True(t, list.NextPageToken.IsZero())
		assert.False(t, list.HasNextPage())
	})

	t.Run("present parameters are sent once each", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			assert.Equal(t, []string{"25"}, query["max_page_size"])
			assert.Equal(t, []string{"tok"}, query["page_token"])
			assert.Equal(t, []string{"desc"}, query["order_by"])
			assert.Equal(t, []string{"entry >= 10"}, query["filter"])
			assert.Len(t, query, 4)

			_, _ = w.Write([]byte(`{"entries":[],"nextPageToken":"next"}`))
		})

		list, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{
			DatastoreRef: testRef(),
			MaxPageSize:  ods.Ptr(25),
			PageToken:    ods.Ptr(ods.PageToken("tok")),
			OrderBy:      ods.Ptr("desc"),
			Filter:       ods.Ptr("entry >= 10"),
		})
		require.NoError(t, err)
		assert.Empty(t, list.Entries)
		assert.Equal(t, ods.PageToken("next"), list.NextPageToken)
	})

	t.Run("page token is threaded verbatim", func(t *testing.T) {
		t.Parallel()

		const token = "a+b/c==&d"

		var calls int32

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				assert.NotContains(t, r.URL.Query(), "page_token")
				_, _ = w.Write([]byte(`{"entries":[{"path":"p","id":"a","value":1}],"nextPageToken":"` + token + `"}`))

				return
			}

			assert.Equal(t, token, r.URL.Query().Get("page_token"))
			_, _ = w.Write([]byte(`{"entries":[{"path":"p","id":"b","value":2}]}`))
		})

		first, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{DatastoreRef: testRef()})
		require.NoError(t, err)
		require.True(t, first.HasNextPage())

		second, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{
			DatastoreRef: testRef(),
			PageToken:    &first.NextPageToken,
		})
		require.NoError(t, err)
		assert.Equal(t, "b", second.Entries[0].ID)
		assert.False(t, second.HasNextPage())
	})

	t.Run("scope is used when given", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, testBasePath+"/players/entries", r.URL.Path)
			_, _ = w.Write([]byte(`{"entries":[]}`))
		})

		ref := testRef()
		ref.Scope = ods.Ptr("players")

		_, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{DatastoreRef: ref})
		require.NoError(t, err)
	})

	t.Run("listing without entries is undecodable", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"nextPageToken":"x"}`))
		})

		_, err := odsClient.ListEntries(context.Background(), &ods.ListEntriesParams{DatastoreRef: testRef()})
		require.Error(t, err)
		assert.Equal(t, ods.ErrorKindUndecodable, ods.KindOf(err))
		require.ErrorIs(t, err, ods.ErrMissingField)
	})
}

func TestOrderedDataStoresClient_CreateEntry(t *testing.T) {
	t.Parallel()

	t.Run("sends integer value and id", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, testBasePath+"/global/entries", r.URL.Path)
			assert.Equal(t, "id=u1", r.URL.RawQuery)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.JSONEq(t, `{"value":42}`, readBody(t, r))

			_, _ = w.Write([]byte(`{"path":"universes/123/orderedDataStores/Leaderboard/scopes/global/entries/u1","id":"u1","value":42.0}`))
		})

		entry, err := odsClient.CreateEntry(context.Background(), &ods.CreateEntryParams{
			DatastoreRef: testRef(),
			ID:           "u1",
			Value:        42,
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", entry.ID)
		assert.InDelta(t, 42.0, entry.Value, 0)
	})

	t.Run("conflict is a service error", func(t *testing.T) {
		t.Parallel()

		var calls int32

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"ALREADY_EXISTS","message":"Entry already exists."}`))
		})

		_, err := odsClient.CreateEntry(context.Background(), &ods.CreateEntryParams{DatastoreRef: testRef(), ID: "u1", Value: 1})
		require.Error(t, err)
		assert.True(t, ods.IsAlreadyExists(err))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestOrderedDataStoresClient_GetEntry(t *testing.T) {
	t.Parallel()

	t.Run("decodes entry", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, testBasePath+"/global/entries/player-1", r.URL.Path)
			assert.Empty(t, r.URL.RawQuery)

			_, _ = w.Write([]byte(`{"path":"p","id":"player-1","value":7.5}`))
		})

		entry, err := odsClient.GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "player-1"})
		require.NoError(t, err)
		assert.InDelta(t, 7.5, entry.Value, 0)
	})

	t.Run("not found carries the envelope", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"Entry not found."}`))
		})

		_, err := odsClient.GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "missing"})
		require.Error(t, err)
		assert.Equal(t, ods.ErrorKindService, ods.KindOf(err))

		serviceErr, ok := ods.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, serviceErr.StatusCode)
		assert.Equal(t, "NOT_FOUND", serviceErr.Envelope.Code)
		assert.Equal(t, "Entry not found.", serviceErr.Envelope.Message)
		assert.True(t, ods.IsNotFound(err))
	})

	t.Run("error body that is not an envelope is undecodable", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})

		_, err := odsClient.GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "a"})
		require.Error(t, err)
		assert.Equal(t, ods.ErrorKindUndecodable, ods.KindOf(err))

		decodeErr := &ods.DecodeError{}
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, ods.DecodeTargetEnvelope, decodeErr.Target)
		assert.Equal(t, http.StatusBadGateway, decodeErr.StatusCode)
		assert.Equal(t, "<html>bad gateway</html>", string(decodeErr.Body))
	})

	t.Run("malformed success payload is undecodable", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"a","value":"high"}`))
		})

		_, err := odsClient.GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "a"})
		require.Error(t, err)

		decodeErr := &ods.DecodeError{}
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, ods.DecodeTargetPayload, decodeErr.Target)
	})
}

func TestOrderedDataStoresClient_UpdateEntry(t *testing.T) {
	t.Parallel()

	t.Run("allow_missing is passed through", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "PATCH", r.Method)
			assert.Equal(t, testBasePath+"/global/entries/u1", r.URL.Path)
			assert.Equal(t, "allow_missing=true", r.URL.RawQuery)
			assert.JSONEq(t, `{"value":-3}`, readBody(t, r))

			_, _ = w.Write([]byte(`{"path":"p","id":"u1","value":-3}`))
		})

		entry, err := odsClient.UpdateEntry(context.Background(), &ods.UpdateEntryParams{
			DatastoreRef: testRef(),
			ID:           "u1",
			Value:        -3,
			AllowMissing: ods.Ptr(true),
		})
		require.NoError(t, err)
		assert.InDelta(t, -3.0, entry.Value, 0)
	})

	t.Run("absent allow_missing is not sent", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.RawQuery)
			_, _ = w.Write([]byte(`{"path":"p","id":"u1","value":1}`))
		})

		_, err := odsClient.UpdateEntry(context.Background(), &ods.UpdateEntryParams{DatastoreRef: testRef(), ID: "u1", Value: 1})
		require.NoError(t, err)
	})
}

func TestOrderedDataStoresClient_DeleteEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no content", http.StatusNoContent, ""},
		{"empty ok", http.StatusOK, ""},
		{"malformed ok body is ignored", http.StatusOK, "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "DELETE", r.Method)
				assert.Equal(t, testBasePath+"/global/entries/u1", r.URL.Path)
				assert.Empty(t, r.Header.Get("Content-Type"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := odsClient.DeleteEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "u1"})
			require.NoError(t, err)
		})
	}

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"gone"}`))
		})

		err := odsClient.DeleteEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "u1"})
		assert.True(t, ods.IsNotFound(err))
	})
}

func TestOrderedDataStoresClient_IncrementEntry(t *testing.T) {
	t.Parallel()

	var calls int32

	odsClient := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, testBasePath+"/global/entries/u1:increment", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.JSONEq(t, `{"amount":-5}`, readBody(t, r))

		// The reported value is whatever the service computed.
		_, _ = w.Write([]byte(`{"path":"p","id":"u1","value":95}`))
	})

	entry, err := odsClient.IncrementEntry(context.Background(), &ods.IncrementEntryParams{
		DatastoreRef: testRef(),
		ID:           "u1",
		Increment:    -5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 95.0, entry.Value, 0)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOrderedDataStoresClient_NilParams(t *testing.T) {
	t.Parallel()

	odsClient := NewOrderedDataStoresClient(internalhttp.NewClient("http://127.0.0.1:0"))
	ctx := context.Background()

	_, err := odsClient.ListEntries(ctx, nil)
	require.ErrorIs(t, err, ods.ErrParamsRequired)
	_, err = odsClient.CreateEntry(ctx, nil)
	require.ErrorIs(t, err, ods.ErrParamsRequired)
	_, err = odsClient.GetEntry(ctx, nil)
	require.ErrorIs(t, err, ods.ErrParamsRequired)
	_, err = odsClient.UpdateEntry(ctx, nil)
	require.ErrorIs(t, err, ods.ErrParamsRequired)
	require.ErrorIs(t, odsClient.DeleteEntry(ctx, nil), ods.ErrParamsRequired)
	_, err = odsClient.IncrementEntry(ctx, nil)
	require.ErrorIs(t, err, ods.ErrParamsRequired)
}

func TestOrderedDataStoresClient_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	odsClient := NewOrderedDataStoresClient(internalhttp.NewClient(serverURL))

	_, err := odsClient.GetEntry(context.Background(), &ods.EntryParams{DatastoreRef: testRef(), ID: "a"})
	require.Error(t, err)
	assert.Equal(t, ods.ErrorKindTransport, ods.KindOf(err))
	assert.False(t, ods.IsNotFound(err))
}
