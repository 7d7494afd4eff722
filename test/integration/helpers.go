//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ods-client/internal/twin"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
	"github.com/fivetwenty-io/ods-client/pkg/odsclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	BaseURL    string
	APIKey     string
	UniverseID ods.UniverseID
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables. Without
// ODS_BASE_URL the tests run against an in-process twin.
func LoadTestConfig(t *testing.T) *TestConfig {
	t.Helper()

	config := &TestConfig{
		BaseURL: os.Getenv("ODS_BASE_URL"),
		APIKey:  os.Getenv("ODS_API_KEY"),
		Verbose: os.Getenv("ODS_VERBOSE") == "true",
	}

	if raw := os.Getenv("ODS_UNIVERSE_ID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		require.NoError(t, err, "ODS_UNIVERSE_ID")

		config.UniverseID = ods.UniverseID(id)
	}

	if config.BaseURL != "" {
		if config.APIKey == "" || config.UniverseID == 0 {
			t.Skip("ODS_API_KEY and ODS_UNIVERSE_ID are required with ODS_BASE_URL")
		}

		return config
	}

	config.APIKey = "integration-key"
	config.UniverseID = 4242

	tw, err := twin.New(&twin.Config{
		APIKey: config.APIKey,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	server := httptest.NewServer(tw)
	t.Cleanup(server.Close)

	config.BaseURL = server.URL

	return config
}

// NewClient builds a client for the configured target.
func (c *TestConfig) NewClient(t *testing.T) ods.Client {
	t.Helper()

	config := &ods.Config{
		BaseURL:     c.BaseURL,
		HTTPTimeout: 30 * time.Second,
	}

	if c.Verbose {
		config.Logger = ods.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		config.Debug = true
	}

	client, err := odsclient.New(context.Background(), config)
	require.NoError(t, err)

	return client
}

// Ref returns a reference to a data store unique to the running test.
func (c *TestConfig) Ref(t *testing.T) ods.DatastoreRef {
	t.Helper()

	scope := fmt.Sprintf("it-%d", time.Now().UnixNano())

	return ods.DatastoreRef{
		APIKey:        c.APIKey,
		UniverseID:    c.UniverseID,
		DatastoreName: "IntegrationTests",
		Scope:         &scope,
	}
}

// cleanupEntries deletes ids after the test, ignoring entries already gone.
func cleanupEntries(t *testing.T, client ods.Client, ref ods.DatastoreRef, ids ...string) {
	t.Helper()

	t.Cleanup(func() {
		for _, id := range ids {
			err := client.OrderedDataStores().DeleteEntry(context.Background(), &ods.EntryParams{DatastoreRef: ref, ID: id})
			if err != nil && !ods.IsNotFound(err) {
				t.Logf("cleanup of %s failed: %v", id, err)
			}
		}
	})
}
