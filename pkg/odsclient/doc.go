// Package odsclient provides the primary entry point for constructing an
// ordered data stores API client that implements the ods.Client interface.
//
// It layers configuration and HTTP transport on top of the interfaces and
// types defined in the ods package. Most applications should import odsclient
// to build a client, then use OrderedDataStores() on the returned ods.Client.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/ods-client/pkg/ods"
//	  "github.com/fivetwenty-io/ods-client/pkg/odsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Public API with defaults.
//	  cli, err := odsclient.NewDefault(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with logging and opt-in retries:
//	  cli, err = odsclient.New(ctx, &ods.Config{
//	    Logger:   ods.NewSlogLogger(nil),
//	    Debug:    true,
//	    RetryMax: 3,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := cli.OrderedDataStores().ListEntries(ctx, &ods.ListEntriesParams{
//	    DatastoreRef: ods.DatastoreRef{APIKey: "key", UniverseID: 1, DatastoreName: "Leaderboard"},
//	    OrderBy:      ods.Ptr("desc"),
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Base URL
//
// Config.BaseURL defaults to the public API. A value without a scheme gets
// https:// prepended and a trailing slash is removed, so "localhost:12180/"
// and "https://localhost:12180" are equivalent.
package odsclient
