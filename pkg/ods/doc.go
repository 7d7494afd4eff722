// Package ods provides types, interfaces, and helpers for working with the
// Roblox Open Cloud ordered data stores API.
//
// # Overview
//
// An ordered data store holds numeric entries keyed by string ids, grouped
// into scopes within a universe, and can be listed in sorted order. The ods
// package defines the data model (Entry, ListEntriesResponse, PageToken), the
// parameter records for each operation, and the OrderedDataStoresClient
// interface. A concrete implementation is provided by the odsclient package.
//
// Getting a client
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
//	  cli, err := odsclient.New(ctx, &ods.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  entry, err := cli.OrderedDataStores().IncrementEntry(ctx, &ods.IncrementEntryParams{
//	    DatastoreRef: ods.DatastoreRef{
//	      APIKey:        "key",
//	      UniverseID:    12345,
//	      DatastoreName: "Leaderboard",
//	    },
//	    ID:        "player-1",
//	    Increment: 10,
//	  })
//	  if err != nil { log.Fatal(err) }
//	  _ = entry
//	}
//
// # Values
//
// Writes send values as int64 while reads decode them as float64, matching
// the wire format of the service. Values beyond 2^53 lose precision on read.
//
// # Pagination
//
// ListEntries returns one page. Pass the page's NextPageToken as the next
// request's PageToken, or let an EntryIterator do it:
//
//	it := ods.NewEntryIterator(ctx, cli.OrderedDataStores(), params)
//	for it.HasNext() {
//	  entry, err := it.Next()
//	  if err != nil { break }
//	  _ = entry
//	}
//
// # Errors
//
// Operations fail with exactly one of three error types: TransportError when
// no response was received, ServiceError when the service answered with an
// error envelope, and DecodeError when a body could not be decoded. KindOf
// classifies an error; IsNotFound, IsAlreadyExists and friends branch on the
// envelope code.
package ods
