package ods

import (
	"context"
	"time"
)

// EntryLister lists one page of entries.
type EntryLister interface {
	ListEntries(ctx context.Context, params *ListEntriesParams) (*ListEntriesResponse, error)
}

// OrderedDataStoresClient exposes the entry operations of an ordered data store.
//
// Every call is a single request/response exchange. Nothing is cached,
// retried, or sequenced across calls, so a client may be shared freely
// between goroutines.
type OrderedDataStoresClient interface {
	EntryLister

	CreateEntry(ctx context.Context, params *CreateEntryParams) (*Entry, error)
	GetEntry(ctx context.Context, params *EntryParams) (*Entry, error)
	UpdateEntry(ctx context.Context, params *UpdateEntryParams) (*Entry, error)
	DeleteEntry(ctx context.Context, params *EntryParams) error
	// IncrementEntry asks the service to apply the delta atomically and
	// returns the entry as the service reports it afterwards.
	IncrementEntry(ctx context.Context, params *IncrementEntryParams) (*Entry, error)
}

// Client provides access to the resource clients of the API.
type Client interface {
	OrderedDataStores() OrderedDataStoresClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Credentials
//
// The API key is not part of Config. It travels with every operation's
// parameters (DatastoreRef.APIKey) and is sent as the x-api-key header.
//
// # Timeouts and retries
//
// Per-request timeouts should be controlled via the context passed to each
// operation. By default every operation performs exactly one HTTP request.
// RetryMax/RetryWaitMin/RetryWaitMax let a caller opt in to backoff retries
// on transient failures; create and increment are not idempotent, so only
// enable this when duplicate writes are acceptable.
type Config struct {
	// BaseURL: root of the ordered data stores API. Defaults to
	// "https://apis.roblox.com/ordered-data-stores/v1". odsclient.New trims a
	// trailing slash and adds "https://" if no scheme is present.
	BaseURL string

	// Optional configurations
	// HTTPTimeout: overall timeout of the underlying http.Client. Zero keeps
	// the package default.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries. Zero (the default) disables retries
	// and keeps every operation to a single HTTP exchange. A positive value is
	// an opt-in outside that contract: a failed attempt may be resent, and a
	// non-idempotent write may then be applied more than once.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}
