package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKey         = errors.New("no API key configured, use 'ods login' or --api-key")
	ErrNoUniverseID     = errors.New("no universe id configured, use --universe-id")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrInvalidOutputFormat  = errors.New("invalid output format, expected table, json or yaml")
	ErrDatastoreNameMissing = errors.New("--datastore-name flag is required")
	ErrIDMissing            = errors.New("--id flag is required")
	ErrEmptyAPIKey          = errors.New("API key must not be empty")
)
