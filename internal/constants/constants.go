package constants

import "time"

// Service endpoints and defaults.
const (
	// DefaultBaseURL is the root of the ordered data stores API.
	DefaultBaseURL = "https://apis.roblox.com/ordered-data-stores/v1"

	// DefaultScope is used when an operation does not name a scope.
	DefaultScope = "global"

	// DefaultUserAgent is sent when the caller does not override it.
	DefaultUserAgent = "ods-client/1.0"
)

// HTTP header names and values.
const (
	// HeaderAPIKey carries the caller's credential.
	HeaderAPIKey = "x-api-key"

	// HeaderContentType is the request payload media type header.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the accepted response media type header.
	HeaderAccept = "Accept"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"

	// ContentTypeJSON is the media type of every request and response body.
	ContentTypeJSON = "application/json"

	// MaskedValue replaces secrets in logs and CLI output.
	MaskedValue = "***"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry settings. Retries are only used when a caller opts in.
const (
	// DefaultRetryWaitMin is the minimum wait time between opted-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between opted-in retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Twin server settings.
const (
	// DefaultTwinPort is the port `ods twin serve` listens on.
	DefaultTwinPort = 12180

	// DefaultTwinPageSize is used by the twin when max_page_size is absent.
	DefaultTwinPageSize = 10

	// MaxTwinPageSize caps max_page_size on the twin.
	MaxTwinPageSize = 100

	// TwinShutdownTimeout bounds graceful shutdown of the twin server.
	TwinShutdownTimeout = 10 * time.Second
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Command line settings.
const (
	// MinimumArgumentCount is the argument count of key/value commands.
	MinimumArgumentCount = 2

	// StandardPageSize is the page size the CLI requests by default.
	StandardPageSize = 50
)
