package client

import (
	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/internal/http"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// Client implements the ods.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     ods.Logger

	// Resource clients
	orderedDataStores ods.OrderedDataStoresClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *ods.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new ordered data stores API client. config.BaseURL is used
// as given; odsclient.New is responsible for defaulting and normalizing it.
func New(config *ods.Config) (*Client, error) {
	if config == nil {
		return nil, ods.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ods.ErrInvalidBaseURL
	}

	httpClient := http.NewClient(config.BaseURL, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.BaseURL,
		logger:     config.Logger,
	}

	client.orderedDataStores = NewOrderedDataStoresClient(httpClient)

	return client, nil
}

// OrderedDataStores implements ods.Client.OrderedDataStores.
func (c *Client) OrderedDataStores() ods.OrderedDataStoresClient {
	return c.orderedDataStores
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// loggerAdapter adapts ods.Logger to http.Logger.
type loggerAdapter struct {
	logger ods.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
