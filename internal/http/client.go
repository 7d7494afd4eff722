// Package http issues single HTTP exchanges against the ordered data stores API.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// Logger interface for HTTP client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client performs requests relative to a base URL.
type Client struct {
	baseURL      *url.URL
	httpClient   *retryablehttp.Client
	logger       Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the overall timeout of each HTTP exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig opts in to retries on transient failures. Without it every
// request is sent exactly once.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// Request describes one API call.
type Request struct {
	Method string
	// Segments are appended to the base URL path. Each one is escaped on its
	// own, so a '/' inside a segment never adds a level to the path.
	Segments []string
	Query    ods.Query
	Body     interface{}
	APIKey   string
	Headers  map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx class.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// NewClient creates a client for baseURL. An unparsable baseURL surfaces on
// the first request.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err == nil {
		client.baseURL = parsed
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = client.timeout
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	// Non-2xx responses are handed back untouched so the caller can decode
	// the error envelope.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	client.httpClient = retryClient

	return client
}

// Do sends req and reads the whole response. The returned error is always an
// *ods.TransportError: any response that arrived, whatever its status, is
// returned without error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req.Segments, req.Query)
	if err != nil {
		return nil, &ods.TransportError{Method: req.Method, URL: "/" + strings.Join(req.Segments, "/"), Err: err}
	}

	var rawBody interface{}

	if req.Body != nil {
		body, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &ods.TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("marshaling request body: %w", err)}
		}

		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, &ods.TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	c.setHeaders(httpReq, req)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"has_body": rawBody != nil,
			"api_key":  constants.MaskedValue,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The passthrough error handler can hand back a response alongside the
		// error, e.g. after too many redirects.
		if httpResp != nil && httpResp.Body != nil {
			_ = httpResp.Body.Close()
		}

		return nil, &ods.TransportError{Method: req.Method, URL: fullURL, Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ods.TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": httpResp.StatusCode,
			"duration":    time.Since(start).String(),
			"body_size":   len(body),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) buildURL(segments []string, query ods.Query) (string, error) {
	if c.baseURL == nil {
		return "", ods.ErrInvalidBaseURL
	}

	escaped := make([]string, len(segments))

	for i, segment := range segments {
		if segment == "" {
			return "", fmt.Errorf("%w at position %d", ods.ErrEmptyPathSegment, i)
		}

		escaped[i] = escapeSegment(segment)
	}

	target := *c.baseURL
	target.Path = strings.TrimSuffix(target.Path, "/")
	target.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/")

	if len(segments) > 0 {
		target.Path += "/" + strings.Join(segments, "/")
		target.RawPath += "/" + strings.Join(escaped, "/")
	}

	target.RawQuery = query.Encode()

	return target.String(), nil
}

// escapeSegment escapes one path segment. Segments made only of dots are
// percent-encoded too, since "." and ".." would otherwise be resolved as
// relative references by servers and proxies.
func escapeSegment(segment string) string {
	if strings.Trim(segment, ".") == "" {
		return strings.ReplaceAll(segment, ".", "%2E")
	}

	return url.PathEscape(segment)
}

func (c *Client) setHeaders(httpReq *retryablehttp.Request, req *Request) {
	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if req.APIKey != "" {
		httpReq.Header.Set(constants.HeaderAPIKey, req.APIKey)
	}

	if req.Body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
}

// leveledLogger routes retryablehttp's own messages to Logger. Its per-attempt
// debug chatter is dropped; request logging is done by Do.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFromKeysAndValues(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFromKeysAndValues(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFromKeysAndValues(keysAndValues))
}

func fieldsFromKeysAndValues(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
