// Package odsclient provides the main entry point for creating ordered data stores API clients
package odsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ods-client/internal/client"
	"github.com/fivetwenty-io/ods-client/internal/constants"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// New creates a new ordered data stores API client. config is not modified.
func New(ctx context.Context, config *ods.Config) (ods.Client, error) {
	if config == nil {
		return nil, ods.ErrConfigRequired
	}

	normalized := *config
	normalized.BaseURL = normalizeBaseURL(config.BaseURL)

	odsClient, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return odsClient, nil
}

// normalizeBaseURL defaults an empty URL, trims the trailing slash and adds
// https:// when no scheme is given.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return constants.DefaultBaseURL
	}

	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// NewDefault creates a client for the public API with default settings.
func NewDefault(ctx context.Context) (ods.Client, error) {
	return New(ctx, &ods.Config{})
}

// NewWithBaseURL creates a client for an alternative API root, such as a
// local twin.
func NewWithBaseURL(ctx context.Context, baseURL string) (ods.Client, error) {
	return New(ctx, &ods.Config{
		BaseURL: baseURL,
	})
}
