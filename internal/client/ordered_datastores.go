package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ods-client/internal/http"
	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

// OrderedDataStoresClient implements ods.OrderedDataStoresClient.
type OrderedDataStoresClient struct {
	httpClient *http.Client
}

// NewOrderedDataStoresClient creates a new ordered data stores client.
func NewOrderedDataStoresClient(httpClient *http.Client) *OrderedDataStoresClient {
	return &OrderedDataStoresClient{
		httpClient: httpClient,
	}
}

// Write bodies. Values go out as integers even though reads come back as
// floating point.
type entryValueBody struct {
	Value int64 `json:"value"`
}

type incrementBody struct {
	Amount int64 `json:"amount"`
}

// ListEntries implements ods.OrderedDataStoresClient.ListEntries.
func (c *OrderedDataStoresClient) ListEntries(ctx context.Context, params *ods.ListEntriesParams) (*ods.ListEntriesResponse, error) {
	if params == nil {
		return nil, ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "GET",
		Segments: params.Segments(ods.EntriesSegments()...),
		Query:    params.Query(),
		APIKey:   params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	list, err := handleResponse[ods.ListEntriesResponse](resp)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return list, nil
}

// CreateEntry implements ods.OrderedDataStoresClient.CreateEntry.
func (c *OrderedDataStoresClient) CreateEntry(ctx context.Context, params *ods.CreateEntryParams) (*ods.Entry, error) {
	if params == nil {
		return nil, ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "POST",
		Segments: params.Segments(ods.EntriesSegments()...),
		Query:    params.Query(),
		Body:     entryValueBody{Value: params.Value},
		APIKey:   params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating entry %q: %w", params.ID, err)
	}

	entry, err := handleResponse[ods.Entry](resp)
	if err != nil {
		return nil, fmt.Errorf("creating entry %q: %w", params.ID, err)
	}

	return entry, nil
}

// GetEntry implements ods.OrderedDataStoresClient.GetEntry.
func (c *OrderedDataStoresClient) GetEntry(ctx context.Context, params *ods.EntryParams) (*ods.Entry, error) {
	if params == nil {
		return nil, ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "GET",
		Segments: params.Segments(ods.EntrySegments(params.ID)...),
		APIKey:   params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("getting entry %q: %w", params.ID, err)
	}

	entry, err := handleResponse[ods.Entry](resp)
	if err != nil {
		return nil, fmt.Errorf("getting entry %q: %w", params.ID, err)
	}

	return entry, nil
}

// UpdateEntry implements ods.OrderedDataStoresClient.UpdateEntry.
func (c *OrderedDataStoresClient) UpdateEntry(ctx context.Context, params *ods.UpdateEntryParams) (*ods.Entry, error) {
	if params == nil {
		return nil, ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "PATCH",
		Segments: params.Segments(ods.EntrySegments(params.ID)...),
		Query:    params.Query(),
		Body:     entryValueBody{Value: params.Value},
		APIKey:   params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("updating entry %q: %w", params.ID, err)
	}

	entry, err := handleResponse[ods.Entry](resp)
	if err != nil {
		return nil, fmt.Errorf("updating entry %q: %w", params.ID, err)
	}

	return entry, nil
}

// DeleteEntry implements ods.OrderedDataStoresClient.DeleteEntry.
func (c *OrderedDataStoresClient) DeleteEntry(ctx context.Context, params *ods.EntryParams) error {
	if params == nil {
		return ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "DELETE",
		Segments: params.Segments(ods.EntrySegments(params.ID)...),
		APIKey:   params.APIKey,
	})
	if err != nil {
		return fmt.Errorf("deleting entry %q: %w", params.ID, err)
	}

	err = handleEmptyResponse(resp)
	if err != nil {
		return fmt.Errorf("deleting entry %q: %w", params.ID, err)
	}

	return nil
}

// IncrementEntry implements ods.OrderedDataStoresClient.IncrementEntry.
func (c *OrderedDataStoresClient) IncrementEntry(ctx context.Context, params *ods.IncrementEntryParams) (*ods.Entry, error) {
	if params == nil {
		return nil, ods.ErrParamsRequired
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:   "PATCH",
		Segments: params.Segments(ods.IncrementSegments(params.ID)...),
		Body:     incrementBody{Amount: params.Increment},
		APIKey:   params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("incrementing entry %q: %w", params.ID, err)
	}

	entry, err := handleResponse[ods.Entry](resp)
	if err != nil {
		return nil, fmt.Errorf("incrementing entry %q: %w", params.ID, err)
	}

	return entry, nil
}
