package ods

import (
	"context"
	"errors"
	"fmt"
)

// EntryIterator walks a listing page by page. Each page's NextPageToken is
// passed verbatim as the PageToken of the following request.
type EntryIterator struct {
	ctx       context.Context
	lister    EntryLister
	params    ListEntriesParams
	buffer    []Entry
	index     int
	nextToken PageToken
	fetched   bool
	err       error
}

// NewEntryIterator creates an iterator starting at the page described by
// params. params is copied and never modified.
func NewEntryIterator(ctx context.Context, lister EntryLister, params *ListEntriesParams) *EntryIterator {
	iterator := &EntryIterator{
		ctx:    ctx,
		lister: lister,
	}

	if params != nil {
		iterator.params = *params
	}

	return iterator
}

// HasNext reports whether Next may yield another entry. It returns false
// once an error has been returned.
func (it *EntryIterator) HasNext() bool {
	if it.err != nil {
		return false
	}

	if it.index < len(it.buffer) {
		return true
	}

	return !it.fetched || !it.nextToken.IsZero()
}

// Next returns the next entry, fetching further pages when the current one is
// exhausted. It returns ErrNoMoreEntries after the final page.
func (it *EntryIterator) Next() (*Entry, error) {
	if it.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIteratorStopped, it.err)
	}

	for it.index >= len(it.buffer) {
		if it.fetched && it.nextToken.IsZero() {
			return nil, ErrNoMoreEntries
		}

		err := it.fetchPage()
		if err != nil {
			it.err = err

			return nil, err
		}
	}

	entry := it.buffer[it.index]
	it.index++

	return &entry, nil
}

// All drains the iterator and returns every remaining entry in service order.
func (it *EntryIterator) All() ([]Entry, error) {
	var entries []Entry

	for it.HasNext() {
		entry, err := it.Next()
		if errors.Is(err, ErrNoMoreEntries) {
			break
		}

		if err != nil {
			return entries, err
		}

		entries = append(entries, *entry)
	}

	return entries, nil
}

// NextPageToken returns the cursor of the page after the last fetched one.
func (it *EntryIterator) NextPageToken() PageToken {
	return it.nextToken
}

func (it *EntryIterator) fetchPage() error {
	params := it.params
	if it.fetched {
		token := it.nextToken
		params.PageToken = &token
	}

	page, err := it.lister.ListEntries(it.ctx, &params)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	it.fetched = true
	it.buffer = page.Entries
	it.index = 0
	it.nextToken = page.NextPageToken

	return nil
}

// ListAllEntries fetches every page starting from params and returns the
// concatenated entries.
func ListAllEntries(ctx context.Context, lister EntryLister, params *ListEntriesParams) ([]Entry, error) {
	return NewEntryIterator(ctx, lister, params).All()
}
