package twin

import (
	"errors"
	"math"
	"sort"
	"sync"
)

// Store errors, mapped onto service error codes by the handlers.
var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrEntryExists   = errors.New("entry already exists")
	ErrValueOverflow = errors.New("value out of range")
)

// ScopeKey identifies one scope of one ordered data store.
type ScopeKey struct {
	UniverseID string `json:"universeId"`
	Datastore  string `json:"datastore"`
	Scope      string `json:"scope"`
}

// Record is a stored entry. Values are kept as integers, the only type the
// service accepts on write.
type Record struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

// ListOptions select and order a listing.
type ListOptions struct {
	Descending bool
	Filter     *ValueFilter
	Offset     int
	Limit      int
}

// MemoryStore is a thread-safe in-memory ordered data store.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[ScopeKey]map[string]int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scopes: make(map[ScopeKey]map[string]int64),
	}
}

// scope returns the entries of key, creating the map when create is set.
// Callers hold the lock.
func (s *MemoryStore) scope(key ScopeKey, create bool) map[string]int64 {
	entries, ok := s.scopes[key]
	if !ok && create {
		entries = make(map[string]int64)
		s.scopes[key] = entries
	}

	return entries
}

// Create adds a new entry. It fails with ErrEntryExists if id is taken.
func (s *MemoryStore) Create(key ScopeKey, id string, value int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.scope(key, true)
	if _, exists := entries[id]; exists {
		return Record{}, ErrEntryExists
	}

	entries[id] = value

	return Record{ID: id, Value: value}, nil
}

// Get returns the entry id.
func (s *MemoryStore) Get(key ScopeKey, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.scope(key, false)[id]
	if !ok {
		return Record{}, ErrEntryNotFound
	}

	return Record{ID: id, Value: value}, nil
}

// Update replaces the value of id. A missing entry is created only when
// allowMissing is set.
func (s *MemoryStore) Update(key ScopeKey, id string, value int64, allowMissing bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.scope(key, allowMissing)
	if _, exists := entries[id]; !exists && !allowMissing {
		return Record{}, ErrEntryNotFound
	}

	entries[id] = value

	return Record{ID: id, Value: value}, nil
}

// Increment adds amount to id under the store lock, creating the entry with
// amount as its value when it does not exist. A sum that does not fit in an
// int64 leaves the entry unchanged and returns ErrValueOverflow.
func (s *MemoryStore) Increment(key ScopeKey, id string, amount int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.scope(key, true)
	current := entries[id]

	if (amount > 0 && current > math.MaxInt64-amount) || (amount < 0 && current < math.MinInt64-amount) {
		return Record{}, ErrValueOverflow
	}

	entries[id] = current + amount

	return Record{ID: id, Value: entries[id]}, nil
}

// Delete removes id.
func (s *MemoryStore) Delete(key ScopeKey, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.scope(key, false)
	if _, exists := entries[id]; !exists {
		return ErrEntryNotFound
	}

	delete(entries, id)

	return nil
}

// List returns one window of the scope sorted by value, ties broken by id,
// and whether more entries follow it.
func (s *MemoryStore) List(key ScopeKey, opts ListOptions) ([]Record, bool) {
	s.mu.RLock()

	records := make([]Record, 0, len(s.scope(key, false)))
	for id, value := range s.scope(key, false) {
		if opts.Filter != nil && !opts.Filter.Match(value) {
			continue
		}

		records = append(records, Record{ID: id, Value: value})
	}

	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Value != records[j].Value {
			if opts.Descending {
				return records[i].Value > records[j].Value
			}

			return records[i].Value < records[j].Value
		}

		return records[i].ID < records[j].ID
	})

	if opts.Offset >= len(records) {
		return []Record{}, false
	}

	end := len(records)
	if opts.Limit > 0 && opts.Offset+opts.Limit < end {
		end = opts.Offset + opts.Limit
	}

	return records[opts.Offset:end], end < len(records)
}

// Len returns the number of entries in a scope.
func (s *MemoryStore) Len(key ScopeKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.scope(key, false))
}

// Reset removes every entry.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scopes = make(map[ScopeKey]map[string]int64)
}
