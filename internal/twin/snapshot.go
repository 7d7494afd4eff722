package twin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/fivetwenty-io/ods-client/internal/constants"
)

// ErrDecompress is returned when a compressed snapshot cannot be read.
var ErrDecompress = errors.New("decompressing snapshot")

// compressedSuffix marks snapshot files stored zstd-compressed.
const compressedSuffix = ".zst"

// Both are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// SnapshotEntry is one entry of a snapshot file.
type SnapshotEntry struct {
	ScopeKey

	ID    string `json:"id"`
	Value int64  `json:"value"`
}

// Snapshot is the on-disk form of a MemoryStore, used both for seed
// fixtures and for state written on shutdown.
type Snapshot struct {
	Entries []SnapshotEntry `json:"entries"`
}

// Snapshot returns the store contents sorted by scope and id.
func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{Entries: []SnapshotEntry{}}

	for key, entries := range s.scopes {
		for id, value := range entries {
			snap.Entries = append(snap.Entries, SnapshotEntry{ScopeKey: key, ID: id, Value: value})
		}
	}

	sort.Slice(snap.Entries, func(i, j int) bool {
		a, b := snap.Entries[i], snap.Entries[j]
		if a.ScopeKey != b.ScopeKey {
			return a.UniverseID+"\x00"+a.Datastore+"\x00"+a.Scope < b.UniverseID+"\x00"+b.Datastore+"\x00"+b.Scope
		}

		return a.ID < b.ID
	})

	return snap
}

// Restore replaces the store contents with snap.
func (s *MemoryStore) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scopes = make(map[ScopeKey]map[string]int64)

	for _, entry := range snap.Entries {
		s.scope(entry.ScopeKey, true)[entry.ID] = entry.Value
	}
}

// LoadSnapshot reads a snapshot file. Files ending in .zst are decompressed.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if strings.HasSuffix(path, compressedSuffix) {
		data, err = zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
		}
	}

	var snap Snapshot

	err = json.Unmarshal(data, &snap)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return &snap, nil
}

// SaveSnapshot writes snap to path, compressing it when path ends in .zst.
func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if strings.HasSuffix(path, compressedSuffix) {
		data = zstdEncoder.EncodeAll(data, nil)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}
