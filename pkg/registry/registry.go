// Package registry stores values under sequential uint64 IDs in Pebble.
//
// IDs start at 1 and are never reused, which makes them cheap to squish into
// short codes with the codec package. Every entry also gets a KSUID reference
// that is handed to the creator and required to delete the entry.
package registry

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound    = errors.New("registry: entry not found")
	ErrRefMismatch = errors.New("registry: reference does not match entry")
	ErrClosed      = errors.New("registry: closed")
)

var (
	entryPrefix = []byte("e/")
	seqKey      = []byte("m/seq")
)

// Entry is a stored value
type Entry struct {
	ID        uint64      `json:"id"`
	Ref       ksuid.KSUID `json:"ref"`
	Value     string      `json:"value"`
	CreatedAt time.Time   `json:"created_at"`
}

// Options configures a Registry
type Options struct {
	// InMemory keeps everything in memory; Path is ignored.
	InMemory bool
	Logger   *slog.Logger
}

// Registry is a Pebble-backed sequential ID store
type Registry struct {
	db     *pebble.DB
	logger *slog.Logger

	// mu serializes writes and keeps reads off a closed database
	mu     sync.RWMutex
	next   uint64
	closed bool
}

// Open opens or creates a registry at path
func Open(path string, opts Options) (*Registry, error) {
	pebbleOpts := &pebble.Options{}
	if opts.InMemory {
		pebbleOpts.FS = vfs.NewMem()
	}

	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{db: db, logger: logger, next: 1}
	if err := r.loadSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("registry opened", "path", path, "next_id", r.next)
	return r, nil
}

func (r *Registry) loadSequence() error {
	data, closer, err := r.db.Get(seqKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}
	defer closer.Close()

	if len(data) != 8 {
		return fmt.Errorf("corrupt sequence: %d bytes", len(data))
	}
	r.next = binary.BigEndian.Uint64(data)
	return nil
}

func entryKey(id uint64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], id)
	return key
}

// Create stores value under the next ID
func (r *Registry) Create(value string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.next == 0 {
		return nil, fmt.Errorf("registry: ID space exhausted")
	}

	entry := &Entry{
		ID:        r.next,
		Ref:       ksuid.New(),
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], entry.ID+1)

	// Entry and counter are committed together so a crash never reuses an ID
	batch := r.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(entryKey(entry.ID), data, nil); err != nil {
		return nil, fmt.Errorf("failed to stage entry: %w", err)
	}
	if err := batch.Set(seqKey, seq[:], nil); err != nil {
		return nil, fmt.Errorf("failed to stage sequence: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	r.next = entry.ID + 1
	r.logger.Debug("entry created", "id", entry.ID, "ref", entry.Ref.String())
	return entry, nil
}

// Read returns the entry stored under id
func (r *Registry) Read(id uint64) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(id)
}

// read expects r.mu to be held
func (r *Registry) read(id uint64) (*Entry, error) {
	if r.closed {
		return nil, ErrClosed
	}

	data, closer, err := r.db.Get(entryKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %d: %w", id, err)
	}
	defer closer.Close()

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry %d: %w", id, err)
	}
	return &entry, nil
}

// Delete removes the entry stored under id if ref matches
func (r *Registry) Delete(id uint64, ref ksuid.KSUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.read(id)
	if err != nil {
		return err
	}
	if entry.Ref != ref {
		return ErrRefMismatch
	}

	if err := r.db.Delete(entryKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}

	r.logger.Debug("entry deleted", "id", id)
	return nil
}

// Count returns the number of live entries
func (r *Registry) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, ErrClosed
	}

	upper := append([]byte(nil), entryPrefix...)
	upper[len(upper)-1]++

	iter, err := r.db.NewIter(&pebble.IterOptions{LowerBound: entryPrefix, UpperBound: upper})
	if err != nil {
		return 0, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}

// NextID returns the ID the next Create will use
func (r *Registry) NextID() (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, ErrClosed
	}
	return r.next, nil
}

// Close flushes and closes the underlying database
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}
