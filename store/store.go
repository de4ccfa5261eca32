package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nomis52/goplan/record"
)

// DefaultKey is the slot key holding the serialized collection.
const DefaultKey = "gemteAktiviteter"

// ErrCapacity is returned when appending to a collection that is already full.
var ErrCapacity = errors.New("activity collection is full")

// Store holds the ordered activity collection and mirrors every change to
// its KV slot.
//
// The in-memory collection always equals the last value written: a mutation
// is only applied after the full collection has been persisted.
type Store struct {
	kv     KV
	key    string
	cap    int
	logger *slog.Logger

	records []record.Activity // protected by mu
	mu      sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the slot key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithCap limits the collection to n records. Zero means uncapped.
func WithCap(n int) Option {
	return func(s *Store) {
		s.cap = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a store over kv and loads the persisted collection.
// An absent key yields an empty collection.
func New(ctx context.Context, kv KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:      kv,
		key:     DefaultKey,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		records: make([]record.Activity, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Records returns a snapshot of the collection in insertion order.
func (s *Store) Records() []record.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return record.CloneAll(s.records)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cap returns the configured capacity, zero if uncapped.
func (s *Store) Cap() int {
	return s.cap
}

// Append adds a record at the end of the collection and persists it.
func (s *Store) Append(ctx context.Context, a record.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap > 0 && len(s.records) >= s.cap {
		return fmt.Errorf("%w: limit is %d", ErrCapacity, s.cap)
	}

	next := make([]record.Activity, 0, len(s.records)+1)
	next = append(next, s.records...)
	next = append(next, a.Clone())

	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.records = next

	s.logger.Debug("activity appended", "id", a.ID, "count", len(next))
	return nil
}

// Delete removes the record with the given id. It reports whether a record
// was removed; an unknown id leaves the collection and the slot untouched.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.records {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]record.Activity, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)

	if err := s.write(ctx, next); err != nil {
		return false, err
	}
	s.records = next

	s.logger.Debug("activity deleted", "id", id, "count", len(next))
	return true, nil
}

// Reload re-reads the collection from the slot. The read holds the lock so
// a concurrent mutation is either fully before or fully after it.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to read collection: %w", err)
	}

	records := make([]record.Activity, 0)
	if ok && len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("failed to parse collection: %w", err)
		}
	}

	s.records = records

	s.logger.Info("loaded activities", "key", s.key, "count", len(records))
	return nil
}

// Close closes the underlying slot.
func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) write(ctx context.Context, records []record.Activity) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}
	return nil
}
