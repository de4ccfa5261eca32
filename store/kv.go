// Package store persists the activity collection.
//
// The collection lives under one fixed key of a key-value slot. Every append
// or delete rewrites the whole collection; there is no partial update. The
// slot can be backed by a directory of JSON files, a bbolt database, or a
// SQLite database.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by OpenKV.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// KV is a persistent key-value slot.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases any resources held by the backend.
	Close() error
}

// OpenKV opens the named backend at path. path is a directory for the file
// backend and a database file for bolt and sqlite; it is ignored for memory.
func OpenKV(backend, path string) (KV, error) {
	switch strings.ToLower(backend) {
	case BackendFile:
		return NewFileKV(path)
	case BackendBolt:
		return NewBoltKV(path, DefaultBucket)
	case BackendSQLite:
		return NewSQLiteKV(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
