// Package store implements the keyed entity store used by every collection
// (projects, patterns, components, users, chats) on top of a transactional
// key-value backend.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrBackendClosed = errors.New("store backend is closed")
)

// KV is one key/value pair returned by Scan. Both slices are owned by the caller.
type KV struct {
	Key   []byte
	Value []byte
}

// Reader is the read half of a backend view or transaction.
type Reader interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Scan returns keys under prefix strictly greater than after (nil means
	// from the start of the prefix), in ascending byte order. limit <= 0
	// returns everything.
	Scan(prefix, after []byte, limit int) ([]KV, error)
}

// Txn is an exclusive write transaction.
type Txn interface {
	Reader
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Backend is a durable ordered key-value store. Update runs fn inside an
// exclusive transaction: concurrent Updates are serialized and either all of
// fn's writes land or none do.
type Backend interface {
	View(ctx context.Context, fn func(r Reader) error) error
	Update(ctx context.Context, fn func(tx Txn) error) error
	Close() error
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// checkDirWritable checks if directory is writable
func checkDirWritable(dir string) error {
	testFile := filepath.Join(dir, ".test-write")
	file, err := os.Create(testFile)
	if err != nil {
		return err
	}
	file.Close()
	return os.Remove(testFile)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
