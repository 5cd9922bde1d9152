package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"leverage/pkg/logger"
)

const leveldbDataDir = "entities"

// LevelDBBackend implements Backend on a single LevelDB database. Writes go
// through OpenTransaction, which goleveldb serializes against every other
// write; reads use snapshots.
type LevelDBBackend struct {
	db        *leveldb.DB
	logger    logger.Logger
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewLevelDBBackend opens (or creates) the database under baseDir.
func NewLevelDBBackend(baseDir string, logger logger.Logger) (*LevelDBBackend, error) {
	logger.Info("leveldb: checking base directory baseDir %s", baseDir)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	if err := checkDirWritable(baseDir); err != nil {
		return nil, fmt.Errorf("directory not writable: %w", err)
	}

	dbPath := filepath.Join(baseDir, leveldbDataDir)
	db, err := openLevelDB(dbPath)
	if err != nil && lerrors.IsCorrupted(err) {
		logger.Warn("leveldb: database corrupted, attempting recovery. path %s err:%v", dbPath, err)
		db, err = leveldb.RecoverFile(dbPath, levelDBOptions())
	}
	if err != nil {
		return nil, err
	}

	logger.Info("leveldb: initialized successfully path %s", dbPath)
	return &LevelDBBackend{db: db, logger: logger}, nil
}

// NewMemLevelDB returns a LevelDB backend over in-memory storage.
func NewMemLevelDB(logger logger.Logger) (*LevelDBBackend, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}
	return &LevelDBBackend{db: db, logger: logger}, nil
}

func levelDBOptions() *opt.Options {
	return &opt.Options{
		WriteBuffer:        4 * 1024 * 1024,
		BlockCacheCapacity: 8 * 1024 * 1024,
	}
}

func openLevelDB(dbPath string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(dbPath, levelDBOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return db, nil
}

func (s *LevelDBBackend) View(ctx context.Context, fn func(r Reader) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrBackendClosed
	}

	snap, err := s.db.GetSnapshot()
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	defer snap.Release()
	return fn(&leveldbReader{src: snap})
}

func (s *LevelDBBackend) Update(ctx context.Context, fn func(tx Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrBackendClosed
	}

	tr, err := s.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}
	if err := fn(&leveldbTxn{leveldbReader: leveldbReader{src: tr}, tr: tr}); err != nil {
		tr.Discard()
		return err
	}
	if err := tr.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *LevelDBBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.logger.Info("leveldb_close: closing database")
		err = s.db.Close()
	})
	return err
}

// leveldbSource is satisfied by both *leveldb.Snapshot and *leveldb.Transaction.
type leveldbSource interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

type leveldbReader struct {
	src leveldbSource
}

func (r *leveldbReader) Get(key []byte) ([]byte, error) {
	data, err := r.src.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return data, nil
}

func (r *leveldbReader) Has(key []byte) (bool, error) {
	return r.src.Has(key, nil)
}

func (r *leveldbReader) Scan(prefix, after []byte, limit int) ([]KV, error) {
	rng := util.BytesPrefix(prefix)
	if after != nil {
		// smallest key strictly greater than after
		rng.Start = append(cloneBytes(after), 0x00)
	}
	iter := r.src.NewIterator(rng, nil)
	defer iter.Release()

	var out []KV
	for iter.Next() {
		out = append(out, KV{Key: cloneBytes(iter.Key()), Value: cloneBytes(iter.Value())})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	return out, nil
}

type leveldbTxn struct {
	leveldbReader
	tr *leveldb.Transaction
}

func (t *leveldbTxn) Put(key, value []byte) error {
	return t.tr.Put(key, value, nil)
}

func (t *leveldbTxn) Delete(key []byte) error {
	err := t.tr.Delete(key, nil)
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
