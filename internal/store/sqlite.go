package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite3驱动

	"leverage/internal/config"
	"leverage/pkg/logger"
)

// Migration 迁移结构体
type Migration struct {
	Version     string
	Description string
	SQL         string
}

var sqliteMigrations = []Migration{
	{
		Version:     "0001",
		Description: "create kv table",
		SQL: `CREATE TABLE IF NOT EXISTS kv (
			key   BLOB PRIMARY KEY,
			value BLOB NOT NULL
		) WITHOUT ROWID;`,
	},
}

// SQLiteBackend implements Backend on a single kv table. Write transactions
// are opened with BEGIN IMMEDIATE so they serialize across connections and
// across processes sharing the file.
type SQLiteBackend struct {
	db     *sql.DB
	config *config.DatabaseConfig
	logger logger.Logger
	mutex  sync.RWMutex
}

// NewSQLiteBackend opens the database file and applies pending migrations.
func NewSQLiteBackend(cfg *config.DatabaseConfig, logger logger.Logger) (*SQLiteBackend, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, cfg.DatabaseName)
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d", dbPath, cfg.BusyTimeout.Milliseconds())
	if cfg.EnableWAL {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// 配置连接池
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteBackend{db: db, config: cfg, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite: initialized successfully path %s", dbPath)
	return s, nil
}

func (s *SQLiteBackend) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version VARCHAR(255) PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range sqliteMigrations {
		var applied int
		if err := s.db.QueryRow("SELECT COUNT(1) FROM migrations WHERE version = ?", m.Version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to query migration %s: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, description) VALUES (?, ?)", m.Version, m.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}
		s.logger.Info("sqlite: applied migration %s (%s)", m.Version, m.Description)
	}
	return nil
}

func (s *SQLiteBackend) View(ctx context.Context, fn func(r Reader) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.db == nil {
		return ErrBackendClosed
	}
	return fn(&sqliteReader{ctx: ctx, q: s.db})
}

func (s *SQLiteBackend) Update(ctx context.Context, fn func(tx Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.db == nil {
		return ErrBackendClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&sqliteTxn{sqliteReader: sqliteReader{ctx: ctx, q: tx}}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// sqlQueryer is satisfied by *sql.DB and *sql.Tx.
type sqlQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteReader struct {
	ctx context.Context
	q   sqlQueryer
}

func (r *sqliteReader) Get(key []byte) ([]byte, error) {
	var value []byte
	err := r.q.QueryRowContext(r.ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

func (r *sqliteReader) Has(key []byte) (bool, error) {
	var n int
	if err := r.q.QueryRowContext(r.ctx, "SELECT COUNT(1) FROM kv WHERE key = ?", key).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *sqliteReader) Scan(prefix, after []byte, limit int) ([]KV, error) {
	query := "SELECT key, value FROM kv WHERE key >= ?"
	args := []any{prefix}
	if after != nil {
		query = "SELECT key, value FROM kv WHERE key > ?"
		args = []any{after}
	}
	if end := prefixEnd(prefix); end != nil {
		query += " AND key < ?"
		args = append(args, end)
	}
	query += " ORDER BY key"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(r.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []KV
	for rows.Next() {
		var kv KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		out = append(out, kv)
	}
	return out, rows.Err()
}

type sqliteTxn struct {
	sqliteReader
}

func (t *sqliteTxn) Put(key, value []byte) error {
	_, err := t.q.ExecContext(t.ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}
	return nil
}

func (t *sqliteTxn) Delete(key []byte) error {
	if _, err := t.q.ExecContext(t.ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
