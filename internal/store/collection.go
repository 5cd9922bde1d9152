package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"leverage/internal/errs"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Entity is a record addressable by a string id.
type Entity interface {
	GetID() string
}

// Options tunes a collection. Zero values fall back to defaults.
type Options struct {
	PageSize    int
	MaxPageSize int
	// Now is the clock used for lease expiry.
	Now func() time.Time
}

// Page is one page of a List call. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// envelope is the stored form of a record. Seq points at its order key.
type envelope struct {
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

type lease struct {
	Owner     string `json:"owner"`
	ExpiresAt int64  `json:"expiresAt"` // epoch millis
}

// Collection is a typed view over one named collection of a Backend. Every
// operation seeds the collection first, so callers never observe it unseeded.
type Collection[T Entity] struct {
	name    string
	keys    keyspace
	backend Backend
	seed    func() []T
	opts    Options
	logger  logger.Logger

	seedGroup singleflight.Group
	seeded    atomic.Bool
}

// NewCollection binds a collection name and record type to backend. seed may
// be nil for collections without built-in records.
func NewCollection[T Entity](backend Backend, name string, seed func() []T, opts Options, logger logger.Logger) *Collection[T] {
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = MaxPageSize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize > opts.MaxPageSize {
		opts.PageSize = opts.MaxPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Collection[T]{
		name:    name,
		keys:    newKeyspace(name),
		backend: backend,
		seed:    seed,
		opts:    opts,
		logger:  logger,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// EnsureSeed writes the seed records exactly once per backend. The seeded
// marker is checked and written inside the same exclusive transaction as the
// records, so concurrent callers (in this process or another one sharing the
// backend) never insert duplicates. Deleting seed records later does not
// bring them back.
func (c *Collection[T]) EnsureSeed(ctx context.Context) error {
	if c.seeded.Load() {
		return nil
	}
	_, err, _ := c.seedGroup.Do("seed", func() (any, error) {
		if c.seeded.Load() {
			return nil, nil
		}
		inserted := 0
		err := c.backend.Update(ctx, func(tx Txn) error {
			done, err := tx.Has(c.keys.seeded())
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if c.seed != nil {
				for _, rec := range c.seed() {
					exists, err := tx.Has(c.keys.record(rec.GetID()))
					if err != nil {
						return err
					}
					if exists {
						continue
					}
					if err := c.insert(tx, rec); err != nil {
						return err
					}
					inserted++
				}
			}
			return tx.Put(c.keys.seeded(), []byte("1"))
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", c.name, err)
		}
		if inserted > 0 {
			c.logger.Info("store: seeded collection %s with %d records", c.name, inserted)
		}
		c.seeded.Store(true)
		return nil, nil
	})
	return err
}

// Create inserts rec. It fails with ErrConflict when the id is taken.
func (c *Collection[T]) Create(ctx context.Context, rec T) error {
	id := rec.GetID()
	if id == "" {
		return errs.NewMissingParamError("id")
	}
	if err := c.EnsureSeed(ctx); err != nil {
		return err
	}
	return c.backend.Update(ctx, func(tx Txn) error {
		exists, err := tx.Has(c.keys.record(id))
		if err != nil {
			return err
		}
		if exists {
			return errs.NewConflictErr(c.name, id)
		}
		return c.insert(tx, rec)
	})
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	if err := c.EnsureSeed(ctx); err != nil {
		return rec, err
	}
	err := c.backend.View(ctx, func(r Reader) error {
		env, err := c.readEnvelope(r, id)
		if err != nil {
			return err
		}
		return json.Unmarshal(env.Data, &rec)
	})
	return rec, err
}

func (c *Collection[T]) Exists(ctx context.Context, id string) (bool, error) {
	if err := c.EnsureSeed(ctx); err != nil {
		return false, err
	}
	var exists bool
	err := c.backend.View(ctx, func(r Reader) error {
		var err error
		exists, err = r.Has(c.keys.record(id))
		return err
	})
	return exists, err
}

// Patch merges fields into the top level of the stored record and returns
// the result. Fields not named are kept as they are; a nil value removes the
// field; "id" is never changed. Fails with ErrNotFound when id is absent.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var out T
	if err := c.EnsureSeed(ctx); err != nil {
		return out, err
	}
	err := c.backend.Update(ctx, func(tx Txn) error {
		env, err := c.readEnvelope(tx, id)
		if err != nil {
			return err
		}
		doc := map[string]json.RawMessage{}
		if err := json.Unmarshal(env.Data, &doc); err != nil {
			return fmt.Errorf("failed to decode %s %s: %w", c.name, id, err)
		}
		for k, v := range fields {
			if k == "id" {
				continue
			}
			if v == nil {
				delete(doc, k)
				continue
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return errs.NewInvalidParamErr(k, v)
			}
			doc[k] = raw
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("%w: patch does not fit %s: %v", errs.ErrInvalidInput, c.name, err)
		}
		env.Data = data
		return c.writeEnvelope(tx, id, env)
	})
	return out, err
}

// Update runs fn on the decoded record and stores the result, all inside one
// write transaction. fn must not change the id.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(rec *T) error) (T, error) {
	var rec T
	if err := c.EnsureSeed(ctx); err != nil {
		return rec, err
	}
	err := c.backend.Update(ctx, func(tx Txn) error {
		env, err := c.readEnvelope(tx, id)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return fmt.Errorf("failed to decode %s %s: %w", c.name, id, err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
		if rec.GetID() != id {
			return errs.NewInvalidParamErr("id", rec.GetID())
		}
		if env.Data, err = json.Marshal(rec); err != nil {
			return err
		}
		return c.writeEnvelope(tx, id, env)
	})
	return rec, err
}

// List returns up to limit records in insertion order, starting after cursor.
// limit <= 0 selects the default page size; larger values are capped at the
// maximum page size. A malformed cursor yields ErrInvalidInput.
func (c *Collection[T]) List(ctx context.Context, cursor string, limit int) (Page[T], error) {
	page := Page[T]{Items: []T{}}
	if err := c.EnsureSeed(ctx); err != nil {
		return page, err
	}
	after, err := c.keys.decodeCursor(cursor)
	if err != nil {
		return page, err
	}
	limit = c.clampLimit(limit)

	err = c.backend.View(ctx, func(r Reader) error {
		rows, err := r.Scan(c.keys.orderPrefix(), after, limit+1)
		if err != nil {
			return err
		}
		hasMore := len(rows) > limit
		if hasMore {
			rows = rows[:limit]
		}
		for _, row := range rows {
			rec, ok, err := c.readRecord(r, string(row.Value))
			if err != nil {
				return err
			}
			if ok {
				page.Items = append(page.Items, rec)
			}
		}
		if hasMore {
			page.NextCursor = encodeCursor(rows[len(rows)-1].Key)
		}
		return nil
	})
	return page, err
}

// All returns every record in insertion order.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	if err := c.EnsureSeed(ctx); err != nil {
		return nil, err
	}
	out := []T{}
	err := c.backend.View(ctx, func(r Reader) error {
		rows, err := r.Scan(c.keys.orderPrefix(), nil, 0)
		if err != nil {
			return err
		}
		for _, row := range rows {
			rec, ok, err := c.readRecord(r, string(row.Value))
			if err != nil {
				return err
			}
			if ok {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

// Delete removes id and reports whether it existed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := c.EnsureSeed(ctx); err != nil {
		return false, err
	}
	var deleted bool
	err := c.backend.Update(ctx, func(tx Txn) error {
		var err error
		deleted, err = c.remove(tx, id)
		return err
	})
	return deleted, err
}

// DeleteMany removes every listed id in one transaction and returns how many
// existed. Unknown and repeated ids are ignored.
func (c *Collection[T]) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if err := c.EnsureSeed(ctx); err != nil {
		return 0, err
	}
	count := 0
	err := c.backend.Update(ctx, func(tx Txn) error {
		count = 0
		for _, id := range utils.UniqueStringSlice(ids) {
			deleted, err := c.remove(tx, id)
			if err != nil {
				return err
			}
			if deleted {
				count++
			}
		}
		return nil
	})
	return count, err
}

// AcquireLease marks id as owned by owner until ttl elapses. It fails with
// ErrConflict while another owner holds an unexpired lease and with
// ErrNotFound when the record does not exist.
func (c *Collection[T]) AcquireLease(ctx context.Context, id, owner string, ttl time.Duration) error {
	if err := c.EnsureSeed(ctx); err != nil {
		return err
	}
	now := c.opts.Now()
	return c.backend.Update(ctx, func(tx Txn) error {
		exists, err := tx.Has(c.keys.record(id))
		if err != nil {
			return err
		}
		if !exists {
			return errs.NewRecordNotFoundErr(c.name, id)
		}
		held, err := c.readLease(tx, id)
		if err != nil {
			return err
		}
		if held != nil && held.Owner != owner && held.ExpiresAt > now.UnixMilli() {
			return fmt.Errorf("%w: %s %s is locked by another run", errs.ErrConflict, c.name, id)
		}
		data, err := json.Marshal(lease{Owner: owner, ExpiresAt: now.Add(ttl).UnixMilli()})
		if err != nil {
			return err
		}
		return tx.Put(c.keys.lease(id), data)
	})
}

// ReleaseLease drops the lease on id if owner still holds it.
func (c *Collection[T]) ReleaseLease(ctx context.Context, id, owner string) error {
	return c.backend.Update(ctx, func(tx Txn) error {
		held, err := c.readLease(tx, id)
		if err != nil || held == nil || held.Owner != owner {
			return err
		}
		return tx.Delete(c.keys.lease(id))
	})
}

// LeaseActive reports whether an unexpired lease exists on id.
func (c *Collection[T]) LeaseActive(ctx context.Context, id string) (bool, error) {
	var active bool
	err := c.backend.View(ctx, func(r Reader) error {
		held, err := c.readLease(r, id)
		if err != nil {
			return err
		}
		active = held != nil && held.ExpiresAt > c.opts.Now().UnixMilli()
		return nil
	})
	return active, err
}

func (c *Collection[T]) clampLimit(limit int) int {
	if limit <= 0 {
		return c.opts.PageSize
	}
	if limit > c.opts.MaxPageSize {
		return c.opts.MaxPageSize
	}
	return limit
}

func (c *Collection[T]) insert(tx Txn, rec T) error {
	seq, err := c.keys.nextSeq(tx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.name, rec.GetID(), err)
	}
	if err := c.writeEnvelope(tx, rec.GetID(), envelope{Seq: seq, Data: data}); err != nil {
		return err
	}
	return tx.Put(c.keys.order(seq), []byte(rec.GetID()))
}

func (c *Collection[T]) remove(tx Txn, id string) (bool, error) {
	env, err := c.readEnvelope(tx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := tx.Delete(c.keys.record(id)); err != nil {
		return false, err
	}
	if err := tx.Delete(c.keys.order(env.Seq)); err != nil {
		return false, err
	}
	if err := tx.Delete(c.keys.lease(id)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Collection[T]) readEnvelope(r Reader, id string) (envelope, error) {
	var env envelope
	raw, err := r.Get(c.keys.record(id))
	if errors.Is(err, ErrKeyNotFound) {
		return env, errs.NewRecordNotFoundErr(c.name, id)
	}
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("failed to decode %s %s: %w", c.name, id, err)
	}
	return env, nil
}

func (c *Collection[T]) writeEnvelope(tx Txn, id string, env envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return tx.Put(c.keys.record(id), raw)
}

func (c *Collection[T]) readRecord(r Reader, id string) (T, bool, error) {
	var rec T
	env, err := c.readEnvelope(r, id)
	if errors.Is(err, errs.ErrNotFound) {
		c.logger.Warn("store: order index of %s points at missing record %s", c.name, id)
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		return rec, false, fmt.Errorf("failed to decode %s %s: %w", c.name, id, err)
	}
	return rec, true, nil
}

func (c *Collection[T]) readLease(r Reader, id string) (*lease, error) {
	raw, err := r.Get(c.keys.lease(id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var l lease
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("failed to decode lease on %s %s: %w", c.name, id, err)
	}
	return &l, nil
}
