package store

import (
	"errors"
	"fmt"
	"strconv"
)

// Key layout, per collection:
//
//	c/<coll>/r/<id>        record envelope
//	c/<coll>/o/<seq%020d>  insertion-order index -> id
//	c/<coll>/l/<id>        analysis lease
//	c/<coll>/m/seeded      seed marker
//	c/<coll>/m/seq         last issued sequence number
type keyspace struct {
	base string
}

func newKeyspace(collection string) keyspace {
	return keyspace{base: "c/" + collection + "/"}
}

func (k keyspace) record(id string) []byte { return []byte(k.base + "r/" + id) }

func (k keyspace) orderPrefix() []byte { return []byte(k.base + "o/") }

func (k keyspace) order(seq uint64) []byte {
	return []byte(fmt.Sprintf("%so/%020d", k.base, seq))
}

func (k keyspace) lease(id string) []byte { return []byte(k.base + "l/" + id) }

func (k keyspace) seeded() []byte { return []byte(k.base + "m/seeded") }

func (k keyspace) seq() []byte { return []byte(k.base + "m/seq") }

// nextSeq increments and persists the collection sequence inside tx.
func (k keyspace) nextSeq(tx Txn) (uint64, error) {
	var cur uint64
	raw, err := tx.Get(k.seq())
	switch {
	case err == nil:
		cur, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt sequence counter: %w", err)
		}
	case errors.Is(err, ErrKeyNotFound):
	default:
		return 0, err
	}
	cur++
	if err := tx.Put(k.seq(), []byte(strconv.FormatUint(cur, 10))); err != nil {
		return 0, err
	}
	return cur, nil
}
