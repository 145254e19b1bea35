package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/liliang-cn/littledb/pkg/codec"
)

// Collection is a named key-value namespace backed by one table and bound
// permanently to one codec. It is a thin view over the store: all operations
// borrow the calling worker's Session and hold no connection beyond a single
// call.
type Collection struct {
	store  *Store
	name   string
	format string
	codec  codec.Codec

	insertSQL string
	selectSQL string
	keysSQL   string
}

func newCollection(store *Store, name, format string, cd codec.Codec) *Collection {
	return &Collection{
		store:     store,
		name:      name,
		format:    format,
		codec:     cd,
		insertSQL: fmt.Sprintf(sqlInsertDocument, name),
		selectSQL: fmt.Sprintf(sqlSelectDocument, name),
		keysSQL:   fmt.Sprintf(sqlSelectKeys, name),
	}
}

// Name returns the collection's table name
func (c *Collection) Name() string {
	return c.name
}

// Format returns the collection's codec format name
func (c *Collection) Format() string {
	return c.format
}

// Get returns the value stored under key. A missing key yields
// ErrKeyNotFound. Blob content is decoded through the bound codec; raw
// scalars come back unchanged (strings, int64, float64, nil).
func (c *Collection) Get(ctx context.Context, s *Session, key string) (any, error) {
	q, err := s.querier(ctx)
	if err != nil {
		return nil, wrapError("get", err)
	}

	var content any
	err = q.QueryRowContext(ctx, c.selectSQL, key).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrapError("get", fmt.Errorf("%w: %q", ErrKeyNotFound, key))
	}
	if err != nil {
		return nil, wrapError("get", err)
	}

	if blob, ok := content.([]byte); ok {
		v, err := c.codec.Decode(blob)
		if err != nil {
			return nil, wrapError("get", err)
		}
		return v, nil
	}
	return content, nil
}

// Set upserts value under key. Mappings, sequences and tagged objects are
// encoded through the bound codec; scalars are stored raw. Inside an open
// transaction the write participates without an implicit commit; otherwise
// it commits atomically on its own.
func (c *Collection) Set(ctx context.Context, s *Session, key string, value any) error {
	q, err := s.querier(ctx)
	if err != nil {
		return wrapError("set", err)
	}

	arg := value
	if codec.Classify(value) != codec.KindScalar {
		blob, err := c.codec.Encode(value)
		if err != nil {
			return wrapError("set", err)
		}
		arg = blob
	}

	if _, err := q.ExecContext(ctx, c.insertSQL, key, arg); err != nil {
		return wrapError("set", err)
	}
	return nil
}

// Keys returns the collection's keys in storage order. The sequence is
// lazy and restartable: every range issues a fresh scan, reflecting the key
// set at that moment, and releases the scan when the consumer stops early.
func (c *Collection) Keys(ctx context.Context, s *Session) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		q, err := s.querier(ctx)
		if err != nil {
			yield("", wrapError("keys", err))
			return
		}

		rows, err := q.QueryContext(ctx, c.keysSQL)
		if err != nil {
			yield("", wrapError("keys", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				yield("", wrapError("keys", err))
				return
			}
			if !yield(key, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", wrapError("keys", err))
		}
	}
}

// KeySlice collects Keys into a slice
func (c *Collection) KeySlice(ctx context.Context, s *Session) ([]string, error) {
	var keys []string
	for key, err := range c.Keys(ctx, s) {
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Begin opens an explicit transaction on the session, bracketing subsequent
// writes until Commit
func (c *Collection) Begin(ctx context.Context, s *Session) error {
	return s.Begin(ctx)
}

// Commit commits the session's pending transaction
func (c *Collection) Commit(ctx context.Context, s *Session) error {
	return s.Commit(ctx)
}
