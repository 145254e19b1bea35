// Package kv implements an embedded key-value store for structured documents,
// layered over SQLite. Each Collection is one two-column table (key TEXT
// PRIMARY KEY, content BLOB) bound to one serialization codec; each worker
// owns a Session holding its physical connection.
package kv

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/liliang-cn/littledb/pkg/codec"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQL templates bound per collection. The table has no implicit rowid: the
// key is the sole primary key.
const (
	sqlCreateTable = `CREATE TABLE IF NOT EXISTS %q (
	key TEXT PRIMARY KEY,
	content BLOB
) WITHOUT ROWID`
	sqlInsertDocument = `INSERT OR REPLACE INTO %q (key, content) VALUES (?, ?)`
	sqlSelectDocument = `SELECT content FROM %q WHERE key = ?`
	sqlSelectKeys     = `SELECT key FROM %q`
)

// Config represents store configuration
type Config struct {
	// Path is the backing database file, or ":memory:" for an ephemeral
	// store. A memory database is private to each physical connection, so
	// ephemeral stores must confine themselves to a single Session.
	Path string

	// Registry resolves format names to codecs. Nil means codec.Default().
	Registry *codec.Registry

	// Logger receives connection-lifecycle and DDL events. Nil means no-op.
	Logger Logger
}

// DefaultConfig returns default configuration for the given database path
func DefaultConfig(path string) Config {
	return Config{Path: path}
}

// Store is the top-level handle: it owns the SQLite pool, the codec cache
// and the set of live sessions. Collections are thin views created through
// Collection; they hold no resources of their own.
type Store struct {
	db       *sql.DB
	config   Config
	registry *codec.Registry
	logger   Logger

	mu       sync.Mutex
	codecs   map[string]codec.Codec
	sessions map[*Session]struct{}
	closed   bool
}

// Open opens or creates a store backed by the configured database file
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, wrapError("open", fmt.Errorf("database path cannot be empty"))
	}

	registry := config.Registry
	if registry == nil {
		registry = codec.Default()
	}
	logger := config.Logger
	if logger == nil {
		logger = NopLogger()
	}

	// busy_timeout waits for the engine's own lock resolution instead of
	// failing immediately; contention errors past that are propagated
	// unmodified, retrying is the caller's call.
	dsn := config.Path
	if config.Path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", config.Path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapError("open", fmt.Errorf("failed to open database: %w", err))
	}

	return &Store{
		db:       db,
		config:   config,
		registry: registry,
		logger:   logger,
		codecs:   make(map[string]codec.Codec),
		sessions: make(map[*Session]struct{}),
	}, nil
}

// Path returns the backing database path
func (s *Store) Path() string {
	return s.config.Path
}

// NewSession creates a connection owner for one worker. The physical
// connection is opened lazily on first use. Sessions are not safe for
// concurrent use; create one per goroutine.
func (s *Store) NewSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{store: s}
	if !s.closed {
		s.sessions[sess] = struct{}{}
	}
	return sess
}

// Collection resolves the codec for the given format, ensures the backing
// table exists (idempotent DDL on the session's connection) and returns a
// Collection bound to that table and codec.
//
// An unregistered format yields codec.ErrFormatNotFound and no table is
// created. All values written to one collection must use the same format;
// mixing codecs on one table corrupts reads.
func (s *Store) Collection(ctx context.Context, sess *Session, name, format string) (*Collection, error) {
	cd, err := s.codecFor(format)
	if err != nil {
		return nil, wrapError("collection", err)
	}

	conn, err := sess.acquire(ctx)
	if err != nil {
		return nil, wrapError("collection", err)
	}

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(sqlCreateTable, name)); err != nil {
		return nil, wrapError("collection", fmt.Errorf("failed to create table %q: %w", name, err))
	}
	s.logger.Debug("collection ready", "table", name, "format", format)

	return newCollection(s, name, format, cd), nil
}

// codecFor resolves and caches one codec instance per format for the
// lifetime of the store
func (s *Store) codecFor(format string) (codec.Codec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if cd, ok := s.codecs[format]; ok {
		return cd, nil
	}

	factory, err := s.registry.Resolve(format)
	if err != nil {
		return nil, err
	}

	cd := factory()
	s.codecs[format] = cd
	return cd, nil
}

// release drops a session from the live set
func (s *Store) release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess)
}

// Close closes every remaining session and the underlying pool. Workers
// that only want to release their own connection use Session.Close instead.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	open := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.sessions = make(map[*Session]struct{})
	s.mu.Unlock()

	for _, sess := range open {
		if err := sess.closeConn(); err != nil {
			s.logger.Warn("session close failed", "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		return wrapError("close", err)
	}
	return nil
}
