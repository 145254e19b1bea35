// Package littledb provides an easy to use key-value document store backed
// by SQLite, with pluggable serialization formats.
package littledb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/liliang-cn/littledb/pkg/codec"
	"github.com/liliang-cn/littledb/pkg/kv"
)

// DefaultFormat is the serialization format used when none is specified
const DefaultFormat = codec.FormatJSON

// Config represents database configuration
type Config struct {
	Path     string          // Database file path, or ":memory:"
	Registry *codec.Registry // Format registry (default: codec.Default())
	Logger   kv.Logger       // Lifecycle logger (default: no-op)
}

// DefaultConfig returns default configuration
func DefaultConfig(path string) Config {
	return Config{Path: path}
}

// DB represents a littledb database instance
type DB struct {
	store *kv.Store
}

// Open opens or creates a key-value database
func Open(config Config) (*DB, error) {
	store, err := kv.Open(kv.Config{
		Path:     config.Path,
		Registry: config.Registry,
		Logger:   config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &DB{store: store}, nil
}

// Store returns the core key-value store
func (db *DB) Store() *kv.Store {
	return db.store
}

// NewSession creates a connection owner for the calling worker
func (db *DB) NewSession() *kv.Session {
	return db.store.NewSession()
}

// Collection returns the named collection bound to the given format,
// creating its backing table if needed
func (db *DB) Collection(ctx context.Context, sess *kv.Session, name, format string) (*kv.Collection, error) {
	return db.store.Collection(ctx, sess, name, format)
}

// Close closes the database and every remaining session
func (db *DB) Close() error {
	return db.store.Close()
}

// Quick is a simplified interface for common operations on one session
type Quick struct {
	db   *DB
	sess *kv.Session
}

// Quick creates a simple interface bound to the given session
func (db *DB) Quick(sess *kv.Session) *Quick {
	return &Quick{db: db, sess: sess}
}

// Add stores a document in the "documents" collection under a generated key
// and returns the key
func (q *Quick) Add(ctx context.Context, value any) (string, error) {
	return q.AddTo(ctx, "documents", DefaultFormat, value)
}

// AddTo stores a document in a specific collection under a generated key
// and returns the key
func (q *Quick) AddTo(ctx context.Context, collection, format string, value any) (string, error) {
	coll, err := q.db.Collection(ctx, q.sess, collection, format)
	if err != nil {
		return "", err
	}

	key := generateKey()
	if err := coll.Set(ctx, q.sess, key, value); err != nil {
		return "", err
	}
	return key, nil
}

// Get returns a document from the "documents" collection
func (q *Quick) Get(ctx context.Context, key string) (any, error) {
	coll, err := q.db.Collection(ctx, q.sess, "documents", DefaultFormat)
	if err != nil {
		return nil, err
	}
	return coll.Get(ctx, q.sess, key)
}

// generateKey generates a unique document key using UUID
func generateKey() string {
	return uuid.New().String()
}
