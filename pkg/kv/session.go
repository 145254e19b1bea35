package kv

import (
	"context"
	"database/sql"
)

// querier is the subset of database/sql shared by *sql.Conn and *sql.Tx.
// Collection operations run against the session's open transaction when one
// is pending, and against the bare connection (autocommit) otherwise.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session owns one physical connection on behalf of one worker. It replaces
// the hidden thread-local connection cache of similar stores with an
// explicit object: every store operation takes the session it runs on.
//
// The connection is opened on first use and revalidated with a liveness
// probe before each reuse; a dead connection is closed and transparently
// replaced. A Session must not be shared between goroutines.
type Session struct {
	store *Store
	conn  *sql.Conn
	tx    *sql.Tx
}

// acquire returns the session's live connection, opening or replacing it as
// needed
func (s *Session) acquire(ctx context.Context) (*sql.Conn, error) {
	if s.conn != nil {
		if err := s.conn.PingContext(ctx); err == nil {
			return s.conn, nil
		}
		// Probe failed: the connection was closed or invalidated underneath
		// us. Replace it; any pending transaction died with it.
		_ = s.conn.Close()
		s.conn = nil
		s.tx = nil
		s.store.logger.Debug("connection replaced", "path", s.store.config.Path)
	}

	conn, err := s.store.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// querier returns the execution target for the next statement: the pending
// transaction if one is open, else the live connection
func (s *Session) querier(ctx context.Context) (querier, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	return s.acquire(ctx)
}

// InTx reports whether an explicit transaction is pending
func (s *Session) InTx() bool {
	return s.tx != nil
}

// Begin opens an explicit transaction on the session's connection.
// Transactions do not nest: Begin while one is pending returns ErrTxOpen.
func (s *Session) Begin(ctx context.Context) error {
	if s.tx != nil {
		return wrapError("begin", ErrTxOpen)
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return wrapError("begin", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return wrapError("begin", err)
	}
	s.tx = tx
	return nil
}

// Commit commits the pending transaction
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return wrapError("commit", ErrNoTx)
	}

	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return wrapError("commit", err)
	}
	return nil
}

// Rollback discards the pending transaction
func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return wrapError("rollback", ErrNoTx)
	}

	err := s.tx.Rollback()
	s.tx = nil
	if err != nil {
		return wrapError("rollback", err)
	}
	return nil
}

// Close releases this session's connection only; other sessions keep
// theirs. A pending transaction is rolled back. Closing a session that
// never opened a connection is a no-op.
func (s *Session) Close() error {
	s.store.release(s)
	return s.closeConn()
}

// closeConn tears down the physical connection if one exists
func (s *Session) closeConn() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return wrapError("close", err)
	}
	return nil
}
