package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row Level Security plumbing. Every tenant-scoped query must run on a
// connection where app.current_user_id is set so the RLS policies defined in
// the migrations can restrict visible rows. The variable is session-scoped:
// it survives for the whole checkout of the connection, not one statement.

var (
	ErrEmptyUserID = errors.New("rls: user id must not be empty")
	ErrNilConn     = errors.New("rls: connection must not be nil")
)

// Querier is the query surface handed to WithUserContext callbacks.
// *pgxpool.Conn satisfies it; tests supply fakes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a pooled connection that must be released after use
type Conn interface {
	Querier
	Release()
}

// Acquirer hands out pooled connections
type Acquirer interface {
	Acquire(ctx context.Context) (Conn, error)
}

// SetUserContext binds the RLS principal to the given connection
func SetUserContext(ctx context.Context, conn Querier, userID string) error {
	if conn == nil {
		return ErrNilConn
	}
	if userID == "" {
		return ErrEmptyUserID
	}

	// is_local=false: the setting lives for the session, not the transaction,
	// so nested queries within the same checkout observe the same principal
	_, err := conn.Exec(ctx, `SELECT set_config('app.current_user_id', $1, false)`, userID)
	if err != nil {
		return fmt.Errorf("failed to set user context: %w", err)
	}
	return nil
}

// RLSPool wraps a pgx pool and scopes every callback to one user's RLS context
type RLSPool struct {
	acquirer Acquirer
}

func NewRLSPool(pool *pgxpool.Pool) *RLSPool {
	return &RLSPool{acquirer: poolAcquirer{pool: pool}}
}

// newRLSPoolWith exists so tests can substitute a fake pool
func newRLSPoolWith(acquirer Acquirer) *RLSPool {
	return &RLSPool{acquirer: acquirer}
}

// WithUserContext acquires one connection, sets the RLS principal, runs fn
// with a query handle bound to that connection, and always releases the
// connection afterward. Query failures inside fn propagate to the caller
// untouched; no retry happens at this layer.
func (p *RLSPool) WithUserContext(ctx context.Context, userID string, fn func(ctx context.Context, q Querier) error) (err error) {
	if userID == "" {
		return ErrEmptyUserID
	}

	conn, err := p.acquirer.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in rls callback: %v", r)
		}
		// Clear the principal before the connection goes back to the pool so
		// a later checkout cannot inherit it. Best effort: the pool resets
		// session state on recycling anyway.
		resetCtx := context.WithoutCancel(ctx)
		_, _ = conn.Exec(resetCtx, `SELECT set_config('app.current_user_id', '', false)`)
		conn.Release()
	}()

	if err := SetUserContext(ctx, conn, userID); err != nil {
		return err
	}

	return fn(ctx, conn)
}

// poolAcquirer adapts *pgxpool.Pool to the Acquirer seam
type poolAcquirer struct {
	pool *pgxpool.Pool
}

func (a poolAcquirer) Acquire(ctx context.Context) (Conn, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
