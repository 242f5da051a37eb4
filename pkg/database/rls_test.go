package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// fakeConn records every statement and whether it was released
type fakeConn struct {
	execs    []string
	execArgs [][]any
	execErr  error
	released bool
}

func (f *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeConn) Release() {
	f.released = true
}

type fakeAcquirer struct {
	conn       *fakeConn
	acquireErr error
	acquired   int
}

func (f *fakeAcquirer) Acquire(ctx context.Context) (Conn, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.acquired++
	return f.conn, nil
}

func TestSetUserContext(t *testing.T) {
	t.Run("sets the session variable with the principal", func(t *testing.T) {
		conn := &fakeConn{}
		err := SetUserContext(context.Background(), conn, "user-1")
		assert.NoError(t, err)
		assert.Len(t, conn.execs, 1)
		assert.Contains(t, conn.execs[0], "set_config('app.current_user_id'")
		assert.Equal(t, []any{"user-1"}, conn.execArgs[0])
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		conn := &fakeConn{}
		err := SetUserContext(context.Background(), conn, "")
		assert.ErrorIs(t, err, ErrEmptyUserID)
		assert.Empty(t, conn.execs)
	})

	t.Run("rejects nil connection", func(t *testing.T) {
		err := SetUserContext(context.Background(), nil, "user-1")
		assert.ErrorIs(t, err, ErrNilConn)
	})
}

func TestWithUserContext(t *testing.T) {
	t.Run("runs callback with context set and releases", func(t *testing.T) {
		conn := &fakeConn{}
		pool := newRLSPoolWith(&fakeAcquirer{conn: conn})

		called := false
		err := pool.WithUserContext(context.Background(), "user-1", func(ctx context.Context, q Querier) error {
			called = true
			assert.Same(t, Querier(conn), q)
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
		assert.True(t, conn.released)
		// set + reset
		assert.Len(t, conn.execs, 2)
	})

	t.Run("releases connection when callback errors", func(t *testing.T) {
		conn := &fakeConn{}
		pool := newRLSPoolWith(&fakeAcquirer{conn: conn})

		boom := errors.New("query failed")
		err := pool.WithUserContext(context.Background(), "user-1", func(ctx context.Context, q Querier) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.True(t, conn.released)
	})

	t.Run("releases connection when callback panics", func(t *testing.T) {
		conn := &fakeConn{}
		pool := newRLSPoolWith(&fakeAcquirer{conn: conn})

		err := pool.WithUserContext(context.Background(), "user-1", func(ctx context.Context, q Querier) error {
			panic("boom")
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "panic")
		assert.True(t, conn.released)
	})

	t.Run("empty user id never acquires", func(t *testing.T) {
		acq := &fakeAcquirer{conn: &fakeConn{}}
		pool := newRLSPoolWith(acq)

		err := pool.WithUserContext(context.Background(), "", func(ctx context.Context, q Querier) error {
			t.Fatal("callback must not run")
			return nil
		})

		assert.ErrorIs(t, err, ErrEmptyUserID)
		assert.Zero(t, acq.acquired)
	})

	t.Run("acquire failure propagates", func(t *testing.T) {
		pool := newRLSPoolWith(&fakeAcquirer{acquireErr: errors.New("pool exhausted")})

		err := pool.WithUserContext(context.Background(), "user-1", func(ctx context.Context, q Querier) error {
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to acquire connection")
	})
}
