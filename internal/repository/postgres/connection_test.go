package postgres

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/identity-server/internal/model"
)

func TestLockKey(t *testing.T) {
	t.Parallel()

	keys := map[string]string{"emailOrPhone": "+18005550100", "type": "sign-in"}

	a := LockKey("accessVerifications", keys)
	b := LockKey("accessVerifications", map[string]string{"type": "sign-in", "emailOrPhone": "+18005550100"})
	assert.Equal(t, a, b, "key order must not matter")
	assert.GreaterOrEqual(t, a, int64(0))
	assert.Less(t, a, int64(math.MaxInt64))

	assert.NotEqual(t, a, LockKey("accessVerifications", map[string]string{"emailOrPhone": "+18005550100", "type": "sign-up"}))
	assert.NotEqual(t, a, LockKey("userSessions", keys))
	assert.Equal(t, LockKey("t", nil), LockKey("t", map[string]string{}))
}

func TestStore_Lock(t *testing.T) {
	conn, mock := newMock(t)
	keys := map[string]string{"emailOrPhone": "jane@example.com", "type": "sign-up"}

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(LockKey("accessVerifications", keys)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, conn.Lock(context.Background(), "accessVerifications", keys))
}

func TestConnection_InTx(t *testing.T) {
	t.Run("commit on nil", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM access_verifications`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := conn.InTx(context.Background(), func(ctx context.Context, tx model.Store) error {
			return tx.Verifications().Delete(ctx, uuid.New())
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := conn.InTx(context.Background(), func(context.Context, model.Store) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = conn.InTx(context.Background(), func(context.Context, model.Store) error {
				panic("unexpected")
			})
		})
	})

	t.Run("begin fails", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("no connection"))

		err := conn.InTx(context.Background(), func(context.Context, model.Store) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})

	t.Run("commit fails", func(t *testing.T) {
		conn, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := conn.InTx(context.Background(), func(context.Context, model.Store) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})
}

func TestConnection_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	conn := NewConnectionFromDB(db)
	assert.NoError(t, conn.Ping(context.Background()))

	assert.Error(t, (&Connection{}).Ping(context.Background()))
}
