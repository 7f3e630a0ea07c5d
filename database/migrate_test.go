package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_create_users.sql",
		"migrations/00002_create_user_sessions.sql",
		"migrations/00003_create_access_verifications.sql",
		"migrations/00004_create_user_preferences.sql",
	}, names)
}

func TestMigrate(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	t.Run("success", func(t *testing.T) {
		var gotDir string
		gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
			gotDir = dir
			return nil
		}
		require.NoError(t, Migrate(context.Background(), nil))
		assert.Equal(t, "migrations", gotDir)
	})

	t.Run("failure", func(t *testing.T) {
		gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
		err := Migrate(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to apply migrations")
	})
}
