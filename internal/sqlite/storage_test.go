package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	db, err := sql.Open(DriverName, ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a brand new database
	db.SetMaxOpenConns(1)

	s, err := NewStorage(db)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage_Session(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	created := time.Date(2024, time.September, 11, 13, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	t.Run("unknown user", func(t *testing.T) {
		sess, err := s.Session(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("created session is pending", func(t *testing.T) {
		require.NoError(t, s.CreateSession(ctx, 1))

		sess, err := s.Session(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, int64(1), sess.UserID)
		assert.False(t, sess.Authorized())
		assert.True(t, created.Equal(sess.CreatedAt))
	})

	t.Run("credentials authorize the session", func(t *testing.T) {
		updated := created.Add(time.Minute)
		s.now = func() time.Time { return updated }

		require.NoError(t, s.UpdateCredentials(ctx, 1, `{"access_token":"tok"}`))

		sess, err := s.Session(ctx, 1)
		require.NoError(t, err)
		assert.True(t, sess.Authorized())
		assert.Equal(t, `{"access_token":"tok"}`, sess.Auth)
		assert.True(t, created.Equal(sess.CreatedAt))
		assert.True(t, updated.Equal(sess.UpdatedAt))
	})

	t.Run("creating again resets to pending", func(t *testing.T) {
		require.NoError(t, s.CreateSession(ctx, 1))

		sess, err := s.Session(ctx, 1)
		require.NoError(t, err)
		assert.False(t, sess.Authorized())
		assert.True(t, created.Equal(sess.CreatedAt))
	})

	t.Run("credentials for an unknown user", func(t *testing.T) {
		err := s.UpdateCredentials(ctx, 99, "tok")
		assert.Error(t, err)
	})
}

func TestStorage_MigrationsAreIdempotent(t *testing.T) {
	s := newTestStorage(t)

	assert.NoError(t, s.RunMigrations())
}
