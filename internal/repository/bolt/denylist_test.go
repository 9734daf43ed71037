package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestDenylist(t *testing.T) *Denylist {
	t.Helper()
	d, err := OpenDenylist(filepath.Join(t.TempDir(), "denylist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDenylistRevoke(t *testing.T) {
	d := openTestDenylist(t)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Error(t, d.Revoke(ctx, "", time.Now()))
}

func TestDenylistPurgesExpiredEntries(t *testing.T) {
	d := openTestDenylist(t)
	ctx := context.Background()
	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "old", now.Add(time.Minute)))

	now = now.Add(2 * time.Minute)
	require.NoError(t, d.Revoke(ctx, "new", now.Add(time.Minute)))

	revoked, err := d.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = d.IsRevoked(ctx, "new")
	require.NoError(t, err)
	assert.True(t, revoked)

	var entries int
	require.NoError(t, d.db.View(func(tx *bolt.Tx) error {
		entries = tx.Bucket(revokedBucket).Stats().KeyN
		return nil
	}))
	assert.Equal(t, 1, entries)
}

func TestDenylistPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denylist.db")
	ctx := context.Background()

	d, err := OpenDenylist(path)
	require.NoError(t, err)
	require.NoError(t, d.Revoke(ctx, "jti", time.Now().Add(time.Hour)))
	require.NoError(t, d.Close())

	d, err = OpenDenylist(path)
	require.NoError(t, err)
	defer d.Close()

	revoked, err := d.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)
}
