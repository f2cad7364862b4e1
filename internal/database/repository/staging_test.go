package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/tenderstage/internal/database"
)

func openTestRepo(t *testing.T) *StagingRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStagingRepo(db)
}

func put(t *testing.T, r *StagingRepo, owner, channel string, expires time.Time) {
	t.Helper()
	require.NoError(t, r.Put(context.Background(), StagedEntry{
		OwnerID:   owner,
		Channel:   channel,
		BatchID:   "batch-" + channel,
		Payload:   []byte(`{"v":1}`),
		ExpiresAt: expires,
	}))
}

func TestPutAssignsTimestampsAndOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTestRepo(t)
	future := time.Now().UTC().Add(time.Hour)

	put(t, r, "o", "k", future)
	first, err := r.Get(ctx, "o", "k")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.False(t, first.CreatedAt.IsZero())
	require.False(t, first.UpdatedAt.IsZero())

	require.NoError(t, r.Put(ctx, StagedEntry{
		OwnerID:   "o",
		Channel:   "k",
		BatchID:   "batch-2",
		Payload:   []byte(`{"v":2}`),
		ExpiresAt: future.Add(time.Hour),
	}))
	second, err := r.Get(ctx, "o", "k")
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, "batch-2", second.BatchID)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestGetReportsAbsenceAsNil(t *testing.T) {
	t.Parallel()

	r := openTestRepo(t)
	e, err := r.Get(context.Background(), "o", "missing")
	require.NoError(t, err)
	require.Nil(t, e)
}

func TestDeleteExpiredGuardsOnCutoff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTestRepo(t)
	now := time.Now().UTC()

	// Entry already expired: the guarded delete removes it.
	put(t, r, "o", "stale", now.Add(-time.Minute))
	require.NoError(t, r.DeleteExpired(ctx, "o", "stale", now))
	e, err := r.Get(ctx, "o", "stale")
	require.NoError(t, err)
	require.Nil(t, e)

	// Entry refreshed past the cutoff: the same delete leaves it standing.
	put(t, r, "o", "fresh", now.Add(time.Hour))
	require.NoError(t, r.DeleteExpired(ctx, "o", "fresh", now))
	e, err = r.Get(ctx, "o", "fresh")
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestDeleteManyIsTransactional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTestRepo(t)
	future := time.Now().UTC().Add(time.Hour)

	for _, k := range []string{"a", "b", "c"} {
		put(t, r, "o", k, future)
	}
	require.NoError(t, r.DeleteMany(ctx, "o", []string{"a", "b", "missing"}))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM staged_entries WHERE owner_id = 'o'`).Scan(&count))
	require.Equal(t, 1, count)

	require.NoError(t, r.DeleteMany(ctx, "o", nil))
}

func TestDeleteAllCountsAndScopesByOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTestRepo(t)
	future := time.Now().UTC().Add(time.Hour)

	put(t, r, "o1", "a", future)
	put(t, r, "o1", "b", future)
	put(t, r, "o2", "a", future)

	n, err := r.DeleteAll(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	e, err := r.Get(ctx, "o2", "a")
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestSweepExpiredScopesByOwnerAndCutoff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := openTestRepo(t)
	now := time.Now().UTC()

	put(t, r, "o1", "stale", now.Add(-time.Minute))
	put(t, r, "o1", "live", now.Add(time.Hour))
	put(t, r, "o2", "stale", now.Add(-time.Minute))

	n, err := r.SweepExpired(ctx, "o1", now)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	e, err := r.Get(ctx, "o1", "live")
	require.NoError(t, err)
	require.NotNil(t, e)
	e, err = r.Get(ctx, "o2", "stale")
	require.NoError(t, err)
	require.NotNil(t, e, "sweep never crosses the owner partition")
}
