package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"greetbot-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Participant{}))
	return NewGormStore(db)
}

func TestGetUnknownParticipant(t *testing.T) {
	store := newTestStore(t)

	p, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestCreateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, "chat-1", p.ID)
	require.Empty(t, p.Claimed)

	// Store a claim, then create again: the existing row wins.
	claimDate := time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CompareAndUpdate(ctx, p, models.ClaimedSet{0}, &claimDate))

	p2, err := store.Create(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, models.ClaimedSet{0}, p2.Claimed)
	require.NotNil(t, p2.LastClaimDate)
}

func TestCompareAndUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "chat-2")
	require.NoError(t, err)
	require.Equal(t, 0, p.Version)

	claimDate := time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CompareAndUpdate(ctx, p, models.ClaimedSet{2}, &claimDate))

	updated, err := store.Get(ctx, "chat-2")
	require.NoError(t, err)
	require.Equal(t, models.ClaimedSet{2}, updated.Claimed)
	require.Equal(t, 1, updated.Version)
}

func TestCompareAndUpdateConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "chat-3")
	require.NoError(t, err)

	stale := *p
	claimDate := time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CompareAndUpdate(ctx, p, models.ClaimedSet{0}, &claimDate))

	// A writer still holding the old version must lose.
	err = store.CompareAndUpdate(ctx, &stale, models.ClaimedSet{1}, &claimDate)
	require.ErrorIs(t, err, ErrConflict)

	final, err := store.Get(ctx, "chat-3")
	require.NoError(t, err)
	require.Equal(t, models.ClaimedSet{0}, final.Claimed)
}

func TestListIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Create(ctx, id)
		require.NoError(t, err)
	}

	ids, err = store.ListIDs(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, ids)
}
