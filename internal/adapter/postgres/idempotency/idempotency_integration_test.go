//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgidempotency "github.com/alanyang/project-chat/internal/adapter/postgres/idempotency"
	"github.com/alanyang/project-chat/internal/testutil"
)

func TestIdempotencyRepo_FirstWriterWins(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "chat:" + uuid.NewString()

	_, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Store(ctx, key, uuid.New(), "chat", []byte(`{"message":"one"}`)))
	require.NoError(t, repo.Store(ctx, key, uuid.New(), "chat", []byte(`{"message":"two"}`)))

	got, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"message":"one"}`, string(got))
}

func TestIdempotencyRepo_Reservation(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "chat:" + uuid.NewString()
	user := uuid.New()

	ok, err := repo.Reserve(ctx, key, user, "chat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(ctx, key, user, "chat")
	require.NoError(t, err)
	assert.False(t, ok, "second reserve loses")

	_, found, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "pending row has no result")

	require.NoError(t, repo.Release(ctx, key))
	ok, err = repo.Reserve(ctx, key, user, "chat")
	require.NoError(t, err)
	require.True(t, ok, "released key can be reserved again")

	require.NoError(t, repo.Store(ctx, key, user, "chat", []byte(`{"message":"done"}`)))
	require.NoError(t, repo.Release(ctx, key))

	got, found, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, found, "release leaves completed rows alone")
	assert.JSONEq(t, `{"message":"done"}`, string(got))
}

func TestIdempotencyRepo_Purge(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "chat:" + uuid.NewString()
	require.NoError(t, repo.Store(ctx, key, uuid.New(), "chat", []byte(`{}`)))

	n, err := repo.Purge(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Purge(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
