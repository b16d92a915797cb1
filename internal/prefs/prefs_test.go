package prefs

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gminsights/roadmap-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(testutil.NewDB(t))
	user := uuid.New()

	_, found, err := s.ActiveProject(ctx, user)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetActiveProject(ctx, user, 2))
	require.NoError(t, s.SetActiveProject(ctx, user, 4))

	idx, found, err := s.ActiveProject(ctx, user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, idx)

	_, found, err = s.ActiveProject(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	user := uuid.New()

	require.NoError(t, s.Ping(ctx))

	_, found, err := s.ActiveProject(ctx, user)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetActiveProject(ctx, user, 2))
	require.NoError(t, s.SetActiveProject(ctx, user, 4))

	idx, found, err := s.ActiveProject(ctx, user)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, idx)

	stored, err := mr.Get(Key(user))
	require.NoError(t, err)
	assert.Equal(t, "4", stored)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)
	user := uuid.New()

	require.NoError(t, mr.Set(Key(user), "not-a-number"))

	_, found, err := s.ActiveProject(ctx, user)
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "corrupt active project index")
}

func TestRedisStore_Unreachable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	assert.Error(t, s.Ping(context.Background()))
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c1c8e-6f0e-4a55-9a3c-4f8c1d2b3a4e")
	assert.Equal(t, "roadmap:active_project:6f1c1c8e-6f0e-4a55-9a3c-4f8c1d2b3a4e", Key(id))
}
