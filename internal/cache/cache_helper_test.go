package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "curso:"), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		ID     string `json:"id"`
		Titulo string `json:"titulo"`
	}

	require.NoError(t, helper.Set(ctx, "id:c1", payload{ID: "c1", Titulo: "Fade"}, time.Minute))

	var got payload
	require.NoError(t, helper.Get(ctx, "id:c1", &got))
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "Fade", got.Titulo)
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got map[string]any
	err := helper.Get(context.Background(), "id:missing", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "")
	ctx := context.Background()

	var got string
	assert.ErrorIs(t, helper.Get(ctx, "k", &got), ErrCacheNotAvailable)
	assert.NoError(t, helper.Set(ctx, "k", "v", time.Minute), "set must degrade to a no-op without redis")
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, "id:c1", "x", time.Minute))
	require.NoError(t, helper.Delete(ctx, "id:c1"))

	var got string
	assert.ErrorIs(t, helper.Get(ctx, "id:c1", &got), ErrCacheNotFound)
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, "id:c1", "x", time.Minute))
	mr.FastForward(2 * time.Minute)

	var got string
	assert.ErrorIs(t, helper.Get(ctx, "id:c1", &got), ErrCacheNotFound)
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return map[string]string{"id": "c1"}, nil
	}

	var got map[string]string
	require.NoError(t, helper.CacheOrExecute(ctx, "id:c1", &got, time.Minute, fetch))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "c1", got["id"])

	// The async cache write may still be in flight; wait for it.
	require.Eventually(t, func() bool {
		var cached map[string]string
		return helper.Get(ctx, "id:c1", &cached) == nil
	}, time.Second, 5*time.Millisecond)

	var again map[string]string
	require.NoError(t, helper.CacheOrExecute(ctx, "id:c1", &again, time.Minute, fetch))
	assert.Equal(t, 1, calls, "second read must come from cache")
}

func TestCacheHelper_CacheOrExecute_FetchError(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got string
	err := helper.CacheOrExecute(context.Background(), "id:x", &got, time.Minute, func() (interface{}, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestCacheManager_Invalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	require.NoError(t, cm.Course.Set(ctx, "id:c1", "a", time.Minute))
	require.NoError(t, cm.Course.Set(ctx, "list:all", "b", time.Minute))
	require.NoError(t, cm.Profile.Set(ctx, "id:p1", "c", time.Minute))

	require.NoError(t, cm.InvalidateCourse(ctx, "c1"))

	var got string
	assert.ErrorIs(t, cm.Course.Get(ctx, "id:c1", &got), ErrCacheNotFound)
	assert.ErrorIs(t, cm.Course.Get(ctx, "list:all", &got), ErrCacheNotFound)

	// Profile cache untouched by course invalidation.
	assert.NoError(t, cm.Profile.Get(ctx, "id:p1", &got))

	require.NoError(t, cm.InvalidateProfile(ctx, "p1"))
	assert.ErrorIs(t, cm.Profile.Get(ctx, "id:p1", &got), ErrCacheNotFound)
}

func TestCacheManager_NilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	assert.ErrorIs(t, cm.HealthCheck(ctx), ErrCacheNotAvailable)
	assert.NoError(t, cm.ClearAll(ctx))
	assert.NoError(t, cm.InvalidateCourse(ctx, "c1"))
}
