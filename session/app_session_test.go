package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*AppSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAppSessionStore(rdb, time.Hour), mr
}

func TestCreateGetDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "worker-1", "Worker")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	as, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "worker-1", as.WorkerID)
	assert.Equal(t, "Worker", as.Role)
	assert.Equal(t, as.IssuedAt+int64(time.Hour/time.Second), as.ExpiresAt)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionExpires(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "worker-1", "Worker")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeAllForWorker(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "worker-1", "Worker")
	require.NoError(t, err)
	b, err := s.Create(ctx, "worker-1", "Worker")
	require.NoError(t, err)
	other, err := s.Create(ctx, "worker-2", "SuperAdmin")
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForWorker(ctx, "worker-1"))

	for _, id := range []string{a, b} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNoSession)
	}
	_, err = s.Get(ctx, other)
	assert.NoError(t, err)
}

func TestSessionLayout(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "worker-1", "Warehouse-keeper")
	require.NoError(t, err)

	assert.Equal(t, "worker-1", mr.HGet(key(id), "wid"))
	assert.Equal(t, "Warehouse-keeper", mr.HGet(key(id), "role"))
	assert.Equal(t, time.Hour, mr.TTL(key(id)))
	assert.Equal(t, time.Hour, mr.TTL(workerSetKey("worker-1")))
	member, err := mr.SIsMember(workerSetKey("worker-1"), id)
	require.NoError(t, err)
	assert.True(t, member)

	require.NoError(t, s.Delete(ctx, id))
	assert.False(t, mr.Exists(key(id)))
	member, _ = mr.SIsMember(workerSetKey("worker-1"), id)
	assert.False(t, member)

	// 已删除或从未存在的会话，删除不报错
	assert.NoError(t, s.Delete(ctx, id))
	assert.NoError(t, s.RevokeAllForWorker(ctx, "nobody"))
}
