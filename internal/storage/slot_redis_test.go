package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisSlot, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slot, err := NewRedisSlot(client, DefaultKey)
	require.NoError(t, err)
	return slot, mr
}

func TestRedisSlot_LoadEmpty(t *testing.T) {
	slot, _ := setupTestRedis(t)

	data, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisSlot_SaveThenLoad(t *testing.T) {
	slot, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, []byte(`[{"id":1,"amount":2}]`)))

	stored, err := mr.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":2}]`, stored)
	assert.Equal(t, time.Duration(0), mr.TTL(DefaultKey), "cart key must not expire")

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":2}]`, string(data))
}

func TestRedisSlot_SaveOverwrites(t *testing.T) {
	slot, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, []byte(`[{"id":1,"amount":1}]`)))
	require.NoError(t, slot.Save(ctx, []byte(`[]`)))

	data, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestRedisSlot_ServerDown(t *testing.T) {
	slot, mr := setupTestRedis(t)
	mr.Close()

	_, err := slot.Load(context.Background())
	require.ErrorContains(t, err, "redis get failed")

	err = slot.Save(context.Background(), []byte(`[]`))
	require.ErrorContains(t, err, "redis set failed")
}

func TestNewRedisSlot_EmptyKey(t *testing.T) {
	_, err := NewRedisSlot(redis.NewClient(&redis.Options{}), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}
