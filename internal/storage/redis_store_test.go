package storage

import (
	"context"
	"testing"

	"lostfound/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStore(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		s, _ := newTestRedisStore(t)
		return s
	})
}

func TestRedisStoreKeys(t *testing.T) {
	s, mr := newTestRedisStore(t)
	it, err := s.CreateItem(context.Background(), model.Item{Title: "Umbrella", CreatedAt: t0})
	require.NoError(t, err)

	assert.True(t, mr.Exists(recordKey(kindItem, it.ID)))
	members, err := mr.ZMembers(indexKey(kindItem))
	require.NoError(t, err)
	assert.Equal(t, []string{it.ID}, members)
}

func TestRedisStoreSkipsDanglingIndex(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()
	_, err := s.CreateItem(ctx, model.Item{Title: "Umbrella", CreatedAt: t0})
	require.NoError(t, err)
	_, err = mr.ZAdd(indexKey(kindItem), 1, "ghost")
	require.NoError(t, err)

	items, err := s.ListItems(ctx, ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Umbrella", items[0].Title)
}

func TestRedisStoreStats(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()
	for _, title := range []string{"Umbrella", "Scarf"} {
		_, err := s.CreateItem(ctx, model.Item{Title: title, CreatedAt: t0})
		require.NoError(t, err)
	}
	_, err := s.CreateMessage(ctx, model.Message{SenderID: "a", ReceiverID: "b", Content: "hi"})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"item": 2, "match": 0, "message": 1}, stats)
}
