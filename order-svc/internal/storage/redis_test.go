package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overcooked-orders/order-svc/internal/domain"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStorage(client, ttl), mr
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	store, mr := setupRedis(t, time.Hour)
	lines := []domain.CartLine{{MenuItem: domain.MenuItem{ID: "1", Name: "Margherita Pizza", Price: 299}, Quantity: 2}}

	require.NoError(t, store.Set("restaurant_cart:s1", lines))
	assert.Equal(t, time.Hour, mr.TTL("restaurant_cart:s1"))

	var got []domain.CartLine
	found, err := store.Get("restaurant_cart:s1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, lines, got)

	require.NoError(t, store.Remove("restaurant_cart:s1"))
	found, err = store.Get("restaurant_cart:s1", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("restaurant_cart:s1"))
}

func TestRedisStorage_NoTTL(t *testing.T) {
	store, mr := setupRedis(t, 0)

	require.NoError(t, store.Set("menu_cache", []string{"1"}))
	assert.Zero(t, mr.TTL("menu_cache"))
}

func TestRedisStorage_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*RedisStorage, *miniredis.Miniredis)
	}{
		{
			name:  "corrupt value",
			setup: func(_ *RedisStorage, mr *miniredis.Miniredis) { mr.Set("k", "{not json") },
		},
		{
			name:  "closed client",
			setup: func(store *RedisStorage, _ *miniredis.Miniredis) { store.Client.Close() },
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store, mr := setupRedis(t, time.Minute)
			testCase.setup(store, mr)

			var dest map[string]any
			found, err := store.Get("k", &dest)
			assert.Error(t, err)
			assert.False(t, found)
		})
	}
}
