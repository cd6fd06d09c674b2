package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisBlacklist(t *testing.T) (*RedisTokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTokenBlacklist(client), mr
}

func TestRedisTokenBlacklist_Revoke(t *testing.T) {
	bl, mr := newMiniredisBlacklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Equal(t, time.Minute, mr.TTL(blacklistPrefix+"jti:jti-1"))

	mr.FastForward(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_ExpiredTokenIsNotStored(t *testing.T) {
	bl, mr := newMiniredisBlacklist(t)
	require.NoError(t, bl.Revoke(context.Background(), "gone", 0))
	assert.False(t, mr.Exists(blacklistPrefix+"jti:gone"))
}

func TestRedisTokenBlacklist_RevokeUser(t *testing.T) {
	bl, _ := newMiniredisBlacklist(t)
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	revoked, err := bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = bl.IsUserRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-1", time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "user-2", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_ServerDown(t *testing.T) {
	bl, mr := newMiniredisBlacklist(t)
	mr.Close()

	_, err := bl.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, bl.jtis)

	t.Run("user revocation", func(t *testing.T) {
		issued := now.Add(-time.Second)
		require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))

		revoked, err := bl.IsUserRevoked(ctx, "user-1", issued)
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = bl.IsUserRevoked(ctx, "user-1", now.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
