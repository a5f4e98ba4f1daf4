// Package cache Redis 缓存模块单元测试
package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-core/internal/common/config"
)

// setupMiniRedis 创建 miniredis 测试服务器
func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// setupTestClient 创建连接 miniredis 的客户端
func setupTestClient(t *testing.T, s *miniredis.Miniredis) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ==================== 连接测试 ====================

func TestInit_Success(t *testing.T) {
	s := setupMiniRedis(t)
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	client, err := Init(&config.RedisConfig{Host: s.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	assert.Same(t, client, GetClient())
}

func TestInit_ConnectionFailed(t *testing.T) {
	_, err := Init(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1})
	assert.Error(t, err)
	_ = Close()
}

func TestClose_NilClient(t *testing.T) {
	rdb = nil
	assert.NoError(t, Close())
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "lock:room:12", BuildKey(KeyPrefixRoomLock, "12"))
	assert.Equal(t, "ratelimit:ip:127.0.0.1", BuildKey(KeyPrefixRateLimit, "ip", "127.0.0.1"))
	assert.Equal(t, "lock", BuildKey(KeyPrefixLock))
}

// ==================== 分布式锁测试 ====================

func TestLocker_TryAcquire(t *testing.T) {
	s := setupMiniRedis(t)
	locker := NewLocker(setupTestClient(t, s))
	ctx := context.Background()
	key := BuildKey(KeyPrefixRoomLock, "101")

	token, ok, err := locker.TryAcquire(ctx, key, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = locker.TryAcquire(ctx, key, time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "锁已被持有")

	require.NoError(t, locker.Release(ctx, key, token))
	assert.False(t, s.Exists(key))
}

func TestLocker_ReleaseWrongToken(t *testing.T) {
	s := setupMiniRedis(t)
	locker := NewLocker(setupTestClient(t, s))
	ctx := context.Background()
	key := BuildKey(KeyPrefixRoomLock, "102")

	_, ok, err := locker.TryAcquire(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	err = locker.Release(ctx, key, "other-token")
	assert.True(t, errors.Is(err, ErrLockNotHeld))
	assert.True(t, s.Exists(key), "他人的锁不应被删除")
}

func TestLocker_AcquireTimeout(t *testing.T) {
	s := setupMiniRedis(t)
	locker := NewLocker(setupTestClient(t, s))
	ctx := context.Background()
	key := BuildKey(KeyPrefixRoomLock, "103")

	_, err := locker.Acquire(ctx, key, 5*time.Second, 0)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, 5*time.Second, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_AcquireAfterExpire(t *testing.T) {
	s := setupMiniRedis(t)
	locker := NewLocker(setupTestClient(t, s))
	ctx := context.Background()
	key := BuildKey(KeyPrefixRoomLock, "104")

	first, err := locker.Acquire(ctx, key, time.Second, 0)
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	second, err := locker.Acquire(ctx, key, time.Second, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, locker.Release(ctx, key, first), ErrLockNotHeld)
	assert.NoError(t, locker.Release(ctx, key, second))
}

func TestLocker_AcquireContextCanceled(t *testing.T) {
	s := setupMiniRedis(t)
	locker := NewLocker(setupTestClient(t, s))
	key := BuildKey(KeyPrefixRoomLock, "105")

	_, err := locker.Acquire(context.Background(), key, 5*time.Second, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Acquire(ctx, key, 5*time.Second, time.Second)
	assert.Error(t, err)
}
