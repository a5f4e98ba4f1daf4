package hotel

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-core/internal/common/cache"
	"github.com/dumeirei/hotel-booking-core/internal/common/errors"
	"github.com/dumeirei/hotel-booking-core/internal/common/logger"
	"github.com/dumeirei/hotel-booking-core/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-core/internal/common/utils"
)

// 房间锁实现
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// RoomLocker 房间级互斥，覆盖校验到提交的整个过程
type RoomLocker interface {
	// Lock 获取房间锁，返回的 unlock 可重复调用
	Lock(ctx context.Context, roomID int64) (unlock func(), err error)
}

// LocalRoomLocker 进程内按房间加锁
type LocalRoomLocker struct {
	mu      sync.Mutex
	slots   map[int64]*roomSlot
	wait    time.Duration
	metrics *metrics.Metrics
}

type roomSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalRoomLocker 创建进程内房间锁，wait 为 0 时只受 ctx 约束
func NewLocalRoomLocker(wait time.Duration, m *metrics.Metrics) *LocalRoomLocker {
	return &LocalRoomLocker{
		slots:   make(map[int64]*roomSlot),
		wait:    wait,
		metrics: m,
	}
}

// Lock 获取房间锁
func (l *LocalRoomLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	start := time.Now()

	l.mu.Lock()
	slot, ok := l.slots[roomID]
	if !ok {
		slot = &roomSlot{ch: make(chan struct{}, 1)}
		l.slots[roomID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case slot.ch <- struct{}{}:
		l.metrics.ObserveLockWait(LockBackendLocal, time.Since(start))
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(roomID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(roomID, slot)
		l.metrics.RecordLockTimeout(LockBackendLocal)
		return nil, errors.ErrLockTimeout.WithError(ctx.Err())
	}
}

func (l *LocalRoomLocker) release(roomID int64, slot *roomSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, roomID)
	}
}

// RedisRoomLocker 基于 Redis 的跨进程房间锁
type RedisRoomLocker struct {
	locker  *cache.Locker
	ttl     time.Duration
	wait    time.Duration
	metrics *metrics.Metrics
}

// NewRedisRoomLocker 创建 Redis 房间锁
func NewRedisRoomLocker(locker *cache.Locker, ttl, wait time.Duration, m *metrics.Metrics) *RedisRoomLocker {
	return &RedisRoomLocker{
		locker:  locker,
		ttl:     ttl,
		wait:    wait,
		metrics: m,
	}
}

// Lock 获取房间锁
func (l *RedisRoomLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	start := time.Now()
	key := cache.BuildKey(cache.KeyPrefixRoomLock, strconv.FormatInt(roomID, 10))

	token, err := l.locker.Acquire(ctx, key, l.ttl, l.wait)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
			l.metrics.RecordLockTimeout(LockBackendRedis)
			return nil, errors.ErrLockTimeout.WithError(err)
		}
		return nil, errors.ErrCacheError.WithError(err)
	}
	l.metrics.ObserveLockWait(LockBackendRedis, time.Since(start))

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.locker.Release(releaseCtx, key, token); err != nil {
				logger.Warn("释放房间锁失败",
					logger.RoomID(roomID),
					zap.Error(err),
				)
			}
		})
	}, nil
}

// lockRooms 按房间 ID 升序加锁，返回的 unlock 逆序释放
func lockRooms(ctx context.Context, locker RoomLocker, roomIDs ...int64) (func(), error) {
	ids := sortedUnique(roomIDs...)

	unlocks := make([]func(), 0, len(ids))
	unlockAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, id := range ids {
		unlock, err := locker.Lock(ctx, id)
		if err != nil {
			unlockAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return unlockAll, nil
}

// sortedUnique 去重后升序排列
func sortedUnique(ids ...int64) []int64 {
	out := utils.Unique(ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
