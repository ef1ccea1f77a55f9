// Package lock serializes work on a key, either inside one process or across
// replicas through redis.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[string]*keyLock)}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, kl, true) })
	}, nil
}

func (l *localLocker) release(key string, kl *keyLock, held bool) {
	if held {
		<-kl.ch
	}
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

type redisLocker struct {
	rs     *redsync.Redsync
	prefix string
	expiry time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string) Locker {
	return &redisLocker{
		rs:     redsync.New(goredis.NewPool(rdb)),
		prefix: prefix,
		expiry: 30 * time.Second,
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(64),
		redsync.WithRetryDelay(50*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {
		// a failed unlock only means the lock expires on its own
		_, _ = mutex.UnlockContext(context.Background())
	}, nil
}
