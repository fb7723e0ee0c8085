package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

/* ========================================================================
 * Distributed Lock
 * ========================================================================
 * SetNX-based lock with a fencing value so only the holder can
 * release or extend. Serializes account rename/deactivation across
 * service instances.
 * ======================================================================== */

var (
	ErrLockFailed   = errors.New("failed to acquire lock")
	ErrUnlockFailed = errors.New("failed to release lock")
)

// Lock is a single-key distributed lock.
type Lock struct {
	client *Client
	key    string
	ttl    time.Duration
	opt    LockOption

	mu    sync.Mutex
	value string
}

// LockOption tunes acquisition behavior.
type LockOption struct {
	TTL        time.Duration
	RetryTimes int
	RetryDelay time.Duration
}

// DefaultLockOption returns the defaults used by NewLock.
func DefaultLockOption() LockOption {
	return LockOption{
		TTL:        30 * time.Second,
		RetryTimes: 5,
		RetryDelay: 100 * time.Millisecond,
	}
}

// NewLock creates a lock on "lock:"+key.
func (c *Client) NewLock(key string, opts ...LockOption) *Lock {
	opt := DefaultLockOption()
	if len(opts) > 0 {
		opt = opts[0]
	}

	return &Lock{
		client: c,
		key:    "lock:" + key,
		value:  uuid.New().String(),
		ttl:    opt.TTL,
		opt:    opt,
	}
}

// Acquire takes the lock, retrying per the lock options.
func (l *Lock) Acquire(ctx context.Context) error {
	value := uuid.New().String()
	for i := 0; i < l.opt.RetryTimes; i++ {
		ok, err := l.client.SetNX(ctx, l.key, value, l.ttl)
		if err != nil {
			return err
		}
		if ok {
			l.mu.Lock()
			l.value = value
			l.mu.Unlock()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.opt.RetryDelay):
		}
	}

	return ErrLockFailed
}

// Release drops the lock. A Lua script checks the fencing value so a
// stale holder cannot release someone else's acquisition.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	value := l.value
	l.mu.Unlock()

	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.rdb.Eval(ctx, script, []string{l.key}, value).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrUnlockFailed
	}
	return nil
}

// Extend pushes out the expiry while still holding the lock.
func (l *Lock) Extend(ctx context.Context, ttl time.Duration) error {
	l.mu.Lock()
	value := l.value
	l.mu.Unlock()

	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("PEXPIRE", KEYS[1], ARGV[2])
		else
			return 0
		end
	`

	result, err := l.client.rdb.Eval(ctx, script, []string{l.key}, value, ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLockFailed
	}
	return nil
}
