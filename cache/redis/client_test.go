package redis

import (
	"context"
	"testing"
	"time"

	"github.com/fintrack/fintrack/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientFromRaw(rdb, logger.NewNop()), mr
}

func TestClientSetGet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected v, got %q", got)
	}

	if _, err := c.Get(ctx, "missing"); !IsNil(err) {
		t.Fatalf("expected nil sentinel for missing key, got %v", err)
	}
}

func TestClientDelExists(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	n, err := c.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected key to exist")
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	n, err = c.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected key to be gone")
	}
}

func TestLockAcquireRelease(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	lock := c.NewLock("account:rename:janedoe")
	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// A second holder must not get in while the first holds the lock.
	contender := c.NewLock("account:rename:janedoe", LockOption{
		TTL:        time.Second,
		RetryTimes: 1,
		RetryDelay: time.Millisecond,
	})
	if err := contender.Acquire(ctx); err != ErrLockFailed {
		t.Fatalf("expected lock failure, got %v", err)
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	if err := contender.Acquire(ctx); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestLockReleaseRequiresOwnership(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	lock := c.NewLock("solo")
	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Simulate another holder replacing the lock after expiry.
	mr.Set("lock:solo", "someone-else")
	if err := lock.Release(ctx); err != ErrUnlockFailed {
		t.Fatalf("expected unlock failure, got %v", err)
	}
}

func TestLockExtend(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	lock := c.NewLock("extend", LockOption{TTL: time.Second, RetryTimes: 1, RetryDelay: time.Millisecond})
	if err := lock.Acquire(ctx); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := lock.Extend(ctx, 5*time.Second); err != nil {
		t.Fatalf("extend: %v", err)
	}
}
