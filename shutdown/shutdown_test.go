package shutdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fintrack/fintrack/logger"
)

func newTestManager(timeout time.Duration) *Manager {
	return NewManager(ManagerParams{
		Logger: logger.NewNop(),
		Config: &Config{Timeout: timeout},
	})
}

func TestShutdownRunsHooksByPriority(t *testing.T) {
	m := newTestManager(time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownHook {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	m.RegisterHookWithPriority("last", record("last"), PriorityLow)
	m.RegisterHookWithPriority("first", record("first"), PriorityFirst)
	m.RegisterHook("middle", record("middle"))

	m.Shutdown(context.Background())

	if len(order) != 3 {
		t.Fatalf("expected 3 hooks, got %d", len(order))
	}
	if order[0] != "first" || order[2] != "last" {
		t.Fatalf("unexpected order: %v", order)
	}
	if !m.IsShutdown() {
		t.Fatalf("expected manager shut down")
	}
}

func TestShutdownTimeoutAbandonsSlowHooks(t *testing.T) {
	m := newTestManager(100 * time.Millisecond)

	m.RegisterHook("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	m.Shutdown(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("shutdown took too long: %v", elapsed)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := newTestManager(time.Second)

	calls := 0
	m.RegisterHook("once", func(ctx context.Context) error {
		calls++
		return nil
	})

	m.Shutdown(context.Background())
	m.Shutdown(context.Background())

	if calls != 1 {
		t.Fatalf("expected one invocation, got %d", calls)
	}

	select {
	case <-m.Done():
	default:
		t.Fatalf("expected done channel closed")
	}
}
