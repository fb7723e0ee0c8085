package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/fintrack/fintrack/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * Shutdown Manager
 * ========================================================================
 * Orchestrates graceful shutdown: hooks run ordered by priority, equal
 * priorities in parallel, all under one global timeout. Listens for
 * SIGINT, SIGTERM and SIGQUIT.
 * ======================================================================== */

// ShutdownHook is a single shutdown step.
type ShutdownHook func(ctx context.Context) error

type hookEntry struct {
	name     string
	hook     ShutdownHook
	priority int
}

// Manager coordinates shutdown hooks.
type Manager struct {
	config  *Config
	logger  *logger.Logger
	timeout time.Duration
	hooks   []hookEntry
	mu      sync.RWMutex
	done    chan struct{}
	once    sync.Once
}

// ManagerParams are the manager dependencies.
type ManagerParams struct {
	fx.In

	Logger *logger.Logger
	Config *Config
}

// NewManager creates a shutdown manager.
func NewManager(p ManagerParams) *Manager {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Manager{
		config:  cfg,
		logger:  p.Logger,
		timeout: cfg.Timeout,
		hooks:   make([]hookEntry, 0),
		done:    make(chan struct{}),
	}
}

// RegisterHook registers a hook at the default priority.
func (m *Manager) RegisterHook(name string, hook ShutdownHook) {
	m.RegisterHookWithPriority(name, hook, PriorityNormal)
}

// RegisterHookWithPriority registers a hook. Lower priorities run
// earlier; equal priorities run in parallel.
func (m *Manager) RegisterHookWithPriority(name string, hook ShutdownHook, priority int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = append(m.hooks, hookEntry{
		name:     name,
		hook:     hook,
		priority: priority,
	})

	m.logger.Info("registered shutdown hook",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Wait blocks until a shutdown signal arrives, then shuts down.
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	m.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	m.Shutdown(context.Background())
}

// Shutdown runs the hooks once; safe to call directly.
func (m *Manager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		m.performShutdown(ctx)
		close(m.done)
	})
}

// Done returns a channel closed when shutdown completes.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// IsShutdown reports whether shutdown has completed.
func (m *Manager) IsShutdown() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *Manager) performShutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	// Copy the hook list so no hook runs under the lock.
	m.mu.RLock()
	hooks := make([]hookEntry, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.RUnlock()

	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].priority < hooks[j].priority
	})

	m.logger.Info("starting graceful shutdown",
		zap.Int("hooks", len(hooks)),
		zap.Duration("timeout", m.timeout),
	)

	groups := m.groupByPriority(hooks)
	var allResults []hookResult

	for _, group := range groups {
		if shutdownCtx.Err() != nil {
			m.logger.Warn("shutdown timeout reached, skipping remaining hooks")
			break
		}

		m.logger.Info("executing shutdown hooks",
			zap.Int("priority", group.priority),
			zap.Int("count", len(group.hooks)),
		)

		results := m.executeHookGroup(shutdownCtx, group.hooks)
		allResults = append(allResults, results...)
	}

	m.reportResults(allResults)

	if shutdownCtx.Err() == nil {
		m.logger.Info("graceful shutdown completed")
	} else {
		m.logger.Warn("graceful shutdown completed with timeout")
	}
}

type hookGroup struct {
	priority int
	hooks    []hookEntry
}

func (m *Manager) groupByPriority(hooks []hookEntry) []hookGroup {
	if len(hooks) == 0 {
		return nil
	}

	var groups []hookGroup
	currentPriority := hooks[0].priority
	currentGroup := hookGroup{priority: currentPriority}

	for _, h := range hooks {
		if h.priority != currentPriority {
			groups = append(groups, currentGroup)
			currentPriority = h.priority
			currentGroup = hookGroup{priority: currentPriority}
		}
		currentGroup.hooks = append(currentGroup.hooks, h)
	}
	groups = append(groups, currentGroup)

	return groups
}

func (m *Manager) executeHookGroup(ctx context.Context, hooks []hookEntry) []hookResult {
	errChan := make(chan hookResult, len(hooks))
	var wg sync.WaitGroup

	for _, h := range hooks {
		wg.Add(1)
		go func(entry hookEntry) {
			defer wg.Done()

			start := time.Now()
			err := entry.hook(ctx)

			errChan <- hookResult{
				name:     entry.name,
				err:      err,
				duration: time.Since(start),
			}
		}(h)
	}

	results := make([]hookResult, 0, len(hooks))
	completedCount := 0

loop:
	for completedCount < len(hooks) {
		select {
		case result, ok := <-errChan:
			if !ok {
				break loop
			}
			results = append(results, result)
			completedCount++
		case <-ctx.Done():
			m.logger.Warn("timeout waiting for hook group",
				zap.Int("completed", completedCount),
				zap.Int("total", len(hooks)),
			)
			break loop
		}
	}

	return results
}

type hookResult struct {
	name     string
	err      error
	duration time.Duration
}

func (m *Manager) reportResults(results []hookResult) {
	successCount := 0
	for _, result := range results {
		if result.err != nil {
			m.logger.Error("shutdown hook failed",
				zap.String("name", result.name),
				zap.Duration("duration", result.duration),
				zap.Error(result.err),
			)
		} else {
			m.logger.Info("shutdown hook completed",
				zap.String("name", result.name),
				zap.Duration("duration", result.duration),
			)
			successCount++
		}
	}

	m.logger.Info("shutdown summary",
		zap.Int("succeeded", successCount),
		zap.Int("total", len(results)),
	)
}

// WaitForShutdown blocks until shutdown completes.
func (m *Manager) WaitForShutdown() {
	<-m.done
}
