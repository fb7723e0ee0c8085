package repository

import (
	"sync"

	"gorm.io/gorm"
)

/* ========================================================================
 * Audit Suspension
 * ========================================================================
 * Administrative rewrites (account rename cascades) must not register
 * as user activity: hooks stay silent and date_updated keeps its old
 * value. The suspension wraps a single transaction handle, so its
 * reach ends where the transaction ends; concurrent work on other
 * connections keeps full auditing.
 *
 * Usage:
 *   susp := repository.SuspendAudit(tx)
 *   defer susp.Release()
 *   err := susp.UpdateColumns(&model.Transaction{}, "account_name_owner = ?",
 *       []any{oldName}, map[string]any{"account_name_owner": newName})
 * ======================================================================== */

// AuditSuspension is a transaction-scoped handle whose writes bypass
// hooks and audit timestamps.
type AuditSuspension struct {
	mu       sync.Mutex
	db       *gorm.DB
	released bool
}

// SuspendAudit wraps tx in a session that skips hooks. Writes must go
// through UpdateColumns so autoUpdateTime stays untouched.
func SuspendAudit(tx *gorm.DB) *AuditSuspension {
	return &AuditSuspension{
		db: tx.Session(&gorm.Session{SkipHooks: true, NewDB: true}),
	}
}

// UpdateColumns rewrites columns on rows matching the condition
// without touching audit metadata. Fails once the suspension is
// released.
func (s *AuditSuspension) UpdateColumns(model any, query string, args []any, updates map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return 0, gorm.ErrInvalidTransaction
	}

	result := s.db.Model(model).Where(query, args...).UpdateColumns(updates)
	return result.RowsAffected, result.Error
}

// Release ends the suspension. Safe to call more than once; intended
// for defer so every exit path restores auditing.
func (s *AuditSuspension) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	s.db = nil
}

// Released reports whether the suspension has ended.
func (s *AuditSuspension) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
