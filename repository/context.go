package repository

import (
	"context"

	"gorm.io/gorm"
)

/* ========================================================================
 * Transaction Context Helper
 * ========================================================================
 * Carries an open transaction through context so that any repository
 * used inside Execute participates in the same transaction.
 * ======================================================================== */

type ctxTxKey struct{}

// withTx stores a transaction DB in the context.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, ctxTxKey{}, tx)
}

// getDBFromContext returns the transaction DB bound to ctx if one
// exists, otherwise the original DB. The returned DB is always bound
// to ctx.
func getDBFromContext(ctx context.Context, originalDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return originalDB.WithContext(ctx)
}
