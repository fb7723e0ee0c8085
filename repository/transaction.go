package repository

import (
	"context"
	"database/sql"

	"github.com/fintrack/fintrack/errors"

	"gorm.io/gorm"
)

/* ========================================================================
 * Transaction Support
 * ========================================================================
 * Transactions travel on the context: Execute opens one and hands fn a
 * context carrying it, so any repository used with that context joins
 * the same transaction. Nested Execute calls join the outer
 * transaction instead of opening a new one.
 * ======================================================================== */

// Execute runs fn inside a transaction.
func (r *RepositoryImpl[T]) Execute(ctx context.Context, fn func(txCtx context.Context) error, opts ...*sql.TxOptions) error {
	return Execute(ctx, r.db, fn, opts...)
}

// WithTx returns a repository bound to the given transaction.
func (r *RepositoryImpl[T]) WithTx(tx *gorm.DB) Repository[T] {
	return &RepositoryImpl[T]{db: tx}
}

// Execute runs fn inside a transaction on db. Services spanning
// several repositories use this directly.
func Execute(ctx context.Context, db *gorm.DB, fn func(txCtx context.Context) error, opts ...*sql.TxOptions) error {
	if _, joined := ctx.Value(ctxTxKey{}).(*gorm.DB); joined {
		return fn(ctx)
	}

	// sqlite rejects everything but the default isolation level.
	if len(opts) > 0 && db.Dialector.Name() == "sqlite" {
		opts = nil
	}

	err := getDBFromContext(ctx, db).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	}, opts...)
	if err != nil {
		if _, ok := errors.AsBizError(err); ok {
			return err
		}
		return errors.Wrap(errors.ErrCodeInternal, "transaction failed", err)
	}
	return nil
}

// TxFromContext exposes the transaction carried on ctx, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB)
	return tx, ok
}
