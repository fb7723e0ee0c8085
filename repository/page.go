package repository

import (
	"context"
	"database/sql"
	"math"

	"github.com/fintrack/fintrack/errors"

	"gorm.io/gorm"
)

/* ========================================================================
 * Page Repository Implementation
 * ========================================================================
 * Count and fetch run in one repeatable-read transaction so the total
 * and the page describe the same snapshot.
 * ======================================================================== */

// FindPage returns one page of records matching the condition.
func (r *RepositoryImpl[T]) FindPage(ctx context.Context, page, pageSize int, query string, args ...any) (*PageResult[T], error) {
	return r.FindPageWithOpts(ctx, page, pageSize, query, nil, args...)
}

// FindPageWithOpts returns one page of records with query options.
func (r *RepositoryImpl[T]) FindPageWithOpts(ctx context.Context, page, pageSize int, query string, opts []Option, args ...any) (*PageResult[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 1000 {
		pageSize = 1000
	}

	var opt *QueryOption
	if len(opts) > 0 {
		opt = ApplyOptions(opts)
	}

	return r.findPageWithSnapshot(ctx, opt, page, pageSize, func(db *gorm.DB) *gorm.DB {
		if query != "" {
			return db.Where(query, args...)
		}
		return db
	})
}

func (r *RepositoryImpl[T]) findPageWithSnapshot(ctx context.Context, opt *QueryOption, page, pageSize int, apply func(*gorm.DB) *gorm.DB) (*PageResult[T], error) {
	db := r.withContext(ctx)

	// sqlite rejects everything but the default isolation level.
	var txOpts []*sql.TxOptions
	if r.db.Dialector.Name() != "sqlite" {
		txOpts = append(txOpts, &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
		})
	}

	var result *PageResult[T]
	err := db.Transaction(func(tx *gorm.DB) error {
		txCtx := withTx(ctx, tx)
		query := r.buildQuery(txCtx, opt)
		if apply != nil {
			query = apply(query)
		}
		var err error
		result, err = r.findPageWithDB(query, page, pageSize)
		return err
	}, txOpts...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RepositoryImpl[T]) findPageWithDB(db *gorm.DB, page, pageSize int) (*PageResult[T], error) {
	var total int64
	if err := db.Model(r.newModelPtr()).Count(&total).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to count records")
	}

	offset := (page - 1) * pageSize

	var list []T
	if err := db.Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to find records")
	}

	pages := int64(0)
	if pageSize > 0 {
		pages = int64(math.Ceil(float64(total) / float64(pageSize)))
	}

	return &PageResult[T]{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	}, nil
}
