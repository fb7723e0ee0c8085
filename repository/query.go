package repository

import (
	"context"

	"github.com/fintrack/fintrack/errors"

	"gorm.io/gorm"
)

/* ========================================================================
 * Query Repository Implementation
 * ========================================================================
 * Every read goes through the owner scope. A row held by another owner
 * surfaces as NotFound, never as anything that reveals its existence.
 * ======================================================================== */

// buildQuery applies the owner scope and the query options.
func (r *RepositoryImpl[T]) buildQuery(ctx context.Context, opts *QueryOption) *gorm.DB {
	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if opts == nil {
		return db
	}

	if err := ValidateSelect(opts.Select); err != nil {
		db.AddError(err)
		return db
	}
	if err := ValidateOrderBy(opts.OrderBy); err != nil {
		db.AddError(err)
		return db
	}
	if err := ValidateJoins(opts.Joins); err != nil {
		db.AddError(err)
		return db
	}

	if len(opts.Select) > 0 {
		db = db.Select(opts.Select)
	}

	for _, join := range opts.Joins {
		db = db.Joins(join)
	}

	if opts.OrderBy != "" {
		db = db.Order(opts.OrderBy)
	}

	for _, scope := range opts.Scopes {
		db = scope(db)
	}

	for _, preload := range opts.Preloads {
		db = db.Preload(preload)
	}

	return db
}

/* ========================================================================
 * FindByID
 * ======================================================================== */

// FindByID finds a record by ID within the caller's scope.
func (r *RepositoryImpl[T]) FindByID(ctx context.Context, id int64, opts ...Option) (*T, error) {
	opt := ApplyOptions(opts)
	model := r.newModelPtr()

	query := r.buildQuery(ctx, opt)
	if err := query.First(model, "id = ?", id).Error; err != nil {
		return nil, errors.FromGorm(err, "record not found")
	}

	return model, nil
}

// FindByIDs finds records by ID list within the caller's scope.
func (r *RepositoryImpl[T]) FindByIDs(ctx context.Context, ids []int64, opts ...Option) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}

	opt := ApplyOptions(opts)
	var models []*T

	query := r.buildQuery(ctx, opt)
	if err := query.Find(&models, "id IN ?", ids).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to find records")
	}

	return models, nil
}

/* ========================================================================
 * FindOne / FindByQuery
 * ======================================================================== */

// FindOne finds a single record matching the condition.
func (r *RepositoryImpl[T]) FindOne(ctx context.Context, query string, args ...any) (*T, error) {
	return r.FindOneWithOpts(ctx, query, nil, args...)
}

// FindOneWithOpts finds a single record with query options.
func (r *RepositoryImpl[T]) FindOneWithOpts(ctx context.Context, query string, opts []Option, args ...any) (*T, error) {
	var opt *QueryOption
	if len(opts) > 0 {
		opt = ApplyOptions(opts)
	}

	model := r.newModelPtr()
	db := r.buildQuery(ctx, opt)

	if err := db.Where(query, args...).First(model).Error; err != nil {
		return nil, errors.FromGorm(err, "record not found")
	}

	return model, nil
}

// FindByQuery finds records matching the condition.
func (r *RepositoryImpl[T]) FindByQuery(ctx context.Context, query string, args ...any) ([]*T, error) {
	return r.FindByQueryWithOpts(ctx, query, nil, args...)
}

// FindByQueryWithOpts finds records with query options.
func (r *RepositoryImpl[T]) FindByQueryWithOpts(ctx context.Context, query string, opts []Option, args ...any) ([]*T, error) {
	var opt *QueryOption
	if len(opts) > 0 {
		opt = ApplyOptions(opts)
	}

	var models []*T
	db := r.buildQuery(ctx, opt)

	if err := db.Where(query, args...).Find(&models).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to find records")
	}

	return models, nil
}

/* ========================================================================
 * List
 * ======================================================================== */

// List returns all records in the caller's scope.
func (r *RepositoryImpl[T]) List(ctx context.Context, opts ...Option) ([]*T, error) {
	var models []*T
	db := r.buildQuery(ctx, ApplyOptions(opts))

	if err := db.Find(&models).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to list records")
	}

	return models, nil
}

// ListActive returns all active records in the caller's scope.
func (r *RepositoryImpl[T]) ListActive(ctx context.Context, opts ...Option) ([]*T, error) {
	var models []*T
	db := r.buildQuery(ctx, ApplyOptions(opts))

	if err := db.Where("active_status = ?", true).Find(&models).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to list records")
	}

	return models, nil
}

/* ========================================================================
 * Count / Exists
 * ======================================================================== */

// Count counts records matching the condition within the caller's scope.
func (r *RepositoryImpl[T]) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	db := r.applyOwnerScope(ctx, r.withContext(ctx)).Model(r.newModelPtr())

	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, errors.FromGorm(err, "failed to count records")
	}

	return count, nil
}

// Exists reports whether a record matching the condition exists.
func (r *RepositoryImpl[T]) Exists(ctx context.Context, query string, args ...any) (bool, error) {
	count, err := r.Count(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
