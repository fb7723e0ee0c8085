package repository

import (
	"context"
	"reflect"
	"sync"

	"github.com/fintrack/fintrack/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/* ========================================================================
 * CRUD Repository Implementation
 * ========================================================================
 * Usage:
 *
 *   // 1. Define an owned model
 *   type Account struct {
 *       repository.OwnedModel
 *       AccountNameOwner string `gorm:"column:account_name_owner;type:varchar(40);not null"`
 *   }
 *
 *   // 2. Create the repository
 *   repo := repository.NewRepository[Account](db)
 *
 *   // 3. All operations run against the owner bound to ctx
 *   ctx = repository.WithOwner(ctx, repository.OwnerContext{Owner: "janedoe"})
 *   err := repo.Create(ctx, &Account{AccountNameOwner: "chase_brian"})
 *
 *   // 4. Transactions compose through the context
 *   err = repo.Execute(ctx, func(txCtx context.Context) error {
 *       return repo.Create(txCtx, &Account{AccountNameOwner: "boa_brian"})
 *   })
 * ======================================================================== */

const (
	// DefaultBatchSize bounds batch inserts.
	DefaultBatchSize = 100
)

// RepositoryImpl is the generic repository implementation.
type RepositoryImpl[T any] struct {
	db *gorm.DB

	schemaOnce sync.Once
	schema     *schema.Schema
	schemaErr  error
}

// NewRepository creates a repository for model T.
func NewRepository[T any](db *gorm.DB) Repository[T] {
	return &RepositoryImpl[T]{db: db}
}

// GetDB exposes the underlying GORM DB.
func (r *RepositoryImpl[T]) GetDB() *gorm.DB {
	return r.db
}

// newModelPtr allocates a fresh model pointer.
func (r *RepositoryImpl[T]) newModelPtr() *T {
	var model T
	return &model
}

// withContext returns a DB bound to ctx, joining the transaction
// carried on ctx when present.
func (r *RepositoryImpl[T]) withContext(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, r.db)
}

// getSchema parses and caches the model schema.
func (r *RepositoryImpl[T]) getSchema() (*schema.Schema, error) {
	r.schemaOnce.Do(func() {
		stmt := &gorm.Statement{DB: r.db}
		r.schemaErr = stmt.Parse(r.newModelPtr())
		if r.schemaErr == nil {
			r.schema = stmt.Schema
		}
	})
	return r.schema, r.schemaErr
}

/* ========================================================================
 * Create
 * ======================================================================== */

// Create inserts a record with the owner force-set from ctx.
func (r *RepositoryImpl[T]) Create(ctx context.Context, model *T) error {
	if model == nil {
		return errors.New(errors.ErrCodeValidation, "model is nil")
	}

	if err := r.setOwnerField(ctx, model); err != nil {
		return err
	}

	if err := r.withContext(ctx).Create(model).Error; err != nil {
		return errors.FromGorm(err, "failed to create record")
	}
	return nil
}

// CreateBatch inserts records in batches, owner force-set on each.
func (r *RepositoryImpl[T]) CreateBatch(ctx context.Context, models []*T, batchSize int) error {
	if len(models) == 0 {
		return errors.New(errors.ErrCodeValidation, "no models to create")
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	valid := make([]*T, 0, len(models))
	for _, m := range models {
		if m == nil {
			continue
		}
		if err := r.setOwnerField(ctx, m); err != nil {
			return err
		}
		valid = append(valid, m)
	}

	if len(valid) == 0 {
		return nil
	}

	if err := r.withContext(ctx).CreateInBatches(valid, batchSize).Error; err != nil {
		return errors.FromGorm(err, "failed to create records")
	}
	return nil
}

/* ========================================================================
 * Update
 * ======================================================================== */

// Update saves a record by primary key within the caller's scope.
// Save writes every field, so the record must already exist for this
// owner; a row held by another owner surfaces as NotFound.
func (r *RepositoryImpl[T]) Update(ctx context.Context, model *T) error {
	if model == nil {
		return errors.New(errors.ErrCodeValidation, "model is nil")
	}

	// Rejects an attempted owner reassignment before any SQL runs,
	// then pins the owner so Save cannot drift it.
	if err := r.setOwnerField(ctx, model); err != nil {
		return err
	}

	if !r.isOwnerIgnored(model) {
		sch, err := r.getSchema()
		if err != nil {
			return err
		}
		id, _ := sch.PrioritizedPrimaryField.ValueOf(ctx, reflect.ValueOf(model))
		exists, err := r.Exists(ctx, "id = ?", id)
		if err != nil {
			return err
		}
		if !exists {
			return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
		}
	}

	result := r.withContext(ctx).Save(model)
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to update record")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateByID applies a partial update within the caller's scope.
// Unknown columns are dropped; the primary key and the owner column
// are never updatable.
func (r *RepositoryImpl[T]) UpdateByID(ctx context.Context, id int64, updates map[string]any, allowedFields ...string) error {
	if len(updates) == 0 {
		return errors.New(errors.ErrCodeValidation, "no fields to update")
	}

	filtered, err := r.filterUpdates(updates, allowedFields)
	if err != nil {
		return err
	}
	if len(filtered) == 0 {
		return errors.New(errors.ErrCodeValidation, "no updatable fields")
	}

	db := r.applyOwnerScope(ctx, r.withContext(ctx))
	result := db.Model(r.newModelPtr()).Where("id = ?", id).Updates(filtered)
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to update record")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
	}
	return nil
}

// filterUpdates drops columns not present in the model schema, the
// primary key and the owner column. With a non-empty whitelist only
// whitelisted keys survive.
func (r *RepositoryImpl[T]) filterUpdates(updates map[string]any, allowedFields []string) (map[string]any, error) {
	sch, err := r.getSchema()
	if err != nil {
		return nil, err
	}

	allowedSet := make(map[string]struct{}, len(allowedFields))
	for _, f := range allowedFields {
		allowedSet[f] = struct{}{}
	}
	hasWhitelist := len(allowedSet) > 0

	filtered := make(map[string]any)
	for k, v := range updates {
		if hasWhitelist {
			if _, ok := allowedSet[k]; !ok {
				continue
			}
		}
		if k == ownerColumn {
			continue
		}

		if field, ok := sch.FieldsByDBName[k]; ok {
			if !field.PrimaryKey && field.Updatable && field.DBName != ownerColumn {
				filtered[k] = v
			}
			continue
		}
		if field, ok := sch.FieldsByName[k]; ok {
			if !field.PrimaryKey && field.Updatable && field.DBName != ownerColumn {
				filtered[field.DBName] = v
			}
			continue
		}
	}

	return filtered, nil
}

/* ========================================================================
 * Deactivate / Delete
 * ======================================================================== */

// Deactivate clears the active flag; the row stays queryable.
func (r *RepositoryImpl[T]) Deactivate(ctx context.Context, id int64) error {
	db := r.applyOwnerScope(ctx, r.withContext(ctx))
	result := db.Model(r.newModelPtr()).Where("id = ?", id).Update("active_status", false)
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to deactivate record")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete soft-deletes the record within the caller's scope.
func (r *RepositoryImpl[T]) Delete(ctx context.Context, id int64) error {
	db := r.applyOwnerScope(ctx, r.withContext(ctx))
	result := db.Where("id = ?", id).Delete(r.newModelPtr())
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to delete record")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
	}
	return nil
}

// HardDelete removes the record from the database.
func (r *RepositoryImpl[T]) HardDelete(ctx context.Context, id int64) error {
	db := r.applyOwnerScope(ctx, r.withContext(ctx).Unscoped())
	result := db.Where("id = ?", id).Delete(r.newModelPtr())
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to delete record")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "record not found", gorm.ErrRecordNotFound)
	}
	return nil
}
