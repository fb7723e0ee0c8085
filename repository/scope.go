package repository

import (
	"context"
	"reflect"

	"github.com/fintrack/fintrack/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/* ========================================================================
 * Owner Scope
 * ========================================================================
 * Every query, update and delete on an owned model is constrained to
 * the owner bound to the calling context, and every insert has the
 * owner column force-set from that context. Models implementing
 * OwnerIgnorable with OwnerIgnored() == true (shared reference data)
 * bypass the scope entirely.
 * ======================================================================== */

const ownerColumn = "owner"

// applyOwnerScope adds the owner predicate for owned models. A missing
// owner context fails the statement with ErrUnauthenticated rather
// than widening the query.
func (r *RepositoryImpl[T]) applyOwnerScope(ctx context.Context, db *gorm.DB) *gorm.DB {
	if r.isOwnerIgnored(r.newModelPtr()) {
		return db
	}

	oc, ok := OwnerFromContext(ctx)
	if !ok || oc.Owner == "" {
		db.AddError(errors.ErrUnauthenticated)
		return db
	}

	if _, err := r.ownerField(); err != nil {
		db.AddError(err)
		return db
	}

	return db.Where(ownerColumn+" = ?", oc.Owner)
}

// ownerField resolves the owner column field from the cached schema.
func (r *RepositoryImpl[T]) ownerField() (*schema.Field, error) {
	sch, err := r.getSchema()
	if err != nil {
		return nil, err
	}
	field, ok := sch.FieldsByDBName[ownerColumn]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInternal,
			"model %s has no owner column", sch.Table)
	}
	return field, nil
}

// setOwnerField force-sets the owner column from the calling context.
// A non-empty value already on the model that names a different owner
// is rejected: callers never choose their own owner.
func (r *RepositoryImpl[T]) setOwnerField(ctx context.Context, model any) error {
	if r.isOwnerIgnored(model) {
		return nil
	}

	oc, ok := OwnerFromContext(ctx)
	if !ok || oc.Owner == "" {
		return errors.ErrUnauthenticated
	}

	field, err := r.ownerField()
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(model)
	if current, zero := field.ValueOf(ctx, rv); !zero {
		if s, ok := current.(string); ok && s != oc.Owner {
			return errors.New(errors.ErrCodeValidation, "owner mismatch")
		}
	}

	return field.Set(ctx, rv, oc.Owner)
}

// modelOwner reads the owner column value from a model instance.
func (r *RepositoryImpl[T]) modelOwner(ctx context.Context, model *T) (string, error) {
	field, err := r.ownerField()
	if err != nil {
		return "", err
	}
	v, zero := field.ValueOf(ctx, reflect.ValueOf(model))
	if zero {
		return "", nil
	}
	s, _ := v.(string)
	return s, nil
}

// isOwnerIgnored reports whether the model opts out of owner scoping.
func (r *RepositoryImpl[T]) isOwnerIgnored(model any) bool {
	if model == nil {
		return false
	}

	if ignorable, ok := model.(OwnerIgnorable); ok {
		return ignorable.OwnerIgnored()
	}

	rv := reflect.ValueOf(model)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		if ignorable, ok := rv.Elem().Interface().(OwnerIgnorable); ok {
			return ignorable.OwnerIgnored()
		}
	}

	return false
}
