package repository

import (
	"context"

	"github.com/fintrack/fintrack/errors"
)

/* ========================================================================
 * Derived Owner Resolution
 * ========================================================================
 * Join rows never take their owner from input. The owner is derived
 * from the parent row, looked up within the caller's scope and inside
 * the caller's transaction. A parent that is absent or belongs to
 * another owner surfaces as a referential integrity failure.
 * ======================================================================== */

// Owned is implemented by every model embedding OwnedModel.
type Owned interface {
	GetOwner() string
}

// ResolveParentOwner finds the parent row matching the condition in
// the caller's scope and returns its owner. The returned owner is by
// construction the caller's own; the lookup exists to prove the parent
// is reachable before a dependent row is written.
func ResolveParentOwner[P any](ctx context.Context, repo Repository[P], query string, args ...any) (string, error) {
	parent, err := repo.FindOne(ctx, query, args...)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.Wrap(errors.ErrCodeReferentialIntegrity, "parent record not found", err)
		}
		return "", err
	}

	if owned, ok := any(*parent).(Owned); ok {
		return owned.GetOwner(), nil
	}
	return RequireOwner(ctx)
}
