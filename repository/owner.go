package repository

import (
	"context"
	"strings"

	"github.com/fintrack/fintrack/errors"
)

// OwnerContext carries the resolved owner identity for repository
// enforcement. It is bound per inbound request and travels on the
// context.Context of that call only; it is never stored anywhere with
// a broader lifetime.
type OwnerContext struct {
	Owner  string
	UserID string
	Roles  []string
}

// OwnerIgnorable marks models that bypass owner enforcement. Shared
// reference data (medical providers) is the only legitimate use.
type OwnerIgnorable interface {
	OwnerIgnored() bool
}

type ownerCtxKey struct{}

// WithOwner binds an OwnerContext to ctx. The owner value is
// normalized to lowercase, matching the natural-key invariant.
func WithOwner(ctx context.Context, oc OwnerContext) context.Context {
	oc.Owner = strings.ToLower(strings.TrimSpace(oc.Owner))
	return context.WithValue(ctx, ownerCtxKey{}, oc)
}

// OwnerFromContext reads the OwnerContext bound to ctx.
func OwnerFromContext(ctx context.Context) (OwnerContext, bool) {
	v := ctx.Value(ownerCtxKey{})
	if v == nil {
		return OwnerContext{}, false
	}
	oc, ok := v.(OwnerContext)
	return oc, ok
}

// RequireOwner resolves the current owner or fails with
// ErrUnauthenticated when no principal is bound to the call.
func RequireOwner(ctx context.Context) (string, error) {
	oc, ok := OwnerFromContext(ctx)
	if !ok || oc.Owner == "" {
		return "", errors.ErrUnauthenticated
	}
	return oc.Owner, nil
}
