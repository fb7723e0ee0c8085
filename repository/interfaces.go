package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ========================================================================
 * Repository Interfaces
 * ========================================================================
 * Generic, type-safe data access. Every operation on an owned model is
 * scoped to the owner bound to the calling context; a row belonging to
 * another owner is indistinguishable from an absent row.
 * ======================================================================== */

// QueryOption collects optional query modifiers.
type QueryOption struct {
	// Preloads lists associations to eager-load ("Categories", "Account").
	Preloads []string
	// Scopes are arbitrary query scopes applied after the owner scope.
	Scopes []func(*gorm.DB) *gorm.DB
	// OrderBy is an ordering expression ("date_added DESC").
	OrderBy string
	// Select restricts the selected columns.
	Select []string
	// Joins lists JOIN clauses.
	Joins []string
}

// Option mutates a QueryOption.
type Option func(*QueryOption)

// WithPreloads sets associations to eager-load.
func WithPreloads(preloads ...string) Option {
	return func(o *QueryOption) {
		o.Preloads = preloads
	}
}

// WithScopes appends query scopes.
func WithScopes(scopes ...func(*gorm.DB) *gorm.DB) Option {
	return func(o *QueryOption) {
		o.Scopes = scopes
	}
}

// WithOrderBy sets the ordering expression.
func WithOrderBy(orderBy string) Option {
	return func(o *QueryOption) {
		o.OrderBy = orderBy
	}
}

// WithSelect restricts the selected columns.
func WithSelect(selects ...string) Option {
	return func(o *QueryOption) {
		o.Select = selects
	}
}

// WithJoins sets JOIN clauses.
func WithJoins(joins ...string) Option {
	return func(o *QueryOption) {
		o.Joins = joins
	}
}

// ApplyOptions folds a list of Options into a QueryOption.
func ApplyOptions(opts []Option) *QueryOption {
	o := &QueryOption{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PageResult is one page of query results.
type PageResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int64 `json:"pages"`
}

// CRUDRepository covers owner-scoped mutation.
type CRUDRepository[T any] interface {
	// Create inserts a record. For owned models the owner column is
	// force-set from the calling context; any caller-supplied value
	// matching a different owner is rejected.
	Create(ctx context.Context, model *T) error

	// CreateBatch inserts records in batches of batchSize.
	CreateBatch(ctx context.Context, models []*T, batchSize int) error

	// Update saves a record by primary key within the caller's scope.
	// An attempt to change the owner of an existing row fails with a
	// validation error.
	Update(ctx context.Context, model *T) error

	// UpdateByID applies a partial update to the record with the given
	// ID. Column names are validated against the model schema and the
	// owner column is never updatable.
	UpdateByID(ctx context.Context, id int64, updates map[string]any, allowedFields ...string) error

	// Deactivate clears the active flag on the record with the given ID.
	Deactivate(ctx context.Context, id int64) error

	// Delete soft-deletes the record with the given ID.
	Delete(ctx context.Context, id int64) error

	// HardDelete removes the record from the database.
	HardDelete(ctx context.Context, id int64) error
}

// QueryRepository covers owner-scoped reads.
type QueryRepository[T any] interface {
	// FindByID finds a record by ID within the caller's scope.
	FindByID(ctx context.Context, id int64, opts ...Option) (*T, error)

	// FindByIDs finds records by ID list within the caller's scope.
	FindByIDs(ctx context.Context, ids []int64, opts ...Option) ([]*T, error)

	// FindOne finds a single record matching the condition.
	FindOne(ctx context.Context, query string, args ...any) (*T, error)

	// FindOneWithOpts finds a single record with query options.
	FindOneWithOpts(ctx context.Context, query string, opts []Option, args ...any) (*T, error)

	// FindByQuery finds records matching the condition.
	FindByQuery(ctx context.Context, query string, args ...any) ([]*T, error)

	// FindByQueryWithOpts finds records with query options.
	FindByQueryWithOpts(ctx context.Context, query string, opts []Option, args ...any) ([]*T, error)

	// List returns all records in the caller's scope.
	List(ctx context.Context, opts ...Option) ([]*T, error)

	// ListActive returns all active records in the caller's scope.
	ListActive(ctx context.Context, opts ...Option) ([]*T, error)

	// Count counts records matching the condition.
	Count(ctx context.Context, query string, args ...any) (int64, error)

	// Exists reports whether a record matching the condition exists.
	Exists(ctx context.Context, query string, args ...any) (bool, error)
}

// PageRepository covers paginated reads.
type PageRepository[T any] interface {
	// FindPage returns one page of records matching the condition.
	FindPage(ctx context.Context, page, pageSize int, query string, args ...any) (*PageResult[T], error)

	// FindPageWithOpts returns one page of records with query options.
	FindPageWithOpts(ctx context.Context, page, pageSize int, query string, opts []Option, args ...any) (*PageResult[T], error)
}

// AggregateRepository covers owner-scoped aggregation.
type AggregateRepository[T any] interface {
	// Sum sums a column over records matching the condition.
	Sum(ctx context.Context, column string, query string, args ...any) (float64, error)

	// SumDecimal sums a numeric column into a decimal, avoiding the
	// float64 round-trip. Preferred for money columns.
	SumDecimal(ctx context.Context, column string, query string, args ...any) (decimal.Decimal, error)

	// Avg averages a column over records matching the condition.
	Avg(ctx context.Context, column string, query string, args ...any) (float64, error)

	// Max returns the maximum of a column, nil when no rows match.
	Max(ctx context.Context, column string, query string, args ...any) (any, error)

	// Min returns the minimum of a column, nil when no rows match.
	Min(ctx context.Context, column string, query string, args ...any) (any, error)
}

// TransactionRepository covers transaction composition.
type TransactionRepository[T any] interface {
	// Execute runs fn inside a transaction. The context passed to fn
	// carries the transaction; any repository used with that context
	// joins it. fn returning an error rolls the transaction back.
	Execute(ctx context.Context, fn func(txCtx context.Context) error, opts ...*sql.TxOptions) error

	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) Repository[T]
}

// Repository is the full generic repository contract.
type Repository[T any] interface {
	CRUDRepository[T]
	QueryRepository[T]
	PageRepository[T]
	AggregateRepository[T]
	TransactionRepository[T]

	// GetDB exposes the underlying DB for queries the generic surface
	// cannot express. Callers are responsible for owner scoping.
	GetDB() *gorm.DB
}
