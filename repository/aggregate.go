package repository

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/fintrack/fintrack/errors"

	"github.com/shopspring/decimal"
)

/* ========================================================================
 * Aggregate Repository Implementation
 * ========================================================================
 * Column names are interpolated into SQL, so they are validated
 * against a strict identifier whitelist first.
 * ======================================================================== */

// columnRegex allows only plain identifiers.
var columnRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateColumn checks that a column name is a safe identifier.
func validateColumn(column string) error {
	if column == "" {
		return errors.New(errors.ErrCodeValidation, "column cannot be empty")
	}
	if strings.Contains(column, ".") {
		return errors.New(errors.ErrCodeValidation, "column must not contain table qualifier")
	}
	if !columnRegex.MatchString(column) {
		return errors.New(errors.ErrCodeValidation, "invalid column name: "+column)
	}
	return nil
}

// Sum sums a column over records matching the condition.
func (r *RepositoryImpl[T]) Sum(ctx context.Context, column string, query string, args ...any) (float64, error) {
	if err := validateColumn(column); err != nil {
		return 0, err
	}

	var result float64
	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if query != "" {
		db = db.Where(query, args...)
	}

	expr := "COALESCE(SUM(" + column + "), 0)"
	if err := db.Model(r.newModelPtr()).Select(expr).Scan(&result).Error; err != nil {
		return 0, errors.FromGorm(err, "failed to sum records")
	}

	return result, nil
}

// SumDecimal sums a numeric column without a float64 round-trip: the
// database value is scanned straight into a decimal. Use this for
// money columns; Sum is for counts and other approximate aggregates.
func (r *RepositoryImpl[T]) SumDecimal(ctx context.Context, column string, query string, args ...any) (decimal.Decimal, error) {
	if err := validateColumn(column); err != nil {
		return decimal.Zero, err
	}

	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if query != "" {
		db = db.Where(query, args...)
	}

	var result decimal.Decimal
	row := db.Model(r.newModelPtr()).Select("COALESCE(SUM(" + column + "), 0)").Row()
	if err := row.Scan(&result); err != nil {
		return decimal.Zero, errors.FromGorm(err, "failed to sum records")
	}

	return result, nil
}

// Avg averages a column over records matching the condition.
func (r *RepositoryImpl[T]) Avg(ctx context.Context, column string, query string, args ...any) (float64, error) {
	if err := validateColumn(column); err != nil {
		return 0, err
	}

	var result float64
	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if query != "" {
		db = db.Where(query, args...)
	}

	expr := "COALESCE(AVG(" + column + "), 0)"
	if err := db.Model(r.newModelPtr()).Select(expr).Scan(&result).Error; err != nil {
		return 0, errors.FromGorm(err, "failed to average records")
	}

	return result, nil
}

// Max returns the maximum of a column. The concrete type depends on
// what the driver scans (int64/float64/string/[]byte/time.Time). No
// matching rows yields nil.
func (r *RepositoryImpl[T]) Max(ctx context.Context, column string, query string, args ...any) (any, error) {
	return r.extremum(ctx, "MAX", column, query, args...)
}

// Min returns the minimum of a column, nil when no rows match.
func (r *RepositoryImpl[T]) Min(ctx context.Context, column string, query string, args ...any) (any, error) {
	return r.extremum(ctx, "MIN", column, query, args...)
}

func (r *RepositoryImpl[T]) extremum(ctx context.Context, fn, column, query string, args ...any) (any, error) {
	if err := validateColumn(column); err != nil {
		return nil, err
	}

	var result any
	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if query != "" {
		db = db.Where(query, args...)
	}

	row := db.Model(r.newModelPtr()).Select(fn + "(" + column + ")").Row()
	if err := row.Scan(&result); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.FromGorm(err, "failed to aggregate records")
	}

	return result, nil
}

// CountByGroup counts rows per distinct value of groupColumn.
func (r *RepositoryImpl[T]) CountByGroup(ctx context.Context, groupColumn, query string, args ...any) (map[string]int64, error) {
	if err := validateColumn(groupColumn); err != nil {
		return nil, err
	}

	type row struct {
		Group string `gorm:"column:group_column"`
		Count int64
	}

	var rows []row
	db := r.applyOwnerScope(ctx, r.withContext(ctx))

	if query != "" {
		db = db.Where(query, args...)
	}

	expr := groupColumn + " as group_column, COUNT(*) as count"
	if err := db.Model(r.newModelPtr()).
		Select(expr).
		Group(groupColumn).
		Scan(&rows).Error; err != nil {
		return nil, errors.FromGorm(err, "failed to count by group")
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Group] = row.Count
	}

	return result, nil
}
