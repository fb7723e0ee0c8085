package repository

import (
	"fmt"
	"regexp"
	"strings"
)

/* ========================================================================
 * SQL Fragment Validation
 * ========================================================================
 * OrderBy/Select/Joins options carry raw SQL fragments. They are
 * validated with an identifier whitelist plus a keyword blacklist
 * before reaching the query builder.
 * ======================================================================== */

var (
	// columnPattern: column, table.column, or either with an AS alias.
	columnPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?(\s+AS\s+[a-zA-Z_][a-zA-Z0-9_]*)?$`)

	orderDirections = map[string]bool{
		"ASC":  true,
		"DESC": true,
		"asc":  true,
		"desc": true,
	}

	dangerousKeywords = []string{
		"DROP", "DELETE", "UPDATE", "INSERT", "TRUNCATE", "ALTER", "CREATE",
		"GRANT", "REVOKE", "EXEC", "EXECUTE", "UNION", "INTO", "OUTFILE",
		"LOAD_FILE", "DUMPFILE", "--", "/*", "*/", ";", "SLEEP", "BENCHMARK",
	}
)

// ValidationError reports a rejected SQL fragment.
type ValidationError struct {
	Field   string // OrderBy/Select/Joins
	Value   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("SQL validation failed for %s: %s (value: %s, reason: %s)",
		e.Field, e.Message, e.Value, e.Reason)
}

// ValidateOrderBy validates an ordering expression.
//
// Accepted forms:
//   - "column ASC"
//   - "column DESC"
//   - "table.column ASC"
//   - "col1 ASC, col2 DESC"
func ValidateOrderBy(orderBy string) error {
	if strings.TrimSpace(orderBy) == "" {
		return nil
	}

	if err := checkDangerousKeywords(orderBy, "OrderBy"); err != nil {
		return err
	}

	parts := strings.Split(orderBy, ",")
	for _, part := range parts {
		if err := validateSingleOrderBy(strings.TrimSpace(part)); err != nil {
			return err
		}
	}

	return nil
}

func validateSingleOrderBy(orderBy string) error {
	if orderBy == "" {
		return nil
	}

	fields := strings.Fields(orderBy)
	if len(fields) == 0 || len(fields) > 2 {
		return &ValidationError{
			Field:   "OrderBy",
			Value:   orderBy,
			Reason:  "invalid_format",
			Message: "must be 'column' or 'column ASC/DESC'",
		}
	}

	column := fields[0]
	if err := validateColumnName(column); err != nil {
		return &ValidationError{
			Field:   "OrderBy",
			Value:   orderBy,
			Reason:  "invalid_column",
			Message: err.Error(),
		}
	}

	if len(fields) == 2 {
		direction := fields[1]
		if !orderDirections[direction] {
			return &ValidationError{
				Field:   "OrderBy",
				Value:   orderBy,
				Reason:  "invalid_direction",
				Message: fmt.Sprintf("direction must be ASC or DESC, got: %s", direction),
			}
		}
	}

	return nil
}

// ValidateSelect validates selected columns. Aggregate function calls
// (COUNT(*), SUM(amount)) are allowed.
func ValidateSelect(selects []string) error {
	if len(selects) == 0 {
		return nil
	}

	for _, sel := range selects {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}

		if err := checkDangerousKeywords(sel, "Select"); err != nil {
			return err
		}

		if isAggregateFunction(sel) {
			continue
		}

		if err := validateColumnName(sel); err != nil {
			return &ValidationError{
				Field:   "Select",
				Value:   sel,
				Reason:  "invalid_column",
				Message: err.Error(),
			}
		}
	}

	return nil
}

// ValidateJoins validates JOIN clauses.
//
// Accepted form:
//   - "LEFT JOIN transactions ON transactions.account_id = accounts.id"
func ValidateJoins(joins []string) error {
	if len(joins) == 0 {
		return nil
	}

	for _, join := range joins {
		join = strings.TrimSpace(join)
		if join == "" {
			continue
		}

		if err := checkDangerousKeywords(join, "Joins"); err != nil {
			return err
		}

		if err := validateJoinSyntax(join); err != nil {
			return err
		}
	}

	return nil
}

func validateColumnName(column string) error {
	col := strings.TrimSpace(column)
	if col == "" {
		return fmt.Errorf("column name cannot be empty")
	}

	if !columnPattern.MatchString(col) {
		return fmt.Errorf("column name contains invalid characters: %s", col)
	}

	return nil
}

func validateJoinSyntax(join string) error {
	upperJoin := strings.ToUpper(join)

	if !strings.Contains(upperJoin, "JOIN") {
		return &ValidationError{
			Field:   "Joins",
			Value:   join,
			Reason:  "missing_join_keyword",
			Message: "must contain JOIN keyword",
		}
	}

	if !strings.Contains(upperJoin, " ON ") {
		return &ValidationError{
			Field:   "Joins",
			Value:   join,
			Reason:  "missing_on_clause",
			Message: "must contain ON clause",
		}
	}

	validJoinTypes := []string{"INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "FULL JOIN", "CROSS JOIN", "JOIN"}
	hasValidType := false
	for _, jt := range validJoinTypes {
		if strings.Contains(upperJoin, jt) {
			hasValidType = true
			break
		}
	}

	if !hasValidType {
		return &ValidationError{
			Field:   "Joins",
			Value:   join,
			Reason:  "invalid_join_type",
			Message: "must use valid JOIN type (INNER/LEFT/RIGHT/FULL/CROSS)",
		}
	}

	return nil
}

// checkDangerousKeywords rejects fragments containing DDL/DML keywords
// or comment markers. Word-boundary matching keeps legitimate column
// names like date_updated out of trouble.
func checkDangerousKeywords(value, field string) error {
	upperValue := strings.ToUpper(value)

	for _, keyword := range dangerousKeywords {
		if isKeywordMatch(upperValue, keyword) {
			return &ValidationError{
				Field:   field,
				Value:   value,
				Reason:  "dangerous_keyword",
				Message: fmt.Sprintf("contains dangerous keyword: %s", keyword),
			}
		}
	}

	return nil
}

func isKeywordMatch(text, keyword string) bool {
	if keyword == "--" || keyword == "/*" || keyword == "*/" || keyword == ";" {
		return strings.Contains(text, keyword)
	}

	idx := strings.Index(text, keyword)
	if idx == -1 {
		return false
	}

	if idx > 0 && isWordChar(text[idx-1]) {
		return false
	}

	endIdx := idx + len(keyword)
	if endIdx < len(text) && isWordChar(text[endIdx]) {
		return false
	}

	return true
}

func isWordChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') || c == '_'
}

func isAggregateFunction(sel string) bool {
	upperSel := strings.ToUpper(strings.TrimSpace(sel))

	aggregateFuncs := []string{"COUNT(", "SUM(", "AVG(", "MAX(", "MIN(", "GROUP_CONCAT("}
	for _, fn := range aggregateFuncs {
		if strings.HasPrefix(upperSel, fn) {
			return true
		}
	}

	return false
}
