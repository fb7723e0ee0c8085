package repository

import "testing"

func TestValidateOrderBy(t *testing.T) {
	valid := []string{
		"",
		"name",
		"name ASC",
		"date_added DESC",
		"accounts.date_added DESC",
		"name ASC, date_added DESC",
	}
	for _, v := range valid {
		if err := ValidateOrderBy(v); err != nil {
			t.Fatalf("expected %q to be valid: %v", v, err)
		}
	}

	invalid := []string{
		"name; DROP TABLE accounts",
		"name ASC, (SELECT 1)",
		"name SIDEWAYS",
		"name ASC extra",
		"1=1 UNION SELECT",
	}
	for _, v := range invalid {
		if err := ValidateOrderBy(v); err == nil {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
}

func TestValidateSelect(t *testing.T) {
	if err := ValidateSelect([]string{"id", "name", "COUNT(*)", "SUM(amount)"}); err != nil {
		t.Fatalf("expected valid select: %v", err)
	}

	if err := ValidateSelect([]string{"name; --"}); err == nil {
		t.Fatalf("expected comment marker to be rejected")
	}
	if err := ValidateSelect([]string{"name, password FROM users"}); err == nil {
		t.Fatalf("expected compound select to be rejected")
	}
}

func TestValidateJoins(t *testing.T) {
	ok := "LEFT JOIN transactions ON transactions.account_id = accounts.id"
	if err := ValidateJoins([]string{ok}); err != nil {
		t.Fatalf("expected valid join: %v", err)
	}

	bad := []string{
		"transactions",
		"LEFT JOIN transactions",
		"LEFT JOIN transactions ON 1=1; DROP TABLE accounts",
	}
	for _, j := range bad {
		if err := ValidateJoins([]string{j}); err == nil {
			t.Fatalf("expected %q to be rejected", j)
		}
	}
}

func TestValidateColumnAllowsAuditColumns(t *testing.T) {
	// Word-boundary matching must not trip on column names that embed
	// keyword substrings.
	for _, col := range []string{"date_updated", "deleted", "created_by"} {
		if err := ValidateOrderBy(col + " ASC"); err != nil {
			t.Fatalf("expected %q to be valid: %v", col, err)
		}
	}
}
