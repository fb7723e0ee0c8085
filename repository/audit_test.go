package repository

import (
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestAuditSuspensionLeavesTimestampsUntouched(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[ownedTestModel](db)
	ctx := ownerCtx("alice")

	m := &ownedTestModel{Name: "before"}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	orig, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	err = db.Transaction(func(tx *gorm.DB) error {
		susp := SuspendAudit(tx)
		defer susp.Release()

		n, err := susp.UpdateColumns(&ownedTestModel{},
			"owner = ? AND name = ?", []any{"alice", "before"},
			map[string]any{"name": "after"})
		if err != nil {
			return err
		}
		if n != 1 {
			t.Fatalf("expected 1 row rewritten, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	got, err := repo.FindByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("find after rewrite: %v", err)
	}
	if got.Name != "after" {
		t.Fatalf("expected rewrite to apply, got %q", got.Name)
	}
	if !got.DateUpdated.Equal(orig.DateUpdated) {
		t.Fatalf("date_updated moved during suspension: %v -> %v",
			orig.DateUpdated, got.DateUpdated)
	}
}

func TestAuditSuspensionReleaseIsFinal(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[ownedTestModel](db)
	ctx := ownerCtx("alice")

	if err := repo.Create(ctx, &ownedTestModel{Name: "row"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		susp := SuspendAudit(tx)
		susp.Release()
		susp.Release() // idempotent

		if !susp.Released() {
			t.Fatalf("expected suspension to report released")
		}

		_, err := susp.UpdateColumns(&ownedTestModel{},
			"owner = ?", []any{"alice"},
			map[string]any{"name": "late"})
		if err == nil {
			t.Fatalf("expected write after release to fail")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	// The late write must not have landed.
	ok, err := repo.Exists(ctx, "name = ?", "late")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("write landed after release")
	}
}
