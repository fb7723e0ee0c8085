package service

import (
	"testing"
	"time"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
)

func TestProviderDirectoryIsShared(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewMedicalService(db, v, log)

	provider, err := svc.CreateProvider(ownerCtx("janedoe"), &model.MedicalProvider{
		ProviderName: "City General Hospital",
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if provider.ProviderName != "city general hospital" {
		t.Fatalf("expected normalized name, got %q", provider.ProviderName)
	}

	// The directory has no owner column: every tenant reads it.
	got, err := svc.FindProvider(ownerCtx("bob"), provider.ID)
	if err != nil {
		t.Fatalf("find as other owner: %v", err)
	}
	if got.ProviderName != "city general hospital" {
		t.Fatalf("expected shared provider, got %q", got.ProviderName)
	}

	_, err = svc.CreateProvider(ownerCtx("bob"), &model.MedicalProvider{
		ProviderName: "city general hospital",
	})
	if !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestFamilyMemberDuplicatePerOwner(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewMedicalService(db, v, log)
	ctx := ownerCtx("janedoe")

	if _, err := svc.CreateFamilyMember(ctx, &model.FamilyMember{MemberName: "Alex"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateFamilyMember(ctx, &model.FamilyMember{MemberName: "alex"}); !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	// Same name under a different owner is fine.
	if _, err := svc.CreateFamilyMember(ownerCtx("bob"), &model.FamilyMember{MemberName: "alex"}); err != nil {
		t.Fatalf("create under second owner: %v", err)
	}
}

func TestExpenseReferencesAreOwnerScoped(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	svc := NewMedicalService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_brian")
	txn, err := transactions.Record(ctx, &model.Transaction{
		AccountNameOwner: "chase_brian",
		TransactionDate:  testDate(),
		Description:      "pharmacy",
		Amount:           amount("-80.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// Bob cannot attribute an expense to Jane's transaction.
	_, err = svc.CreateExpense(ownerCtx("bob"), &model.MedicalExpense{
		TransactionID: &txn.ID,
		ServiceDate:   testDate(),
		BilledAmount:  amount("80.00"),
	})
	if !errors.Is(err, errors.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}

	expense, err := svc.CreateExpense(ctx, &model.MedicalExpense{
		TransactionID:         &txn.ID,
		ServiceDate:           testDate(),
		BilledAmount:          amount("80.00"),
		PatientResponsibility: amount("20.00"),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if expense.ClaimStatus != model.ClaimStatusSubmitted {
		t.Fatalf("expected default claim status, got %q", expense.ClaimStatus)
	}

	// One expense per transaction.
	_, err = svc.CreateExpense(ctx, &model.MedicalExpense{
		TransactionID: &txn.ID,
		ServiceDate:   testDate(),
	})
	if !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestExpenseProviderMustExist(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewMedicalService(db, v, log)
	ctx := ownerCtx("janedoe")

	missing := int64(99999)
	_, err := svc.CreateExpense(ctx, &model.MedicalExpense{
		ProviderID:  &missing,
		ServiceDate: testDate(),
	})
	if !errors.Is(err, errors.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}

func TestExpenseRecordPayment(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewMedicalService(db, v, log)
	ctx := ownerCtx("janedoe")

	expense, err := svc.CreateExpense(ctx, &model.MedicalExpense{
		ServiceDate:           testDate(),
		BilledAmount:          amount("150.00"),
		PatientResponsibility: amount("50.00"),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	paid := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.RecordPayment(ctx, expense.ID, paid); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	got, err := svc.FindExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ClaimStatus != model.ClaimStatusPaid {
		t.Fatalf("expected paid, got %q", got.ClaimStatus)
	}
	if got.PaidDate == nil || !got.PaidDate.Equal(paid) {
		t.Fatalf("expected paid date %v, got %v", paid, got.PaidDate)
	}

	// Payments on another owner's expense look like a missing row.
	if err := svc.RecordPayment(ownerCtx("bob"), expense.ID, paid); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOutOfPocketTotalScoped(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewMedicalService(db, v, log)
	ctx := ownerCtx("janedoe")

	for _, amt := range []string{"20.00", "35.50"} {
		if _, err := svc.CreateExpense(ctx, &model.MedicalExpense{
			ServiceDate:           testDate(),
			PatientResponsibility: amount(amt),
		}); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}
	if _, err := svc.CreateExpense(ownerCtx("bob"), &model.MedicalExpense{
		ServiceDate:           testDate(),
		PatientResponsibility: amount("500.00"),
	}); err != nil {
		t.Fatalf("create other owner expense: %v", err)
	}

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	total, err := svc.OutOfPocketTotal(ctx, from, to)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(amount("55.50")) {
		t.Fatalf("expected 55.50, got %s", total)
	}
}
