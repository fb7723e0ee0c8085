package service

import (
	"testing"
	"time"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
)

func TestValidationAmountStampsAccount(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewValidationAmountService(db, v, log)
	ctx := ownerCtx("janedoe")

	acct := mustCreateAccount(t, accounts, ctx, "chase_brian")

	when := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	va, err := svc.Create(ctx, &model.ValidationAmount{
		AccountID:        acct.ID,
		ValidationDate:   when,
		TransactionState: model.TransactionStateCleared,
		Amount:           amount("1234.56"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if va.Owner != "janedoe" {
		t.Fatalf("expected owner janedoe, got %q", va.Owner)
	}

	got, err := accounts.FindByName(ctx, "chase_brian")
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if got.ValidationDate == nil || !got.ValidationDate.Equal(when) {
		t.Fatalf("expected stamped validation date, got %v", got.ValidationDate)
	}

	latest, err := svc.FindLatest(ctx, acct.ID)
	if err != nil {
		t.Fatalf("find latest: %v", err)
	}
	if !latest.Amount.Equal(amount("1234.56")) {
		t.Fatalf("expected amount 1234.56, got %s", latest.Amount)
	}
}

func TestValidationAmountLatestWins(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewValidationAmountService(db, v, log)
	ctx := ownerCtx("janedoe")

	acct := mustCreateAccount(t, accounts, ctx, "chase_brian")

	for i, amt := range []string{"100.00", "200.00"} {
		when := time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC)
		if _, err := svc.Create(ctx, &model.ValidationAmount{
			AccountID:      acct.ID,
			ValidationDate: when,
			Amount:         amount(amt),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	latest, err := svc.FindLatest(ctx, acct.ID)
	if err != nil {
		t.Fatalf("find latest: %v", err)
	}
	if !latest.Amount.Equal(amount("200.00")) {
		t.Fatalf("expected latest amount 200.00, got %s", latest.Amount)
	}
}

func TestValidationAmountCrossOwner(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewValidationAmountService(db, v, log)

	acct := mustCreateAccount(t, accounts, ownerCtx("janedoe"), "chase_jane")

	_, err := svc.Create(ownerCtx("bob"), &model.ValidationAmount{
		AccountID:      acct.ID,
		ValidationDate: testDate(),
		Amount:         amount("10.00"),
	})
	if !errors.Is(err, errors.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}
