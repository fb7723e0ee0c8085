package service

import (
	"testing"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
)

func TestPaymentCreateGeneratesTransactions(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	svc := NewPaymentService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "visa_credit")

	payment, err := svc.Create(ctx, &model.Payment{
		SourceAccount:      "chase_checking",
		DestinationAccount: "visa_credit",
		TransactionDate:    testDate(),
		Amount:             amount("250.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.GUIDSource == "" || payment.GUIDDestination == "" {
		t.Fatalf("expected generated guids")
	}

	source, err := transactions.FindByGUID(ctx, payment.GUIDSource)
	if err != nil {
		t.Fatalf("find source: %v", err)
	}
	if source.AccountNameOwner != "chase_checking" || !source.Amount.Equal(amount("-250.00")) {
		t.Fatalf("unexpected source transaction: %s %s", source.AccountNameOwner, source.Amount)
	}

	// Paying down a credit account reduces its balance too.
	destination, err := transactions.FindByGUID(ctx, payment.GUIDDestination)
	if err != nil {
		t.Fatalf("find destination: %v", err)
	}
	if destination.AccountNameOwner != "visa_credit" || !destination.Amount.Equal(amount("-250.00")) {
		t.Fatalf("unexpected destination transaction: %s %s", destination.AccountNameOwner, destination.Amount)
	}
}

func TestPaymentRequiresBothAccounts(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewPaymentService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")

	_, err := svc.Create(ctx, &model.Payment{
		SourceAccount:      "chase_checking",
		DestinationAccount: "no_such_card",
		TransactionDate:    testDate(),
		Amount:             amount("10.00"),
	})
	if !errors.Is(err, errors.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}

func TestPaymentAccountsAreOwnerScoped(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewPaymentService(db, v, log)

	mustCreateAccount(t, accounts, ownerCtx("janedoe"), "chase_jane")
	mustCreateAccount(t, accounts, ownerCtx("bob"), "visa_bob")

	// Jane cannot pay into Bob's account.
	_, err := svc.Create(ownerCtx("janedoe"), &model.Payment{
		SourceAccount:      "chase_jane",
		DestinationAccount: "visa_bob",
		TransactionDate:    testDate(),
		Amount:             amount("10.00"),
	})
	if !errors.Is(err, errors.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
}

func TestPaymentDuplicate(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewPaymentService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "visa_credit")

	p := model.Payment{
		SourceAccount:      "chase_checking",
		DestinationAccount: "visa_credit",
		TransactionDate:    testDate(),
		Amount:             amount("250.00"),
	}
	first := p
	if _, err := svc.Create(ctx, &first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := p
	if _, err := svc.Create(ctx, &second); !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestPaymentDeleteRemovesTransactions(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	svc := NewPaymentService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "visa_credit")

	payment, err := svc.Create(ctx, &model.Payment{
		SourceAccount:      "chase_checking",
		DestinationAccount: "visa_credit",
		TransactionDate:    testDate(),
		Amount:             amount("250.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, payment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := transactions.FindByGUID(ctx, payment.GUIDSource); !errors.IsNotFound(err) {
		t.Fatalf("expected source transaction gone, got %v", err)
	}
	if _, err := transactions.FindByGUID(ctx, payment.GUIDDestination); !errors.IsNotFound(err) {
		t.Fatalf("expected destination transaction gone, got %v", err)
	}

	payments, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected no payments, got %d", len(payments))
	}
}
