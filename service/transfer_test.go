package service

import (
	"testing"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
)

func TestTransferCreateAmountSigns(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	svc := NewTransferService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "savings_jane")

	transfer, err := svc.Create(ctx, &model.Transfer{
		SourceAccount:      "chase_checking",
		DestinationAccount: "savings_jane",
		TransactionDate:    testDate(),
		Amount:             amount("500.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	source, err := transactions.FindByGUID(ctx, transfer.GUIDSource)
	if err != nil {
		t.Fatalf("find source: %v", err)
	}
	if !source.Amount.Equal(amount("-500.00")) {
		t.Fatalf("source amount: got %s", source.Amount)
	}

	destination, err := transactions.FindByGUID(ctx, transfer.GUIDDestination)
	if err != nil {
		t.Fatalf("find destination: %v", err)
	}
	if !destination.Amount.Equal(amount("500.00")) {
		t.Fatalf("destination amount: got %s", destination.Amount)
	}
}

func TestTransferSameAccountRejected(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewTransferService(db, v, log)

	_, err := svc.Create(ownerCtx("janedoe"), &model.Transfer{
		SourceAccount:      "chase_checking",
		DestinationAccount: "Chase_Checking",
		TransactionDate:    testDate(),
		Amount:             amount("10.00"),
	})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransferDuplicate(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	svc := NewTransferService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "savings_jane")

	tr := model.Transfer{
		SourceAccount:      "chase_checking",
		DestinationAccount: "savings_jane",
		TransactionDate:    testDate(),
		Amount:             amount("500.00"),
	}
	first := tr
	if _, err := svc.Create(ctx, &first); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := tr
	if _, err := svc.Create(ctx, &second); !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestTransferDeleteRemovesTransactions(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	svc := NewTransferService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_checking")
	mustCreateAccount(t, accounts, ctx, "savings_jane")

	transfer, err := svc.Create(ctx, &model.Transfer{
		SourceAccount:      "chase_checking",
		DestinationAccount: "savings_jane",
		TransactionDate:    testDate(),
		Amount:             amount("500.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, transfer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := transactions.FindByGUID(ctx, transfer.GUIDSource); !errors.IsNotFound(err) {
		t.Fatalf("expected source transaction gone, got %v", err)
	}
}
