package service

import (
	"context"
	"testing"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
)

func TestAccountCreateAndDuplicate(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewAccountService(db, nil, v, log)
	ctx := ownerCtx("janedoe")

	acct := mustCreateAccount(t, svc, ctx, "chase_brian")
	if acct.Owner != "janedoe" {
		t.Fatalf("expected owner janedoe, got %q", acct.Owner)
	}

	_, err := svc.Create(ctx, &model.Account{AccountNameOwner: "Chase_Brian"})
	if !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	// Same name under a different owner is fine.
	if _, err := svc.Create(ownerCtx("bob"), &model.Account{AccountNameOwner: "chase_brian"}); err != nil {
		t.Fatalf("create under second owner: %v", err)
	}
}

func TestAccountCreateRejectsBadName(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewAccountService(db, nil, v, log)

	_, err := svc.Create(ownerCtx("janedoe"), &model.Account{AccountNameOwner: "has space"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAccountRenameCascades(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_old")
	mustCreateAccount(t, accounts, ctx, "savings_jane")

	txn, err := transactions.Record(ctx, &model.Transaction{
		AccountNameOwner: "chase_old",
		TransactionDate:  testDate(),
		Description:      "grocery store",
		Category:         "groceries",
		Amount:           amount("-42.50"),
		TransactionState: model.TransactionStateCleared,
		TransactionType:  model.TransactionTypeExpense,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	paymentRepo := repository.NewRepository[model.Payment](db)
	payment := &model.Payment{
		SourceAccount:      "chase_old",
		DestinationAccount: "savings_jane",
		TransactionDate:    testDate(),
		Amount:             amount("100.00"),
		GUIDSource:         "a",
		GUIDDestination:    "b",
	}
	if err := paymentRepo.Create(ctx, payment); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	renamed, err := accounts.Rename(ctx, "chase_old", "chase_new")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.AccountNameOwner != "chase_new" {
		t.Fatalf("expected chase_new, got %q", renamed.AccountNameOwner)
	}

	txnRepo := repository.NewRepository[model.Transaction](db)
	got, err := txnRepo.FindByID(ctx, txn.ID)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if got.AccountNameOwner != "chase_new" {
		t.Fatalf("expected rewritten transaction, got %q", got.AccountNameOwner)
	}
	// The cascaded rewrite is silent: the audit timestamp stays put.
	if !got.DateUpdated.Equal(txn.DateUpdated) {
		t.Fatalf("expected untouched date_updated, got %v want %v", got.DateUpdated, txn.DateUpdated)
	}

	gotPayment, err := paymentRepo.FindByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("find payment: %v", err)
	}
	if gotPayment.SourceAccount != "chase_new" {
		t.Fatalf("expected rewritten payment source, got %q", gotPayment.SourceAccount)
	}

	if _, err := accounts.FindByName(ctx, "chase_old"); !errors.IsNotFound(err) {
		t.Fatalf("expected old name gone, got %v", err)
	}
}

func TestAccountRenameTargetExists(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewAccountService(db, nil, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, svc, ctx, "chase_old")
	mustCreateAccount(t, svc, ctx, "chase_new")

	_, err := svc.Rename(ctx, "chase_old", "chase_new")
	if !errors.Is(err, errors.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestAccountRenameLeavesOtherOwnersRows(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	alice := ownerCtx("alice")
	bob := ownerCtx("bob")

	// Both owners hold an account under the same natural key.
	mustCreateAccount(t, accounts, alice, "checking_a")
	mustCreateAccount(t, accounts, bob, "checking_a")

	record := func(ctx context.Context, note string) *model.Transaction {
		txn, err := transactions.Record(ctx, &model.Transaction{
			AccountNameOwner: "checking_a",
			TransactionDate:  testDate(),
			Description:      "entry",
			Amount:           amount("-10.00"),
			Notes:            note,
		})
		if err != nil {
			t.Fatalf("record %s: %v", note, err)
		}
		return txn
	}
	aliceTxn := record(alice, "alice")
	bobTxn := record(bob, "bob")

	if _, err := accounts.Rename(alice, "checking_a", "checking_b"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	txnRepo := repository.NewRepository[model.Transaction](db)
	got, err := txnRepo.FindByID(alice, aliceTxn.ID)
	if err != nil {
		t.Fatalf("find alice transaction: %v", err)
	}
	if got.AccountNameOwner != "checking_b" {
		t.Fatalf("expected alice's transaction rewritten, got %q", got.AccountNameOwner)
	}

	// The rename is owner-scoped: bob's rows keep the shared name.
	got, err = txnRepo.FindByID(bob, bobTxn.ID)
	if err != nil {
		t.Fatalf("find bob transaction: %v", err)
	}
	if got.AccountNameOwner != "checking_a" {
		t.Fatalf("expected bob's transaction untouched, got %q", got.AccountNameOwner)
	}
	if _, err := accounts.FindByName(bob, "checking_a"); err != nil {
		t.Fatalf("expected bob's account intact, got %v", err)
	}
	if _, err := accounts.FindByName(bob, "checking_b"); !errors.IsNotFound(err) {
		t.Fatalf("expected checking_b invisible to bob, got %v", err)
	}
}

func TestAccountRenameCrossOwnerIsNotFound(t *testing.T) {
	db, v, log := newTestDeps(t)
	svc := NewAccountService(db, nil, v, log)

	mustCreateAccount(t, svc, ownerCtx("janedoe"), "chase_jane")

	_, err := svc.Rename(ownerCtx("bob"), "chase_jane", "chase_bob")
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAccountDeactivateCascades(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_brian")
	txn, err := transactions.Record(ctx, &model.Transaction{
		AccountNameOwner: "chase_brian",
		TransactionDate:  testDate(),
		Description:      "coffee",
		Amount:           amount("-4.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := accounts.Deactivate(ctx, "chase_brian"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	acct, err := accounts.FindByName(ctx, "chase_brian")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if acct.ActiveStatus {
		t.Fatalf("expected inactive account")
	}

	txnRepo := repository.NewRepository[model.Transaction](db)
	got, err := txnRepo.FindByID(ctx, txn.ID)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if got.ActiveStatus {
		t.Fatalf("expected inactive transaction")
	}
	if !got.DateUpdated.Equal(txn.DateUpdated) {
		t.Fatalf("expected untouched date_updated on cascade")
	}
}

func TestAccountTotals(t *testing.T) {
	db, v, log := newTestDeps(t)
	accounts := NewAccountService(db, nil, v, log)
	transactions := NewTransactionService(db, v, log)
	ctx := ownerCtx("janedoe")

	mustCreateAccount(t, accounts, ctx, "chase_brian")
	for _, tc := range []struct {
		amt   string
		state model.TransactionState
		note  string
	}{
		{"-10.00", model.TransactionStateCleared, "a"},
		{"-5.50", model.TransactionStateCleared, "b"},
		{"20.00", model.TransactionStateFuture, "c"},
		{"-3.25", model.TransactionStateOutstanding, "d"},
	} {
		if _, err := transactions.Record(ctx, &model.Transaction{
			AccountNameOwner: "chase_brian",
			TransactionDate:  testDate(),
			Description:      "entry",
			Amount:           amount(tc.amt),
			TransactionState: tc.state,
			Notes:            tc.note,
		}); err != nil {
			t.Fatalf("record %s: %v", tc.amt, err)
		}
	}

	// Another owner's rows must not leak into the totals.
	other := ownerCtx("bob")
	mustCreateAccount(t, accounts, other, "chase_bob")
	if _, err := transactions.Record(other, &model.Transaction{
		AccountNameOwner: "chase_bob",
		TransactionDate:  testDate(),
		Description:      "entry",
		Amount:           amount("-999.00"),
		TransactionState: model.TransactionStateCleared,
	}); err != nil {
		t.Fatalf("record other owner: %v", err)
	}

	totals, err := accounts.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Cleared.Equal(amount("-15.50")) {
		t.Fatalf("cleared: got %s", totals.Cleared)
	}
	if !totals.Future.Equal(amount("20.00")) {
		t.Fatalf("future: got %s", totals.Future)
	}
	if !totals.Outstanding.Equal(amount("-3.25")) {
		t.Fatalf("outstanding: got %s", totals.Outstanding)
	}
}
