package service

import (
	"context"
	"testing"
	"time"

	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&model.Account{},
		&model.Transaction{},
		&model.TransactionCategory{},
		&model.Category{},
		&model.Description{},
		&model.Payment{},
		&model.Transfer{},
		&model.ValidationAmount{},
		&model.ReceiptImage{},
		&model.FamilyMember{},
		&model.MedicalProvider{},
		&model.MedicalExpense{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func ownerCtx(owner string) context.Context {
	return repository.WithOwner(context.Background(), repository.OwnerContext{Owner: owner})
}

func newTestDeps(t *testing.T) (*gorm.DB, *validator.Validator, *logger.Logger) {
	t.Helper()
	return openTestDB(t), validator.New(), logger.NewNop()
}

func testDate() time.Time {
	return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
}

func mustCreateAccount(t *testing.T, svc *AccountService, ctx context.Context, name string) *model.Account {
	t.Helper()
	acct, err := svc.Create(ctx, &model.Account{
		AccountNameOwner: name,
		AccountType:      model.AccountTypeDebit,
		Moniker:          "0000",
	})
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return acct
}

func amount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
