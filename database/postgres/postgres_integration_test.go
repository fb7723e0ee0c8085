//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/fintrack/fintrack/database"
	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestNewDBIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skip integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fintrack"),
		tcpostgres.WithUsername("fintrack"),
		tcpostgres.WithPassword("fintrack"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	db, err := NewDB(Config{
		Host:     host,
		Port:     mapped.Int(),
		User:     "fintrack",
		Password: "fintrack",
		DBName:   "fintrack",
		SSLMode:  "disable",
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := database.Migrate(ctx, db, logger.NewNop().Logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	accounts := repository.NewRepository[model.Account](db)
	janeCtx := repository.WithOwner(ctx, repository.OwnerContext{Owner: "janedoe"})
	bobCtx := repository.WithOwner(ctx, repository.OwnerContext{Owner: "bob"})

	jane := &model.Account{AccountNameOwner: "chase_shared", AccountType: model.AccountTypeDebit, Moniker: "0000"}
	if err := accounts.Create(janeCtx, jane); err != nil {
		t.Fatalf("create jane account: %v", err)
	}

	// The uniqueness constraint is compound on owner: the same natural
	// key under a second owner must insert cleanly.
	bob := &model.Account{AccountNameOwner: "chase_shared", AccountType: model.AccountTypeDebit, Moniker: "0000"}
	if err := accounts.Create(bobCtx, bob); err != nil {
		t.Fatalf("create bob account: %v", err)
	}

	// A second insert under the same owner violates it.
	dup := &model.Account{AccountNameOwner: "chase_shared"}
	if err := accounts.Create(janeCtx, dup); !errors.IsDuplicate(err) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	// Cross-owner lookups are indistinguishable from absence.
	if _, err := accounts.FindByID(bobCtx, jane.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
