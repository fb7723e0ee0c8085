package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/fintrack/fintrack/cache/redis"
	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/metrics"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Account Service
 * ========================================================================
 * Account lifecycle, including the two multi-table procedures: rename
 * and deactivation. Both run in a single read-committed transaction
 * with audit side-effects suspended for the cascaded child rewrites,
 * and both serialize across instances through a redis lock when a
 * cache client is wired.
 * ======================================================================== */

// accountNamePattern constrains account natural keys after lowering.
var accountNamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,40}$`)

const totalsCacheTTL = 30 * time.Second

// AccountTotals aggregates transaction amounts by state for one owner.
type AccountTotals struct {
	Cleared     decimal.Decimal `json:"cleared"`
	Future      decimal.Decimal `json:"future"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// AccountService manages accounts.
type AccountService struct {
	db           *gorm.DB
	accounts     repository.Repository[model.Account]
	transactions repository.Repository[model.Transaction]
	cache        *redis.Client
	validate     *validator.Validator
	log          *logger.Logger
}

// NewAccountService creates an AccountService. cache may be nil; the
// rename lock and totals cache degrade to direct operation.
func NewAccountService(db *gorm.DB, cache *redis.Client, v *validator.Validator, log *logger.Logger) *AccountService {
	return &AccountService{
		db:           db,
		accounts:     repository.NewRepository[model.Account](db),
		transactions: repository.NewRepository[model.Transaction](db),
		cache:        cache,
		validate:     v,
		log:          log,
	}
}

// normalizeAccountName lowercases and validates an account natural key.
func normalizeAccountName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !accountNamePattern.MatchString(name) {
		return "", errors.Newf(errors.ErrCodeValidation, "invalid account name: %q", name)
	}
	return name, nil
}

// Create inserts an account after an owner-scoped duplicate check.
func (s *AccountService) Create(ctx context.Context, acct *model.Account) (*model.Account, error) {
	if acct == nil {
		return nil, errors.New(errors.ErrCodeValidation, "account is nil")
	}
	if err := s.validate.Validate(acct); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid account", err)
	}

	name, err := normalizeAccountName(acct.AccountNameOwner)
	if err != nil {
		return nil, err
	}
	acct.AccountNameOwner = name
	if acct.AccountType != "" && !acct.AccountType.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid account type: %q", acct.AccountType)
	}

	err = s.accounts.Execute(ctx, func(txCtx context.Context) error {
		exists, err := s.accounts.Exists(txCtx, "account_name_owner = ?", name)
		if err != nil {
			return err
		}
		if exists {
			return errors.Newf(errors.ErrCodeDuplicate, "account %q already exists", name)
		}
		return s.accounts.Create(txCtx, acct)
	})
	if err != nil {
		return nil, err
	}

	return acct, nil
}

// FindByName finds the owner's account by natural key.
func (s *AccountService) FindByName(ctx context.Context, name string) (*model.Account, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	return s.accounts.FindOne(ctx, "account_name_owner = ?", name)
}

// ListActive lists the owner's active accounts.
func (s *AccountService) ListActive(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.ListActive(ctx, repository.WithOrderBy("account_name_owner ASC"))
}

// Totals aggregates the owner's transaction amounts by state, cached
// briefly per owner.
func (s *AccountService) Totals(ctx context.Context) (*AccountTotals, error) {
	owner, err := repository.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := "totals:" + owner
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var totals AccountTotals
			if err := json.Unmarshal([]byte(raw), &totals); err == nil {
				metrics.CacheHitTotal.WithLabelValues("totals", "true").Inc()
				return &totals, nil
			}
		} else if redis.IsNil(err) {
			metrics.CacheHitTotal.WithLabelValues("totals", "false").Inc()
		}
	}

	totals := &AccountTotals{}
	for _, pair := range []struct {
		state model.TransactionState
		dst   *decimal.Decimal
	}{
		{model.TransactionStateCleared, &totals.Cleared},
		{model.TransactionStateFuture, &totals.Future},
		{model.TransactionStateOutstanding, &totals.Outstanding},
	} {
		sum, err := s.transactions.SumDecimal(ctx, "amount", "transaction_state = ?", pair.state)
		if err != nil {
			return nil, err
		}
		*pair.dst = sum.Round(2)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(totals); err == nil {
			_ = s.cache.Set(ctx, cacheKey, raw, totalsCacheTTL)
		}
	}

	return totals, nil
}

// UpdateValidationDate stamps the account's last statement check.
func (s *AccountService) UpdateValidationDate(ctx context.Context, name string, validatedAt time.Time) error {
	acct, err := s.FindByName(ctx, name)
	if err != nil {
		return err
	}
	return s.accounts.UpdateByID(ctx, acct.ID, map[string]any{
		"validation_date": validatedAt,
	})
}

// Rename changes an account's natural key and rewrites every
// dependent row in one transaction. The child rewrites run under an
// audit suspension so they do not register as user activity; the
// account row itself stays audited. The procedure serializes per
// owner through a redis lock when available.
func (s *AccountService) Rename(ctx context.Context, oldName, newName string) (*model.Account, error) {
	owner, err := repository.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	oldName = strings.ToLower(strings.TrimSpace(oldName))
	newName, err = normalizeAccountName(newName)
	if err != nil {
		return nil, err
	}
	if oldName == newName {
		return nil, errors.New(errors.ErrCodeValidation, "new name equals old name")
	}

	if s.cache != nil {
		lock := s.cache.NewLock("account:rename:" + owner)
		if err := lock.Acquire(ctx); err != nil {
			metrics.AccountRenames.WithLabelValues("conflict").Inc()
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "rename already in progress", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.WithContext(ctx).Warn("rename lock release failed", zap.Error(err))
			}
		}()
	}

	var renamed *model.Account
	err = repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		acct, err := s.accounts.FindOne(txCtx, "account_name_owner = ?", oldName)
		if err != nil {
			return err
		}

		exists, err := s.accounts.Exists(txCtx, "account_name_owner = ?", newName)
		if err != nil {
			return err
		}
		if exists {
			return errors.Newf(errors.ErrCodeDuplicate, "account %q already exists", newName)
		}

		acct.AccountNameOwner = newName
		if err := s.accounts.Update(txCtx, acct); err != nil {
			return err
		}

		tx, ok := repository.TxFromContext(txCtx)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "rename requires a transaction")
		}

		// Cascaded rewrites: silent, timestamps untouched, scoped to
		// this transaction. Release is deferred so auditing is restored
		// on every exit path.
		susp := repository.SuspendAudit(tx)
		defer susp.Release()

		rewrites := []struct {
			mdl     any
			query   string
			updates map[string]any
		}{
			{&model.Transaction{}, "owner = ? AND account_name_owner = ?", map[string]any{"account_name_owner": newName}},
			{&model.Payment{}, "owner = ? AND source_account = ?", map[string]any{"source_account": newName}},
			{&model.Payment{}, "owner = ? AND destination_account = ?", map[string]any{"destination_account": newName}},
			{&model.Transfer{}, "owner = ? AND source_account = ?", map[string]any{"source_account": newName}},
			{&model.Transfer{}, "owner = ? AND destination_account = ?", map[string]any{"destination_account": newName}},
		}
		for _, rw := range rewrites {
			if _, err := susp.UpdateColumns(rw.mdl, rw.query, []any{owner, oldName}, rw.updates); err != nil {
				return errors.FromGorm(err, "failed to rewrite dependent rows")
			}
		}

		renamed = acct
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		if !errors.Is(err, errors.ErrDuplicate) && !errors.Is(err, errors.ErrNotFound) {
			metrics.AccountRenames.WithLabelValues("error").Inc()
		} else {
			metrics.AccountRenames.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	metrics.AccountRenames.WithLabelValues("ok").Inc()
	s.log.WithContext(ctx).Info("account renamed",
		zap.String("owner", owner),
		zap.String("old_name", oldName),
		zap.String("new_name", newName),
	)
	return renamed, nil
}

// Deactivate clears the active flag on an account and all of its
// transactions in one transaction. The child flag-clears run under an
// audit suspension; the account row itself stays audited.
func (s *AccountService) Deactivate(ctx context.Context, name string) error {
	owner, err := repository.RequireOwner(ctx)
	if err != nil {
		return err
	}
	name = strings.ToLower(strings.TrimSpace(name))

	if s.cache != nil {
		lock := s.cache.NewLock("account:rename:" + owner)
		if err := lock.Acquire(ctx); err != nil {
			metrics.AccountDeactivations.WithLabelValues("conflict").Inc()
			return errors.Wrap(errors.ErrCodeUnavailable, "account maintenance already in progress", err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.WithContext(ctx).Warn("deactivate lock release failed", zap.Error(err))
			}
		}()
	}

	err = repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		acct, err := s.accounts.FindOne(txCtx, "account_name_owner = ?", name)
		if err != nil {
			return err
		}

		if err := s.accounts.Deactivate(txCtx, acct.ID); err != nil {
			return err
		}

		tx, ok := repository.TxFromContext(txCtx)
		if !ok {
			return errors.New(errors.ErrCodeInternal, "deactivate requires a transaction")
		}

		susp := repository.SuspendAudit(tx)
		defer susp.Release()

		if _, err := susp.UpdateColumns(&model.Transaction{},
			"owner = ? AND account_name_owner = ?", []any{owner, name},
			map[string]any{"active_status": false}); err != nil {
			return errors.FromGorm(err, "failed to deactivate dependent rows")
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		metrics.AccountDeactivations.WithLabelValues("error").Inc()
		return err
	}

	metrics.AccountDeactivations.WithLabelValues("ok").Inc()
	s.log.WithContext(ctx).Info("account deactivated",
		zap.String("owner", owner),
		zap.String("account", name),
	)
	return nil
}
