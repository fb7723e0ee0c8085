package service

import (
	"context"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Validation Amount Service
 * ========================================================================
 * A validation amount is a statement checkpoint: the recorded balance
 * at a point in time. Creating one also stamps the account's
 * validation date, in the same transaction.
 * ======================================================================== */

// ValidationAmountService manages statement checkpoints.
type ValidationAmountService struct {
	db          *gorm.DB
	validations repository.Repository[model.ValidationAmount]
	accounts    repository.Repository[model.Account]
	validate    *validator.Validator
	log         *logger.Logger
}

// NewValidationAmountService creates a ValidationAmountService.
func NewValidationAmountService(db *gorm.DB, v *validator.Validator, log *logger.Logger) *ValidationAmountService {
	return &ValidationAmountService{
		db:          db,
		validations: repository.NewRepository[model.ValidationAmount](db),
		accounts:    repository.NewRepository[model.Account](db),
		validate:    v,
		log:         log,
	}
}

// Create records a validation amount against one of the owner's
// accounts and stamps the account's validation date.
func (s *ValidationAmountService) Create(ctx context.Context, va *model.ValidationAmount) (*model.ValidationAmount, error) {
	if va == nil {
		return nil, errors.New(errors.ErrCodeValidation, "validation amount is nil")
	}
	if err := s.validate.Validate(va); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid validation amount", err)
	}
	if va.TransactionState != "" && !va.TransactionState.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid transaction state: %q", va.TransactionState)
	}
	if va.ValidationDate.IsZero() {
		return nil, errors.New(errors.ErrCodeValidation, "validation date is required")
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		if _, err := repository.ResolveParentOwner(txCtx, s.accounts, "id = ?", va.AccountID); err != nil {
			return err
		}
		if err := s.validations.Create(txCtx, va); err != nil {
			return err
		}
		return s.accounts.UpdateByID(txCtx, va.AccountID, map[string]any{
			"validation_date": va.ValidationDate,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("validation amount recorded",
		zap.Int64("account_id", va.AccountID),
		zap.Time("validation_date", va.ValidationDate),
	)
	return va, nil
}

// FindLatest returns the newest validation amount for an account.
func (s *ValidationAmountService) FindLatest(ctx context.Context, accountID int64) (*model.ValidationAmount, error) {
	return s.validations.FindOneWithOpts(ctx,
		"account_id = ?",
		[]repository.Option{repository.WithOrderBy("validation_date DESC")},
		accountID)
}

// List lists an account's validation amounts, newest first.
func (s *ValidationAmountService) List(ctx context.Context, accountID int64) ([]*model.ValidationAmount, error) {
	return s.validations.FindByQueryWithOpts(ctx,
		"account_id = ?",
		[]repository.Option{repository.WithOrderBy("validation_date DESC")},
		accountID)
}
