package service

import (
	"context"
	"strings"

	"github.com/fintrack/fintrack/database"
	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/metrics"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Transaction Service
 * ========================================================================
 * Ledger entries plus their satellites: category links (derived
 * owner), receipt images, lookup row upkeep.
 * ======================================================================== */

// TransactionService manages transactions.
type TransactionService struct {
	db           *gorm.DB
	transactions repository.Repository[model.Transaction]
	accounts     repository.Repository[model.Account]
	categories   repository.Repository[model.Category]
	descriptions repository.Repository[model.Description]
	links        repository.Repository[model.TransactionCategory]
	receipts     repository.Repository[model.ReceiptImage]
	validate     *validator.Validator
	log          *logger.Logger
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(db *gorm.DB, v *validator.Validator, log *logger.Logger) *TransactionService {
	return &TransactionService{
		db:           db,
		transactions: repository.NewRepository[model.Transaction](db),
		accounts:     repository.NewRepository[model.Account](db),
		categories:   repository.NewRepository[model.Category](db),
		descriptions: repository.NewRepository[model.Description](db),
		links:        repository.NewRepository[model.TransactionCategory](db),
		receipts:     repository.NewRepository[model.ReceiptImage](db),
		validate:     v,
		log:          log,
	}
}

// Record inserts a transaction. The referenced account must exist for
// this owner, the seven-column dedup key must be free, and the
// category/description lookup rows are created on first use.
func (s *TransactionService) Record(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if txn == nil {
		return nil, errors.New(errors.ErrCodeValidation, "transaction is nil")
	}
	if err := s.validate.Validate(txn); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid transaction", err)
	}
	if txn.TransactionState != "" && !txn.TransactionState.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid transaction state: %q", txn.TransactionState)
	}
	if txn.TransactionType != "" && !txn.TransactionType.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid transaction type: %q", txn.TransactionType)
	}

	txn.AccountNameOwner = strings.ToLower(strings.TrimSpace(txn.AccountNameOwner))
	txn.Description = strings.ToLower(strings.TrimSpace(txn.Description))
	txn.Category = strings.ToLower(strings.TrimSpace(txn.Category))

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		accountExists, err := s.accounts.Exists(txCtx, "account_name_owner = ?", txn.AccountNameOwner)
		if err != nil {
			return err
		}
		if !accountExists {
			return errors.Newf(errors.ErrCodeReferentialIntegrity,
				"account %q does not exist", txn.AccountNameOwner)
		}

		dup, err := s.transactions.Exists(txCtx,
			"account_name_owner = ? AND transaction_date = ? AND description = ? AND category = ? AND amount = ? AND notes = ?",
			txn.AccountNameOwner, txn.TransactionDate, txn.Description, txn.Category, txn.Amount, txn.Notes)
		if err != nil {
			return err
		}
		if dup {
			return errors.New(errors.ErrCodeDuplicate, "transaction already recorded")
		}

		if err := s.ensureLookups(txCtx, txn.Category, txn.Description); err != nil {
			return err
		}

		return s.transactions.Create(txCtx, txn)
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionsRecorded.WithLabelValues(string(txn.TransactionType)).Inc()
	return txn, nil
}

// ensureLookups creates missing category/description rows for this
// owner. First use of a value registers it.
func (s *TransactionService) ensureLookups(ctx context.Context, category, description string) error {
	if category != "" {
		exists, err := s.categories.Exists(ctx, "category_name = ?", category)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.categories.Create(ctx, &model.Category{CategoryName: category}); err != nil {
				return err
			}
		}
	}
	if description != "" {
		exists, err := s.descriptions.Exists(ctx, "description_name = ?", description)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.descriptions.Create(ctx, &model.Description{DescriptionName: description}); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindByGUID finds the owner's transaction by GUID.
func (s *TransactionService) FindByGUID(ctx context.Context, guid string) (*model.Transaction, error) {
	return s.transactions.FindOne(ctx, "guid = ?", guid)
}

// ListByAccount lists the owner's transactions for one account,
// newest first.
func (s *TransactionService) ListByAccount(ctx context.Context, accountNameOwner string) ([]*model.Transaction, error) {
	accountNameOwner = strings.ToLower(strings.TrimSpace(accountNameOwner))
	return s.transactions.FindByQueryWithOpts(ctx,
		"account_name_owner = ?",
		[]repository.Option{repository.WithOrderBy("transaction_date DESC")},
		accountNameOwner)
}

// Update saves changes to an existing transaction.
func (s *TransactionService) Update(ctx context.Context, txn *model.Transaction) error {
	if txn == nil {
		return errors.New(errors.ErrCodeValidation, "transaction is nil")
	}
	if err := s.validate.Validate(txn); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "invalid transaction", err)
	}
	return s.transactions.Update(ctx, txn)
}

// ChangeState moves a transaction to a new lifecycle state.
func (s *TransactionService) ChangeState(ctx context.Context, guid string, state model.TransactionState) error {
	if !state.Valid() {
		return errors.Newf(errors.ErrCodeValidation, "invalid transaction state: %q", state)
	}

	txn, err := s.FindByGUID(ctx, guid)
	if err != nil {
		return err
	}
	return s.transactions.UpdateByID(ctx, txn.ID, map[string]any{
		"transaction_state": state,
	})
}

// Delete removes the owner's transaction by GUID (soft delete).
func (s *TransactionService) Delete(ctx context.Context, guid string) error {
	txn, err := s.FindByGUID(ctx, guid)
	if err != nil {
		return err
	}
	return s.transactions.Delete(ctx, txn.ID)
}

/* ========================================================================
 * Category links - derived owner
 * ======================================================================== */

// LinkCategory attaches a category to a transaction. The link row's
// owner is never taken from input: it is derived from the parent
// transaction inside the same database transaction. A parent that is
// absent for this owner fails as a referential integrity error.
func (s *TransactionService) LinkCategory(ctx context.Context, transactionID, categoryID int64) error {
	return repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		owner, err := repository.ResolveParentOwner(txCtx, s.transactions, "id = ?", transactionID)
		if err != nil {
			return err
		}

		catExists, err := s.categories.Exists(txCtx, "id = ?", categoryID)
		if err != nil {
			return err
		}
		if !catExists {
			return errors.Newf(errors.ErrCodeReferentialIntegrity,
				"category %d does not exist", categoryID)
		}

		linked, err := s.links.Exists(txCtx, "transaction_id = ? AND category_id = ?", transactionID, categoryID)
		if err != nil {
			return err
		}
		if linked {
			return errors.New(errors.ErrCodeDuplicate, "category already linked")
		}

		return s.links.Create(txCtx, &model.TransactionCategory{
			TransactionID: transactionID,
			CategoryID:    categoryID,
			Owner:         owner,
		})
	})
}

// UnlinkCategory removes a category link within the caller's scope.
func (s *TransactionService) UnlinkCategory(ctx context.Context, transactionID, categoryID int64) error {
	owner, err := repository.RequireOwner(ctx)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("owner = ? AND transaction_id = ? AND category_id = ?", owner, transactionID, categoryID).
		Delete(&model.TransactionCategory{})
	if result.Error != nil {
		return errors.FromGorm(result.Error, "failed to unlink category")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(errors.ErrCodeNotFound, "link not found", gorm.ErrRecordNotFound)
	}
	return nil
}

// ListCategories lists the category links of a transaction.
func (s *TransactionService) ListCategories(ctx context.Context, transactionID int64) ([]*model.TransactionCategory, error) {
	return s.links.FindByQuery(ctx, "transaction_id = ?", transactionID)
}

/* ========================================================================
 * Receipt images
 * ======================================================================== */

// AttachReceipt stores a receipt image against a transaction, at most
// one per transaction. The image row's owner is derived from the
// transaction.
func (s *TransactionService) AttachReceipt(ctx context.Context, transactionID int64, image []byte, format model.ImageFormat, meta database.JSONB) (*model.ReceiptImage, error) {
	if len(image) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "image is empty")
	}
	if format != "" && !format.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid image format: %q", format)
	}
	if meta == nil {
		meta = database.JSONB{}
	}

	receipt := &model.ReceiptImage{
		TransactionID: transactionID,
		Image:         image,
		ImageFormat:   format,
		Metadata:      meta,
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		if _, err := repository.ResolveParentOwner(txCtx, s.transactions, "id = ?", transactionID); err != nil {
			return err
		}

		attached, err := s.receipts.Exists(txCtx, "transaction_id = ?", transactionID)
		if err != nil {
			return err
		}
		if attached {
			return errors.New(errors.ErrCodeDuplicate, "transaction already has a receipt")
		}

		return s.receipts.Create(txCtx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Debug("receipt attached",
		zap.Int64("transaction_id", transactionID),
		zap.Int("bytes", len(image)),
	)
	return receipt, nil
}

// FindReceipt returns the receipt attached to a transaction.
func (s *TransactionService) FindReceipt(ctx context.Context, transactionID int64) (*model.ReceiptImage, error) {
	return s.receipts.FindOne(ctx, "transaction_id = ?", transactionID)
}
