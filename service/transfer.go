package service

import (
	"context"
	"strings"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Transfer Service
 * ========================================================================
 * A transfer moves money between two of the owner's accounts: an
 * outflow on the source, an inflow on the destination, and the
 * transfer row, all in one transaction.
 * ======================================================================== */

// TransferService manages transfers.
type TransferService struct {
	db           *gorm.DB
	transfers    repository.Repository[model.Transfer]
	accounts     repository.Repository[model.Account]
	transactions repository.Repository[model.Transaction]
	validate     *validator.Validator
	log          *logger.Logger
}

// NewTransferService creates a TransferService.
func NewTransferService(db *gorm.DB, v *validator.Validator, log *logger.Logger) *TransferService {
	return &TransferService{
		db:           db,
		transfers:    repository.NewRepository[model.Transfer](db),
		accounts:     repository.NewRepository[model.Account](db),
		transactions: repository.NewRepository[model.Transaction](db),
		validate:     v,
		log:          log,
	}
}

// Create records a transfer and its two generated transactions.
func (s *TransferService) Create(ctx context.Context, transfer *model.Transfer) (*model.Transfer, error) {
	if transfer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "transfer is nil")
	}
	if err := s.validate.Validate(transfer); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid transfer", err)
	}

	transfer.SourceAccount = strings.ToLower(strings.TrimSpace(transfer.SourceAccount))
	transfer.DestinationAccount = strings.ToLower(strings.TrimSpace(transfer.DestinationAccount))
	if transfer.SourceAccount == transfer.DestinationAccount {
		return nil, errors.New(errors.ErrCodeValidation, "source and destination accounts are the same")
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		for _, name := range []string{transfer.SourceAccount, transfer.DestinationAccount} {
			exists, err := s.accounts.Exists(txCtx, "account_name_owner = ?", name)
			if err != nil {
				return err
			}
			if !exists {
				return errors.Newf(errors.ErrCodeReferentialIntegrity, "account %q does not exist", name)
			}
		}

		dup, err := s.transfers.Exists(txCtx,
			"source_account = ? AND destination_account = ? AND transaction_date = ? AND amount = ?",
			transfer.SourceAccount, transfer.DestinationAccount, transfer.TransactionDate, transfer.Amount)
		if err != nil {
			return err
		}
		if dup {
			return errors.New(errors.ErrCodeDuplicate, "transfer already recorded")
		}

		transfer.GUIDSource = uuid.NewString()
		transfer.GUIDDestination = uuid.NewString()

		source := &model.Transaction{
			GUID:             transfer.GUIDSource,
			AccountNameOwner: transfer.SourceAccount,
			TransactionDate:  transfer.TransactionDate,
			Description:      "transfer",
			Category:         "transfer",
			Amount:           transfer.Amount.Neg(),
			TransactionState: model.TransactionStateOutstanding,
			TransactionType:  model.TransactionTypeTransfer,
			Notes:            "to " + transfer.DestinationAccount,
		}
		destination := &model.Transaction{
			GUID:             transfer.GUIDDestination,
			AccountNameOwner: transfer.DestinationAccount,
			TransactionDate:  transfer.TransactionDate,
			Description:      "transfer",
			Category:         "transfer",
			Amount:           transfer.Amount,
			TransactionState: model.TransactionStateOutstanding,
			TransactionType:  model.TransactionTypeTransfer,
			Notes:            "from " + transfer.SourceAccount,
		}

		if err := s.transactions.Create(txCtx, source); err != nil {
			return err
		}
		if err := s.transactions.Create(txCtx, destination); err != nil {
			return err
		}
		return s.transfers.Create(txCtx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("transfer recorded",
		zap.String("source", transfer.SourceAccount),
		zap.String("destination", transfer.DestinationAccount),
	)
	return transfer, nil
}

// List lists the owner's transfers, newest first.
func (s *TransferService) List(ctx context.Context) ([]*model.Transfer, error) {
	return s.transfers.List(ctx, repository.WithOrderBy("transaction_date DESC"))
}

// Delete removes a transfer and its two generated transactions.
func (s *TransferService) Delete(ctx context.Context, id int64) error {
	return repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		transfer, err := s.transfers.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		for _, guid := range []string{transfer.GUIDSource, transfer.GUIDDestination} {
			txn, err := s.transactions.FindOne(txCtx, "guid = ?", guid)
			if err != nil {
				if errors.IsNotFound(err) {
					continue
				}
				return err
			}
			if err := s.transactions.Delete(txCtx, txn.ID); err != nil {
				return err
			}
		}

		return s.transfers.Delete(txCtx, id)
	})
}
