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
 * Payment Service
 * ========================================================================
 * A payment settles a bill from a source account against a
 * destination (typically credit) account. It generates the two ledger
 * entries and the payment row in one transaction; every reference
 * stays inside the owner's scope.
 * ======================================================================== */

// PaymentService manages payments.
type PaymentService struct {
	db           *gorm.DB
	payments     repository.Repository[model.Payment]
	accounts     repository.Repository[model.Account]
	transactions repository.Repository[model.Transaction]
	validate     *validator.Validator
	log          *logger.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(db *gorm.DB, v *validator.Validator, log *logger.Logger) *PaymentService {
	return &PaymentService{
		db:           db,
		payments:     repository.NewRepository[model.Payment](db),
		accounts:     repository.NewRepository[model.Account](db),
		transactions: repository.NewRepository[model.Transaction](db),
		validate:     v,
		log:          log,
	}
}

// Create records a payment and its two generated transactions. Both
// accounts must exist for this owner; the (destination, date, amount)
// dedup key must be free.
func (s *PaymentService) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	if payment == nil {
		return nil, errors.New(errors.ErrCodeValidation, "payment is nil")
	}
	if err := s.validate.Validate(payment); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid payment", err)
	}

	payment.SourceAccount = strings.ToLower(strings.TrimSpace(payment.SourceAccount))
	payment.DestinationAccount = strings.ToLower(strings.TrimSpace(payment.DestinationAccount))
	if payment.SourceAccount == payment.DestinationAccount {
		return nil, errors.New(errors.ErrCodeValidation, "source and destination accounts are the same")
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		for _, name := range []string{payment.SourceAccount, payment.DestinationAccount} {
			exists, err := s.accounts.Exists(txCtx, "account_name_owner = ?", name)
			if err != nil {
				return err
			}
			if !exists {
				return errors.Newf(errors.ErrCodeReferentialIntegrity, "account %q does not exist", name)
			}
		}

		dup, err := s.payments.Exists(txCtx,
			"destination_account = ? AND transaction_date = ? AND amount = ?",
			payment.DestinationAccount, payment.TransactionDate, payment.Amount)
		if err != nil {
			return err
		}
		if dup {
			return errors.New(errors.ErrCodeDuplicate, "payment already recorded")
		}

		payment.GUIDSource = uuid.NewString()
		payment.GUIDDestination = uuid.NewString()

		// The withdrawal from the source and the balance reduction on
		// the destination are both outflows.
		source := &model.Transaction{
			GUID:             payment.GUIDSource,
			AccountNameOwner: payment.SourceAccount,
			TransactionDate:  payment.TransactionDate,
			Description:      "payment",
			Category:         "bill_pay",
			Amount:           payment.Amount.Neg(),
			TransactionState: model.TransactionStateOutstanding,
			TransactionType:  model.TransactionTypeTransfer,
			Notes:            "to " + payment.DestinationAccount,
		}
		destination := &model.Transaction{
			GUID:             payment.GUIDDestination,
			AccountNameOwner: payment.DestinationAccount,
			TransactionDate:  payment.TransactionDate,
			Description:      "payment",
			Category:         "bill_pay",
			Amount:           payment.Amount.Neg(),
			TransactionState: model.TransactionStateOutstanding,
			TransactionType:  model.TransactionTypeTransfer,
			Notes:            "from " + payment.SourceAccount,
		}

		if err := s.transactions.Create(txCtx, source); err != nil {
			return err
		}
		if err := s.transactions.Create(txCtx, destination); err != nil {
			return err
		}
		return s.payments.Create(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("payment recorded",
		zap.String("source", payment.SourceAccount),
		zap.String("destination", payment.DestinationAccount),
	)
	return payment, nil
}

// List lists the owner's payments, newest first.
func (s *PaymentService) List(ctx context.Context) ([]*model.Payment, error) {
	return s.payments.List(ctx, repository.WithOrderBy("transaction_date DESC"))
}

// Delete removes a payment and its two generated transactions.
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	return repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		payment, err := s.payments.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		for _, guid := range []string{payment.GUIDSource, payment.GUIDDestination} {
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

		return s.payments.Delete(txCtx, id)
	})
}
