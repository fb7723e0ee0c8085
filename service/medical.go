package service

import (
	"context"
	"strings"
	"time"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

/* ========================================================================
 * Medical Service
 * ========================================================================
 * Family members and expenses are owner-scoped; the provider directory
 * is shared reference data every tenant reads. Expense references to
 * transactions and family members resolve inside the caller's scope,
 * provider references resolve against the shared directory.
 * ======================================================================== */

// MedicalService manages medical expense tracking.
type MedicalService struct {
	db           *gorm.DB
	members      repository.Repository[model.FamilyMember]
	providers    repository.Repository[model.MedicalProvider]
	expenses     repository.Repository[model.MedicalExpense]
	transactions repository.Repository[model.Transaction]
	validate     *validator.Validator
	log          *logger.Logger
}

// NewMedicalService creates a MedicalService.
func NewMedicalService(db *gorm.DB, v *validator.Validator, log *logger.Logger) *MedicalService {
	return &MedicalService{
		db:           db,
		members:      repository.NewRepository[model.FamilyMember](db),
		providers:    repository.NewRepository[model.MedicalProvider](db),
		expenses:     repository.NewRepository[model.MedicalExpense](db),
		transactions: repository.NewRepository[model.Transaction](db),
		validate:     v,
		log:          log,
	}
}

/* ========================================================================
 * Family members
 * ======================================================================== */

// CreateFamilyMember registers a family member for this owner.
func (s *MedicalService) CreateFamilyMember(ctx context.Context, member *model.FamilyMember) (*model.FamilyMember, error) {
	if member == nil {
		return nil, errors.New(errors.ErrCodeValidation, "family member is nil")
	}
	if err := s.validate.Validate(member); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid family member", err)
	}
	if member.Relationship != "" && !member.Relationship.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid relationship: %q", member.Relationship)
	}

	member.MemberName = strings.ToLower(strings.TrimSpace(member.MemberName))

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		dup, err := s.members.Exists(txCtx, "member_name = ?", member.MemberName)
		if err != nil {
			return err
		}
		if dup {
			return errors.Newf(errors.ErrCodeDuplicate, "family member %q already exists", member.MemberName)
		}
		return s.members.Create(txCtx, member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListFamilyMembers lists the owner's active family members.
func (s *MedicalService) ListFamilyMembers(ctx context.Context) ([]*model.FamilyMember, error) {
	return s.members.ListActive(ctx, repository.WithOrderBy("member_name ASC"))
}

// DeactivateFamilyMember retires a family member without deleting the
// history attributed to them.
func (s *MedicalService) DeactivateFamilyMember(ctx context.Context, id int64) error {
	return s.members.Deactivate(ctx, id)
}

/* ========================================================================
 * Provider directory (shared)
 * ======================================================================== */

// CreateProvider adds a provider to the shared directory.
func (s *MedicalService) CreateProvider(ctx context.Context, provider *model.MedicalProvider) (*model.MedicalProvider, error) {
	if provider == nil {
		return nil, errors.New(errors.ErrCodeValidation, "provider is nil")
	}
	if err := s.validate.Validate(provider); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid provider", err)
	}

	provider.ProviderName = strings.ToLower(strings.TrimSpace(provider.ProviderName))
	if provider.ProviderType == "" {
		provider.ProviderType = "general"
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		dup, err := s.providers.Exists(txCtx, "provider_name = ?", provider.ProviderName)
		if err != nil {
			return err
		}
		if dup {
			return errors.Newf(errors.ErrCodeDuplicate, "provider %q already exists", provider.ProviderName)
		}
		return s.providers.Create(txCtx, provider)
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders lists the shared provider directory.
func (s *MedicalService) ListProviders(ctx context.Context) ([]*model.MedicalProvider, error) {
	return s.providers.ListActive(ctx, repository.WithOrderBy("provider_name ASC"))
}

// FindProvider returns one provider by id.
func (s *MedicalService) FindProvider(ctx context.Context, id int64) (*model.MedicalProvider, error) {
	return s.providers.FindByID(ctx, id)
}

/* ========================================================================
 * Expenses
 * ======================================================================== */

// CreateExpense records a medical expense. The optional transaction and
// family member references must belong to this owner; the provider
// reference resolves against the shared directory.
func (s *MedicalService) CreateExpense(ctx context.Context, expense *model.MedicalExpense) (*model.MedicalExpense, error) {
	if expense == nil {
		return nil, errors.New(errors.ErrCodeValidation, "expense is nil")
	}
	if err := s.validate.Validate(expense); err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, "invalid expense", err)
	}
	if expense.ClaimStatus != "" && !expense.ClaimStatus.Valid() {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid claim status: %q", expense.ClaimStatus)
	}
	if expense.BilledAmount.IsNegative() {
		return nil, errors.New(errors.ErrCodeValidation, "billed amount must not be negative")
	}

	err := repository.Execute(ctx, s.db, func(txCtx context.Context) error {
		if expense.TransactionID != nil {
			if _, err := repository.ResolveParentOwner(txCtx, s.transactions, "id = ?", *expense.TransactionID); err != nil {
				return err
			}
		}
		if expense.FamilyMemberID != nil {
			if _, err := repository.ResolveParentOwner(txCtx, s.members, "id = ?", *expense.FamilyMemberID); err != nil {
				return err
			}
		}
		if expense.ProviderID != nil {
			exists, err := s.providers.Exists(txCtx, "id = ?", *expense.ProviderID)
			if err != nil {
				return err
			}
			if !exists {
				return errors.Newf(errors.ErrCodeReferentialIntegrity,
					"provider %d does not exist", *expense.ProviderID)
			}
		}
		if expense.TransactionID != nil {
			dup, err := s.expenses.Exists(txCtx, "transaction_id = ?", *expense.TransactionID)
			if err != nil {
				return err
			}
			if dup {
				return errors.New(errors.ErrCodeDuplicate, "transaction already has a medical expense")
			}
		}
		return s.expenses.Create(txCtx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("medical expense recorded",
		zap.Int64("expense_id", expense.ID),
		zap.String("claim_status", string(expense.ClaimStatus)),
	)
	return expense, nil
}

// FindExpense returns the owner's expense by id.
func (s *MedicalService) FindExpense(ctx context.Context, id int64) (*model.MedicalExpense, error) {
	return s.expenses.FindByID(ctx, id)
}

// ListExpenses lists the owner's expenses, newest service date first.
func (s *MedicalService) ListExpenses(ctx context.Context) ([]*model.MedicalExpense, error) {
	return s.expenses.List(ctx, repository.WithOrderBy("service_date DESC"))
}

// ListExpensesByMember lists expenses attributed to one family member.
func (s *MedicalService) ListExpensesByMember(ctx context.Context, familyMemberID int64) ([]*model.MedicalExpense, error) {
	return s.expenses.FindByQueryWithOpts(ctx,
		"family_member_id = ?",
		[]repository.Option{repository.WithOrderBy("service_date DESC")},
		familyMemberID)
}

// UpdateClaimStatus moves an expense through the claim lifecycle.
func (s *MedicalService) UpdateClaimStatus(ctx context.Context, id int64, status model.ClaimStatus) error {
	if !status.Valid() {
		return errors.Newf(errors.ErrCodeValidation, "invalid claim status: %q", status)
	}
	return s.expenses.UpdateByID(ctx, id, map[string]any{
		"claim_status": status,
	})
}

// RecordPayment marks an expense paid as of paidDate.
func (s *MedicalService) RecordPayment(ctx context.Context, id int64, paidDate time.Time) error {
	return s.expenses.UpdateByID(ctx, id, map[string]any{
		"paid_date":    paidDate,
		"claim_status": model.ClaimStatusPaid,
	})
}

// OutOfPocketTotal sums the owner's patient responsibility across the
// given service date range.
func (s *MedicalService) OutOfPocketTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return s.expenses.SumDecimal(ctx, "patient_responsibility",
		"service_date >= ? AND service_date <= ?", from, to)
}
