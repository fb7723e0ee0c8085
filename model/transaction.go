package model

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a single ledger entry. It references its account by
// the compound key (owner, account_name_owner), so the reference can
// never cross an owner boundary. guid is unique per owner and is the
// stable handle payments and transfers link through.
type Transaction struct {
	repository.OwnedModel
	GUID             string           `json:"guid" gorm:"column:guid;type:varchar(36);not null"`
	AccountNameOwner string           `json:"account_name_owner" gorm:"column:account_name_owner;type:varchar(40);not null" validate:"required,min=3,max=40"`
	TransactionDate  time.Time        `json:"transaction_date" gorm:"column:transaction_date;type:date;not null"`
	Description      string           `json:"description" gorm:"column:description;type:varchar(75);not null;default:''" validate:"max=75"`
	Category         string           `json:"category" gorm:"column:category;type:varchar(50);not null;default:''" validate:"max=50"`
	Amount           decimal.Decimal  `json:"amount" gorm:"column:amount;type:numeric(12,2);not null;default:0.00"`
	TransactionState TransactionState `json:"transaction_state" gorm:"column:transaction_state;type:varchar(20);not null;default:undefined"`
	TransactionType  TransactionType  `json:"transaction_type" gorm:"column:transaction_type;type:varchar(20);not null;default:undefined"`
	ReoccurringType  ReoccurringType  `json:"reoccurring_type" gorm:"column:reoccurring_type;type:varchar(20);not null;default:onetime"`
	Notes            string           `json:"notes" gorm:"column:notes;type:varchar(100);not null;default:''" validate:"max=100"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeSave normalizes text columns and assigns a GUID when the
// caller did not bring one.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.AccountNameOwner = strings.ToLower(strings.TrimSpace(t.AccountNameOwner))
	t.Description = strings.ToLower(strings.TrimSpace(t.Description))
	t.Category = strings.ToLower(strings.TrimSpace(t.Category))
	if t.GUID == "" {
		t.GUID = uuid.NewString()
	}
	if t.TransactionState == "" {
		t.TransactionState = TransactionStateUndefined
	}
	if t.TransactionType == "" {
		t.TransactionType = TransactionTypeUndefined
	}
	if t.ReoccurringType == "" {
		t.ReoccurringType = ReoccurringTypeOnetime
	}
	return nil
}

// TransactionCategory links a transaction to a category. The owner is
// never taken from input: it is derived from the parent transaction
// inside the same database transaction that inserts the link.
type TransactionCategory struct {
	CategoryID    int64     `json:"category_id" gorm:"column:category_id;primaryKey"`
	TransactionID int64     `json:"transaction_id" gorm:"column:transaction_id;primaryKey"`
	Owner         string    `json:"owner" gorm:"column:owner;type:varchar(100);not null"`
	DateAdded     time.Time `json:"date_added" gorm:"column:date_added;autoCreateTime"`
	DateUpdated   time.Time `json:"date_updated" gorm:"column:date_updated;autoUpdateTime"`
}

func (TransactionCategory) TableName() string {
	return "transaction_categories"
}

// GetOwner returns the derived owner of the link row.
func (tc TransactionCategory) GetOwner() string {
	return tc.Owner
}
