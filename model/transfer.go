package model

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer moves money between two of the owner's accounts. Like
// Payment it owns a pair of generated transactions referenced by
// (owner, guid).
type Transfer struct {
	repository.OwnedModel
	SourceAccount      string          `json:"source_account" gorm:"column:source_account;type:varchar(40);not null" validate:"required,min=3,max=40"`
	DestinationAccount string          `json:"destination_account" gorm:"column:destination_account;type:varchar(40);not null" validate:"required,min=3,max=40"`
	TransactionDate    time.Time       `json:"transaction_date" gorm:"column:transaction_date;type:date;not null"`
	Amount             decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(12,2);not null;default:0.00"`
	GUIDSource         string          `json:"guid_source" gorm:"column:guid_source;type:varchar(36);not null"`
	GUIDDestination    string          `json:"guid_destination" gorm:"column:guid_destination;type:varchar(36);not null"`
}

func (Transfer) TableName() string {
	return "transfers"
}

// BeforeSave normalizes account names.
func (t *Transfer) BeforeSave(tx *gorm.DB) error {
	t.SourceAccount = strings.ToLower(strings.TrimSpace(t.SourceAccount))
	t.DestinationAccount = strings.ToLower(strings.TrimSpace(t.DestinationAccount))
	return nil
}
