package model

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment moves money from a source account to a destination account
// (typically a bill pay against a credit account). Each payment owns a
// pair of generated transactions referenced by GUID; both references
// are compound on (owner, guid).
type Payment struct {
	repository.OwnedModel
	SourceAccount      string          `json:"source_account" gorm:"column:source_account;type:varchar(40);not null" validate:"required,min=3,max=40"`
	DestinationAccount string          `json:"destination_account" gorm:"column:destination_account;type:varchar(40);not null" validate:"required,min=3,max=40"`
	TransactionDate    time.Time       `json:"transaction_date" gorm:"column:transaction_date;type:date;not null"`
	Amount             decimal.Decimal `json:"amount" gorm:"column:amount;type:numeric(12,2);not null;default:0.00"`
	GUIDSource         string          `json:"guid_source" gorm:"column:guid_source;type:varchar(36);not null"`
	GUIDDestination    string          `json:"guid_destination" gorm:"column:guid_destination;type:varchar(36);not null"`
}

func (Payment) TableName() string {
	return "payments"
}

// BeforeSave normalizes account names.
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.SourceAccount = strings.ToLower(strings.TrimSpace(p.SourceAccount))
	p.DestinationAccount = strings.ToLower(strings.TrimSpace(p.DestinationAccount))
	return nil
}
