package model

import (
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/shopspring/decimal"
)

// ValidationAmount is a point-in-time statement check against an
// account balance. It references the account by (owner, account_id).
type ValidationAmount struct {
	repository.OwnedModel
	AccountID        int64            `json:"account_id,string" gorm:"column:account_id;not null" validate:"required"`
	ValidationDate   time.Time        `json:"validation_date" gorm:"column:validation_date;not null"`
	TransactionState TransactionState `json:"transaction_state" gorm:"column:transaction_state;type:varchar(20);not null;default:undefined"`
	Amount           decimal.Decimal  `json:"amount" gorm:"column:amount;type:numeric(12,2);not null;default:0.00"`
}

func (ValidationAmount) TableName() string {
	return "validation_amounts"
}
