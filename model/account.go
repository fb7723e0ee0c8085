package model

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a financial account owned by one tenant. The natural key
// account_name_owner is unique per owner, lowercase by invariant; the
// compound constraints live in the migration DDL.
type Account struct {
	repository.OwnedModel
	AccountNameOwner string          `json:"account_name_owner" gorm:"column:account_name_owner;type:varchar(40);not null" validate:"required,min=3,max=40"`
	AccountType      AccountType     `json:"account_type" gorm:"column:account_type;type:varchar(20);not null;default:undefined"`
	Moniker          string          `json:"moniker" gorm:"column:moniker;type:varchar(4);not null;default:0000" validate:"omitempty,len=4,numeric"`
	Future           decimal.Decimal `json:"future" gorm:"column:future;type:numeric(12,2);not null;default:0.00"`
	Outstanding      decimal.Decimal `json:"outstanding" gorm:"column:outstanding;type:numeric(12,2);not null;default:0.00"`
	Cleared          decimal.Decimal `json:"cleared" gorm:"column:cleared;type:numeric(12,2);not null;default:0.00"`
	DateClosed       *time.Time      `json:"date_closed,omitempty" gorm:"column:date_closed"`
	ValidationDate   *time.Time      `json:"validation_date,omitempty" gorm:"column:validation_date"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeSave normalizes the natural key. The lowercase invariant also
// lives in the DDL as a CHECK constraint.
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.AccountNameOwner = strings.ToLower(strings.TrimSpace(a.AccountNameOwner))
	if a.AccountType == "" {
		a.AccountType = AccountTypeUndefined
	}
	return nil
}
