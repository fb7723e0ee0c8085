package model

import (
	"github.com/fintrack/fintrack/database"
	"github.com/fintrack/fintrack/repository"
)

// ReceiptImage stores a receipt attached to a transaction, at most
// one per transaction. The reference is compound on (owner,
// transaction_id).
type ReceiptImage struct {
	repository.OwnedModel
	TransactionID int64          `json:"transaction_id,string" gorm:"column:transaction_id;not null" validate:"required"`
	Image         []byte         `json:"-" gorm:"column:image;not null"`
	Thumbnail     []byte         `json:"-" gorm:"column:thumbnail"`
	ImageFormat   ImageFormat    `json:"image_format" gorm:"column:image_format;type:varchar(10);not null;default:undefined"`
	Metadata      database.JSONB `json:"metadata" gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
}

func (ReceiptImage) TableName() string {
	return "receipt_images"
}
