package repository

import (
	"time"

	"github.com/fintrack/fintrack/utils/id-generator/snowflake"

	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

/* ========================================================================
 * Base Models
 * ========================================================================
 * BaseModel carries the surrogate key, audit timestamps, the domain
 * active flag and the row soft-delete flag. OwnedModel adds the owner
 * column; every tenant-owned entity embeds it. The owner value is set
 * by the repository from the caller's context, never trusted from
 * input, and never reassigned after insert.
 * ======================================================================== */

// BaseModel is embedded by all persisted entities.
type BaseModel struct {
	ID           int64                 `json:"id,string" gorm:"column:id;primaryKey"`
	ActiveStatus bool                  `json:"active_status" gorm:"column:active_status;not null;default:true"`
	DateAdded    time.Time             `json:"date_added" gorm:"column:date_added;autoCreateTime"`
	DateUpdated  time.Time             `json:"date_updated" gorm:"column:date_updated;autoUpdateTime"`
	Deleted      soft_delete.DeletedAt `json:"-" gorm:"column:deleted;default:0;softDelete:flag"`
}

// BeforeCreate assigns a snowflake ID and forces the active flag:
// entities always come into existence active.
// Multi-instance deployments must set SNOWFLAKE_NODE_ID.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = snowflake.Generate()
	}
	m.ActiveStatus = true
	return nil
}

// OwnedModel is embedded by every tenant-owned entity.
type OwnedModel struct {
	BaseModel
	Owner string `json:"owner" gorm:"column:owner;type:varchar(100);not null"`
}

// GetOwner returns the owner the row belongs to.
func (m OwnedModel) GetOwner() string {
	return m.Owner
}
