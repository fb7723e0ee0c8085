package model

import (
	"strings"

	"github.com/fintrack/fintrack/repository"

	"gorm.io/gorm"
)

// Category is an owner-scoped lookup value; (owner, category_name)
// is unique.
type Category struct {
	repository.OwnedModel
	CategoryName string `json:"category_name" gorm:"column:category_name;type:varchar(50);not null" validate:"required,min=1,max=50"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeSave enforces the lowercase name invariant.
func (c *Category) BeforeSave(tx *gorm.DB) error {
	c.CategoryName = strings.ToLower(strings.TrimSpace(c.CategoryName))
	return nil
}

// Description is an owner-scoped lookup value; (owner,
// description_name) is unique.
type Description struct {
	repository.OwnedModel
	DescriptionName string `json:"description_name" gorm:"column:description_name;type:varchar(75);not null" validate:"required,min=1,max=75"`
}

func (Description) TableName() string {
	return "descriptions"
}

// BeforeSave enforces the lowercase name invariant.
func (d *Description) BeforeSave(tx *gorm.DB) error {
	d.DescriptionName = strings.ToLower(strings.TrimSpace(d.DescriptionName))
	return nil
}
