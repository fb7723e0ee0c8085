package model

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FamilyMember is an owner-scoped person medical expenses can be
// attributed to; (owner, member_name) is unique.
type FamilyMember struct {
	repository.OwnedModel
	MemberName        string       `json:"member_name" gorm:"column:member_name;type:varchar(100);not null" validate:"required,min=1,max=100"`
	Relationship      Relationship `json:"relationship" gorm:"column:relationship;type:varchar(20);not null;default:self"`
	DateOfBirth       *time.Time   `json:"date_of_birth,omitempty" gorm:"column:date_of_birth;type:date"`
	InsuranceMemberID string       `json:"insurance_member_id,omitempty" gorm:"column:insurance_member_id;type:varchar(50)"`
}

func (FamilyMember) TableName() string {
	return "family_members"
}

// BeforeSave normalizes the member name.
func (f *FamilyMember) BeforeSave(tx *gorm.DB) error {
	f.MemberName = strings.ToLower(strings.TrimSpace(f.MemberName))
	if f.Relationship == "" {
		f.Relationship = RelationshipSelf
	}
	return nil
}

// MedicalProvider is shared reference data. It deliberately has no
// owner column and opts out of owner scoping: every tenant reads the
// same provider directory.
type MedicalProvider struct {
	repository.BaseModel
	ProviderName string `json:"provider_name" gorm:"column:provider_name;type:varchar(200);not null" validate:"required,min=1,max=200"`
	ProviderType string `json:"provider_type" gorm:"column:provider_type;type:varchar(50);not null;default:general"`
	Specialty    string `json:"specialty,omitempty" gorm:"column:specialty;type:varchar(100)"`
	NPI          string `json:"npi,omitempty" gorm:"column:npi;type:varchar(10)" validate:"omitempty,len=10,numeric"`
}

func (MedicalProvider) TableName() string {
	return "medical_providers"
}

// OwnerIgnored opts the provider directory out of owner enforcement.
func (MedicalProvider) OwnerIgnored() bool {
	return true
}

// MedicalExpense is an owner-scoped expense record. Its references to
// Transaction and FamilyMember are compound on owner; the provider
// reference points into the shared directory.
type MedicalExpense struct {
	repository.OwnedModel
	TransactionID          *int64          `json:"transaction_id,string,omitempty" gorm:"column:transaction_id"`
	ProviderID             *int64          `json:"provider_id,string,omitempty" gorm:"column:provider_id"`
	FamilyMemberID         *int64          `json:"family_member_id,string,omitempty" gorm:"column:family_member_id"`
	ServiceDate            time.Time       `json:"service_date" gorm:"column:service_date;type:date;not null"`
	ServiceDescription     string          `json:"service_description" gorm:"column:service_description;type:varchar(200);not null;default:''" validate:"max=200"`
	BilledAmount           decimal.Decimal `json:"billed_amount" gorm:"column:billed_amount;type:numeric(12,2);not null;default:0.00"`
	InsuranceDiscount      decimal.Decimal `json:"insurance_discount" gorm:"column:insurance_discount;type:numeric(12,2);not null;default:0.00"`
	InsurancePaid          decimal.Decimal `json:"insurance_paid" gorm:"column:insurance_paid;type:numeric(12,2);not null;default:0.00"`
	PatientResponsibility  decimal.Decimal `json:"patient_responsibility" gorm:"column:patient_responsibility;type:numeric(12,2);not null;default:0.00"`
	PaidDate               *time.Time      `json:"paid_date,omitempty" gorm:"column:paid_date;type:date"`
	ClaimNumber            string          `json:"claim_number,omitempty" gorm:"column:claim_number;type:varchar(50)"`
	ClaimStatus            ClaimStatus     `json:"claim_status" gorm:"column:claim_status;type:varchar(20);not null;default:submitted"`
	IsOutOfNetwork         bool            `json:"is_out_of_network" gorm:"column:is_out_of_network;not null;default:false"`
}

func (MedicalExpense) TableName() string {
	return "medical_expenses"
}

// BeforeSave applies claim defaults.
func (m *MedicalExpense) BeforeSave(tx *gorm.DB) error {
	if m.ClaimStatus == "" {
		m.ClaimStatus = ClaimStatusSubmitted
	}
	return nil
}
