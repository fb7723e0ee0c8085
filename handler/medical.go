package handler

import (
	"time"

	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/response"
	"github.com/fintrack/fintrack/service"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Medical Handler
 * ======================================================================== */

// MedicalHandler exposes medical expense tracking endpoints.
type MedicalHandler struct {
	medical *service.MedicalService
}

// NewMedicalHandler creates a MedicalHandler.
func NewMedicalHandler(medical *service.MedicalService) *MedicalHandler {
	return &MedicalHandler{medical: medical}
}

type createFamilyMemberRequest struct {
	MemberName        string `json:"member_name"`
	Relationship      string `json:"relationship"`
	DateOfBirth       string `json:"date_of_birth"`
	InsuranceMemberID string `json:"insurance_member_id"`
}

// CreateFamilyMember handles POST /api/medical/member.
func (h *MedicalHandler) CreateFamilyMember(c fiber.Ctx) error {
	var req createFamilyMemberRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	member := &model.FamilyMember{
		MemberName:        req.MemberName,
		Relationship:      model.Relationship(req.Relationship),
		InsuranceMemberID: req.InsuranceMemberID,
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			return response.Error(c, err)
		}
		member.DateOfBirth = &dob
	}

	created, err := h.medical.CreateFamilyMember(c.Context(), member)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, created)
}

// ListFamilyMembers handles GET /api/medical/member.
func (h *MedicalHandler) ListFamilyMembers(c fiber.Ctx) error {
	members, err := h.medical.ListFamilyMembers(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, members)
}

type createProviderRequest struct {
	ProviderName string `json:"provider_name"`
	ProviderType string `json:"provider_type"`
	Specialty    string `json:"specialty"`
	NPI          string `json:"npi"`
}

// CreateProvider handles POST /api/medical/provider.
func (h *MedicalHandler) CreateProvider(c fiber.Ctx) error {
	var req createProviderRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	provider, err := h.medical.CreateProvider(c.Context(), &model.MedicalProvider{
		ProviderName: req.ProviderName,
		ProviderType: req.ProviderType,
		Specialty:    req.Specialty,
		NPI:          req.NPI,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, provider)
}

// ListProviders handles GET /api/medical/provider.
func (h *MedicalHandler) ListProviders(c fiber.Ctx) error {
	providers, err := h.medical.ListProviders(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, providers)
}

type createExpenseRequest struct {
	TransactionID         *int64 `json:"transaction_id,string"`
	ProviderID            *int64 `json:"provider_id,string"`
	FamilyMemberID        *int64 `json:"family_member_id,string"`
	ServiceDate           string `json:"service_date"`
	ServiceDescription    string `json:"service_description"`
	BilledAmount          string `json:"billed_amount"`
	InsuranceDiscount     string `json:"insurance_discount"`
	InsurancePaid         string `json:"insurance_paid"`
	PatientResponsibility string `json:"patient_responsibility"`
	ClaimNumber           string `json:"claim_number"`
	IsOutOfNetwork        bool   `json:"is_out_of_network"`
}

// CreateExpense handles POST /api/medical/expense.
func (h *MedicalHandler) CreateExpense(c fiber.Ctx) error {
	var req createExpenseRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	serviceDate, err := parseDate(req.ServiceDate)
	if err != nil {
		return response.Error(c, err)
	}

	expense := &model.MedicalExpense{
		TransactionID:      req.TransactionID,
		ProviderID:         req.ProviderID,
		FamilyMemberID:     req.FamilyMemberID,
		ServiceDate:        serviceDate,
		ServiceDescription: req.ServiceDescription,
		ClaimNumber:        req.ClaimNumber,
		IsOutOfNetwork:     req.IsOutOfNetwork,
	}
	if expense.BilledAmount, err = parseAmount(req.BilledAmount); err != nil {
		return response.Error(c, err)
	}
	if expense.InsuranceDiscount, err = parseAmount(req.InsuranceDiscount); err != nil {
		return response.Error(c, err)
	}
	if expense.InsurancePaid, err = parseAmount(req.InsurancePaid); err != nil {
		return response.Error(c, err)
	}
	if expense.PatientResponsibility, err = parseAmount(req.PatientResponsibility); err != nil {
		return response.Error(c, err)
	}

	created, err := h.medical.CreateExpense(c.Context(), expense)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, created)
}

// ListExpenses handles GET /api/medical/expense.
func (h *MedicalHandler) ListExpenses(c fiber.Ctx) error {
	expenses, err := h.medical.ListExpenses(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, expenses)
}

type updateClaimRequest struct {
	ClaimStatus string `json:"claim_status"`
}

// UpdateClaimStatus handles PUT /api/medical/expense/:id/claim.
func (h *MedicalHandler) UpdateClaimStatus(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	var req updateClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.medical.UpdateClaimStatus(c.Context(), id, model.ClaimStatus(req.ClaimStatus)); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

type recordExpensePaymentRequest struct {
	PaidDate string `json:"paid_date"`
}

// RecordExpensePayment handles POST /api/medical/expense/:id/payment.
func (h *MedicalHandler) RecordExpensePayment(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	var req recordExpensePaymentRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	paidDate := time.Now()
	if req.PaidDate != "" {
		paidDate, err = parseDate(req.PaidDate)
		if err != nil {
			return response.Error(c, err)
		}
	}

	if err := h.medical.RecordPayment(c.Context(), id, paidDate); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}
