package handler

import (
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/response"
	"github.com/fintrack/fintrack/service"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Payment / Transfer Handlers
 * ======================================================================== */

// PaymentHandler exposes payment endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createPaymentRequest struct {
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account"`
	TransactionDate    string `json:"transaction_date"`
	Amount             string `json:"amount"`
}

// Create handles POST /api/payment.
func (h *PaymentHandler) Create(c fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	when, err := parseDate(req.TransactionDate)
	if err != nil {
		return response.Error(c, err)
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return response.Error(c, err)
	}

	payment, err := h.payments.Create(c.Context(), &model.Payment{
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		TransactionDate:    when,
		Amount:             amt,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, payment)
}

// List handles GET /api/payment.
func (h *PaymentHandler) List(c fiber.Ctx) error {
	payments, err := h.payments.List(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, payments)
}

// Delete handles DELETE /api/payment/:id.
func (h *PaymentHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.payments.Delete(c.Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

// TransferHandler exposes transfer endpoints.
type TransferHandler struct {
	transfers *service.TransferService
}

// NewTransferHandler creates a TransferHandler.
func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type createTransferRequest struct {
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account"`
	TransactionDate    string `json:"transaction_date"`
	Amount             string `json:"amount"`
}

// Create handles POST /api/transfer.
func (h *TransferHandler) Create(c fiber.Ctx) error {
	var req createTransferRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	when, err := parseDate(req.TransactionDate)
	if err != nil {
		return response.Error(c, err)
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return response.Error(c, err)
	}

	transfer, err := h.transfers.Create(c.Context(), &model.Transfer{
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		TransactionDate:    when,
		Amount:             amt,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, transfer)
}

// List handles GET /api/transfer.
func (h *TransferHandler) List(c fiber.Ctx) error {
	transfers, err := h.transfers.List(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, transfers)
}

// Delete handles DELETE /api/transfer/:id.
func (h *TransferHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.transfers.Delete(c.Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}
