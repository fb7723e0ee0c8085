package handler

import (
	"encoding/base64"
	"strconv"

	"github.com/fintrack/fintrack/database"
	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/response"
	"github.com/fintrack/fintrack/service"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

/* ========================================================================
 * Transaction Handler
 * ======================================================================== */

// TransactionHandler exposes transaction endpoints.
type TransactionHandler struct {
	transactions *service.TransactionService
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type recordTransactionRequest struct {
	AccountNameOwner string `json:"account_name_owner"`
	TransactionDate  string `json:"transaction_date"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Amount           string `json:"amount"`
	TransactionState string `json:"transaction_state"`
	TransactionType  string `json:"transaction_type"`
	ReoccurringType  string `json:"reoccurring_type"`
	Notes            string `json:"notes"`
}

// Record handles POST /api/transaction.
func (h *TransactionHandler) Record(c fiber.Ctx) error {
	var req recordTransactionRequest
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

	txn, err := h.transactions.Record(c.Context(), &model.Transaction{
		AccountNameOwner: req.AccountNameOwner,
		TransactionDate:  when,
		Description:      req.Description,
		Category:         req.Category,
		Amount:           amt,
		TransactionState: model.TransactionState(req.TransactionState),
		TransactionType:  model.TransactionType(req.TransactionType),
		ReoccurringType:  model.ReoccurringType(req.ReoccurringType),
		Notes:            req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, txn)
}

// Get handles GET /api/transaction/:guid.
func (h *TransactionHandler) Get(c fiber.Ctx) error {
	txn, err := h.transactions.FindByGUID(c.Context(), c.Params("guid"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, txn)
}

// ListByAccount handles GET /api/account/:name/transactions.
func (h *TransactionHandler) ListByAccount(c fiber.Ctx) error {
	list, err := h.transactions.ListByAccount(c.Context(), c.Params("name"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, list)
}

type changeStateRequest struct {
	TransactionState string `json:"transaction_state"`
}

// ChangeState handles PUT /api/transaction/:guid/state.
func (h *TransactionHandler) ChangeState(c fiber.Ctx) error {
	var req changeStateRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	err := h.transactions.ChangeState(c.Context(), c.Params("guid"), model.TransactionState(req.TransactionState))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

// Delete handles DELETE /api/transaction/:guid.
func (h *TransactionHandler) Delete(c fiber.Ctx) error {
	if err := h.transactions.Delete(c.Context(), c.Params("guid")); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

type linkCategoryRequest struct {
	CategoryID int64 `json:"category_id,string"`
}

// LinkCategory handles POST /api/transaction/:id/category.
func (h *TransactionHandler) LinkCategory(c fiber.Ctx) error {
	transactionID, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	var req linkCategoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.transactions.LinkCategory(c.Context(), transactionID, req.CategoryID); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

// UnlinkCategory handles DELETE /api/transaction/:id/category/:categoryId.
func (h *TransactionHandler) UnlinkCategory(c fiber.Ctx) error {
	transactionID, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	categoryID, err := parseID(c.Params("categoryId"))
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.transactions.UnlinkCategory(c.Context(), transactionID, categoryID); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

type attachReceiptRequest struct {
	Image       string         `json:"image"`
	ImageFormat string         `json:"image_format"`
	Metadata    database.JSONB `json:"metadata"`
}

// AttachReceipt handles POST /api/transaction/:id/receipt. The image
// travels base64-encoded in the JSON body.
func (h *TransactionHandler) AttachReceipt(c fiber.Ctx) error {
	transactionID, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	var req attachReceiptRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return response.Error(c, errors.New(errors.ErrCodeValidation, "image is not valid base64"))
	}

	receipt, err := h.transactions.AttachReceipt(c.Context(), transactionID,
		image, model.ImageFormat(req.ImageFormat), req.Metadata)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, receipt)
}

// GetReceipt handles GET /api/transaction/:id/receipt.
func (h *TransactionHandler) GetReceipt(c fiber.Ctx) error {
	transactionID, err := parseID(c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}

	receipt, err := h.transactions.FindReceipt(c.Context(), transactionID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, receipt)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "invalid id: %q", value)
	}
	return id, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amt, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Newf(errors.ErrCodeValidation, "invalid amount: %q", value)
	}
	return amt, nil
}
