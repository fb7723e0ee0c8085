package handler

import (
	"time"

	"github.com/fintrack/fintrack/errors"
	"github.com/fintrack/fintrack/model"
	"github.com/fintrack/fintrack/response"
	"github.com/fintrack/fintrack/service"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Account Handler
 * ======================================================================== */

// AccountHandler exposes account endpoints.
type AccountHandler struct {
	accounts    *service.AccountService
	validations *service.ValidationAmountService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts *service.AccountService, validations *service.ValidationAmountService) *AccountHandler {
	return &AccountHandler{accounts: accounts, validations: validations}
}

type createAccountRequest struct {
	AccountNameOwner string `json:"account_name_owner"`
	AccountType      string `json:"account_type"`
	Moniker          string `json:"moniker"`
}

// Create handles POST /api/account.
func (h *AccountHandler) Create(c fiber.Ctx) error {
	var req createAccountRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	acct, err := h.accounts.Create(c.Context(), &model.Account{
		AccountNameOwner: req.AccountNameOwner,
		AccountType:      model.AccountType(req.AccountType),
		Moniker:          req.Moniker,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, acct)
}

// List handles GET /api/account.
func (h *AccountHandler) List(c fiber.Ctx) error {
	accounts, err := h.accounts.ListActive(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, accounts)
}

// Get handles GET /api/account/:name.
func (h *AccountHandler) Get(c fiber.Ctx) error {
	acct, err := h.accounts.FindByName(c.Context(), c.Params("name"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, acct)
}

// Totals handles GET /api/account/totals.
func (h *AccountHandler) Totals(c fiber.Ctx) error {
	totals, err := h.accounts.Totals(c.Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, totals)
}

type renameAccountRequest struct {
	NewName string `json:"new_name"`
}

// Rename handles POST /api/account/:name/rename.
func (h *AccountHandler) Rename(c fiber.Ctx) error {
	var req renameAccountRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	acct, err := h.accounts.Rename(c.Context(), c.Params("name"), req.NewName)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, acct)
}

// Deactivate handles POST /api/account/:name/deactivate.
func (h *AccountHandler) Deactivate(c fiber.Ctx) error {
	if err := h.accounts.Deactivate(c.Context(), c.Params("name")); err != nil {
		return response.Error(c, err)
	}
	return response.Ok(c)
}

type createValidationRequest struct {
	AccountID        int64  `json:"account_id,string"`
	ValidationDate   string `json:"validation_date"`
	TransactionState string `json:"transaction_state"`
	Amount           string `json:"amount"`
}

// CreateValidation handles POST /api/validation.
func (h *AccountHandler) CreateValidation(c fiber.Ctx) error {
	var req createValidationRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	when, err := parseDate(req.ValidationDate)
	if err != nil {
		return response.Error(c, err)
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return response.Error(c, err)
	}

	va, err := h.validations.Create(c.Context(), &model.ValidationAmount{
		AccountID:        req.AccountID,
		ValidationDate:   when,
		TransactionState: model.TransactionState(req.TransactionState),
		Amount:           amt,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, va)
}

// LatestValidation handles GET /api/validation/:accountId/latest.
func (h *AccountHandler) LatestValidation(c fiber.Ctx) error {
	accountID, err := parseID(c.Params("accountId"))
	if err != nil {
		return response.Error(c, err)
	}

	va, err := h.validations.FindLatest(c.Context(), accountID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OkWithData(c, va)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.Newf(errors.ErrCodeValidation, "invalid date: %q", value)
	}
	return t, nil
}
