package handler

import (
	"github.com/fintrack/fintrack/metrics"
	"github.com/fintrack/fintrack/middleware"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
)

/* ========================================================================
 * Router
 * ========================================================================
 * Everything under /api requires a verified token; the owner bound by
 * the auth middleware scopes every handler below it.
 * ======================================================================== */

// RouterParams are the routing dependencies.
type RouterParams struct {
	fx.In

	App          *fiber.App
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Payments     *PaymentHandler
	Transfers    *TransferHandler
	Medical      *MedicalHandler

	Auth      fiber.Handler `name:"auth"`
	RateLimit fiber.Handler `name:"ratelimit"`
}

// RegisterRoutes wires every endpoint onto the app.
func RegisterRoutes(p RouterParams) {
	p.App.Use(middleware.NewRequestIDMiddleware())
	p.App.Use(metrics.HTTPMetricsMiddleware(nil))

	api := p.App.Group("/api", p.Auth, p.RateLimit)

	account := api.Group("/account")
	account.Post("/", p.Accounts.Create)
	account.Get("/", p.Accounts.List)
	account.Get("/totals", p.Accounts.Totals)
	account.Get("/:name", p.Accounts.Get)
	account.Post("/:name/rename", p.Accounts.Rename)
	account.Post("/:name/deactivate", p.Accounts.Deactivate)
	account.Get("/:name/transactions", p.Transactions.ListByAccount)

	transaction := api.Group("/transaction")
	transaction.Post("/", p.Transactions.Record)
	transaction.Get("/:guid", p.Transactions.Get)
	transaction.Put("/:guid/state", p.Transactions.ChangeState)
	transaction.Delete("/:guid", p.Transactions.Delete)
	transaction.Post("/:id/category", p.Transactions.LinkCategory)
	transaction.Delete("/:id/category/:categoryId", p.Transactions.UnlinkCategory)
	transaction.Post("/:id/receipt", p.Transactions.AttachReceipt)
	transaction.Get("/:id/receipt", p.Transactions.GetReceipt)

	payment := api.Group("/payment")
	payment.Post("/", p.Payments.Create)
	payment.Get("/", p.Payments.List)
	payment.Delete("/:id", p.Payments.Delete)

	transfer := api.Group("/transfer")
	transfer.Post("/", p.Transfers.Create)
	transfer.Get("/", p.Transfers.List)
	transfer.Delete("/:id", p.Transfers.Delete)

	validation := api.Group("/validation")
	validation.Post("/", p.Accounts.CreateValidation)
	validation.Get("/:accountId/latest", p.Accounts.LatestValidation)

	medical := api.Group("/medical")
	medical.Post("/member", p.Medical.CreateFamilyMember)
	medical.Get("/member", p.Medical.ListFamilyMembers)
	medical.Post("/provider", p.Medical.CreateProvider)
	medical.Get("/provider", p.Medical.ListProviders)
	medical.Post("/expense", p.Medical.CreateExpense)
	medical.Get("/expense", p.Medical.ListExpenses)
	medical.Put("/expense/:id/claim", p.Medical.UpdateClaimStatus)
	medical.Post("/expense/:id/payment", p.Medical.RecordExpensePayment)
}

// Module provides every handler and registers the routes.
var Module = fx.Module("handler",
	fx.Provide(
		NewAccountHandler,
		NewTransactionHandler,
		NewPaymentHandler,
		NewTransferHandler,
		NewMedicalHandler,
	),
	fx.Invoke(RegisterRoutes),
)
