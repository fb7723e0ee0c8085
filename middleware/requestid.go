package middleware

import (
	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/utils/id-generator/ulid"

	"github.com/gofiber/fiber/v3"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware assigns every request a ULID (or keeps the
// caller's) and threads it through the context for log enrichment.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = ulid.GenerateString()
		}

		c.Set(HeaderRequestID, requestID)
		c.SetContext(logger.WithRequestID(c.Context(), requestID))
		return c.Next()
	}
}
