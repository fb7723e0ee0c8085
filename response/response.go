package response

import (
	"net/http"

	"github.com/fintrack/fintrack/errors"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * Response
 * ========================================================================
 * Unified HTTP response helpers: a standard JSON envelope, business
 * error translation, pagination, and shortcut responses.
 * ======================================================================== */

func newResp(code int, msg string, data any) *Result {
	resp := &Result{
		Code: code,
		Msg:  msg,
	}

	// Keep data an object rather than null when there is none.
	if data == nil {
		resp.Data = &struct{}{}
	} else {
		resp.Data = data
	}

	return resp
}

func respJSONWithStatusCode(c fiber.Ctx, code int, msg string, data ...any) error {
	var firstData any
	if len(data) > 0 {
		firstData = data[0]
	}

	if code > http.StatusNetworkAuthenticationRequired || code < http.StatusContinue {
		code = http.StatusInternalServerError
	}

	return c.Status(code).JSON(newResp(code, msg, firstData))
}

/* ========================================================================
 * Success responses
 * ======================================================================== */

// Ok returns a bare success response.
func Ok(c fiber.Ctx) error {
	return respJSONWithStatusCode(c, http.StatusOK, "ok")
}

// OkWithData returns a success response carrying data.
func OkWithData(c fiber.Ctx, data any) error {
	return respJSONWithStatusCode(c, http.StatusOK, "ok", data)
}

// OkWithMsg returns a success response with a custom message.
func OkWithMsg(c fiber.Ctx, msg string, data ...any) error {
	return respJSONWithStatusCode(c, http.StatusOK, msg, data...)
}

// Created returns a 201 response carrying the created resource.
func Created(c fiber.Ctx, data any) error {
	return respJSONWithStatusCode(c, http.StatusCreated, "created", data)
}

/* ========================================================================
 * Error responses
 * ======================================================================== */

// Error returns an error response. Business errors map to their HTTP
// status and code; anything else is a 500.
func Error(c fiber.Ctx, err error) error {
	if err == nil {
		return Ok(c)
	}

	if bizErr, ok := errors.AsBizError(err); ok {
		statusCode, resp := errors.ToHTTPResponse(bizErr)
		return c.Status(statusCode).JSON(Result{
			Code: resp["code"].(int),
			Msg:  resp["msg"].(string),
			Data: &struct{}{},
		})
	}

	return respJSONWithStatusCode(c, http.StatusInternalServerError, err.Error())
}

// ErrorWithCode returns an error response with an explicit HTTP status.
func ErrorWithCode(c fiber.Ctx, code int, err error) error {
	if err == nil {
		return c.Status(code).JSON(Result{
			Code: code,
			Msg:  "ok",
			Data: &struct{}{},
		})
	}

	if bizErr, ok := errors.AsBizError(err); ok {
		statusCode, _ := errors.ToHTTPResponse(bizErr)
		if code != http.StatusInternalServerError {
			statusCode = code
		}
		return c.Status(statusCode).JSON(Result{
			Code: int(bizErr.Code),
			Msg:  bizErr.Message,
			Data: &struct{}{},
		})
	}

	return respJSONWithStatusCode(c, code, err.Error())
}

/* ========================================================================
 * Pagination
 * ======================================================================== */

// PageData returns a paginated payload.
func PageData(c fiber.Ctx, list any, total int64, page, pageSize int) error {
	return OkWithData(c, &PageResult{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

/* ========================================================================
 * Shortcuts
 * ======================================================================== */

// BadRequest returns a 400 response.
func BadRequest(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusBadRequest, msg)
}

// Unauthorized returns a 401 response.
func Unauthorized(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusUnauthorized, msg)
}

// Forbidden returns a 403 response.
func Forbidden(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusForbidden, msg)
}

// NotFound returns a 404 response.
func NotFound(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusNotFound, msg)
}

// InternalError returns a 500 response.
func InternalError(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusInternalServerError, msg)
}

// ServiceUnavailable returns a 503 response.
func ServiceUnavailable(c fiber.Ctx, msg string) error {
	return respJSONWithStatusCode(c, http.StatusServiceUnavailable, msg)
}
