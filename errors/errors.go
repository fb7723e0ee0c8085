package errors

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

/* ========================================================================
 * Error Package
 * ========================================================================
 * Business error codes with conversions to HTTP and gRPC status codes.
 * The taxonomy mirrors the isolation-layer contract: a cross-tenant
 * probe always surfaces as NotFound, never as a constraint violation.
 * ======================================================================== */

// ErrorCode is a business error code.
type ErrorCode int

const (
	ErrCodeUnknown              ErrorCode = 1000
	ErrCodeValidation           ErrorCode = 1001 // malformed input, owner reassignment
	ErrCodeNotFound             ErrorCode = 1002 // absent for this owner
	ErrCodeDuplicate            ErrorCode = 1003 // owner-scoped uniqueness violation
	ErrCodePermissionDenied     ErrorCode = 1004
	ErrCodeUnauthenticated      ErrorCode = 1005 // no resolvable owner context
	ErrCodeInternal             ErrorCode = 1006
	ErrCodeUnavailable          ErrorCode = 1007
	ErrCodeTimeout              ErrorCode = 1008
	ErrCodeCanceled             ErrorCode = 1009
	ErrCodeReferentialIntegrity ErrorCode = 1010 // dangling parent reference
)

// BizError carries a business error code, a message and an optional cause.
type BizError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *BizError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Is matches BizErrors by code so sentinels work with errors.Is.
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *BizError) Unwrap() error {
	return e.Cause
}

// New creates a business error.
func New(code ErrorCode, message string) *BizError {
	return &BizError{Code: code, Message: message}
}

// Newf creates a business error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *BizError {
	return &BizError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a cause with a business error code.
func Wrap(code ErrorCode, message string, cause error) *BizError {
	return &BizError{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps a cause with a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *BizError {
	return &BizError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel errors for errors.Is checks.
var (
	ErrValidation           = New(ErrCodeValidation, "validation failed")
	ErrNotFound             = New(ErrCodeNotFound, "resource not found")
	ErrDuplicate            = New(ErrCodeDuplicate, "resource already exists")
	ErrPermissionDenied     = New(ErrCodePermissionDenied, "permission denied")
	ErrUnauthenticated      = New(ErrCodeUnauthenticated, "unauthenticated")
	ErrInternal             = New(ErrCodeInternal, "internal error")
	ErrUnavailable          = New(ErrCodeUnavailable, "service unavailable")
	ErrTimeout              = New(ErrCodeTimeout, "timeout")
	ErrCanceled             = New(ErrCodeCanceled, "canceled")
	ErrReferentialIntegrity = New(ErrCodeReferentialIntegrity, "referential integrity violation")
)

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Code extracts the business error code from err.
func Code(err error) ErrorCode {
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code
	}
	return ErrCodeUnknown
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return Code(err) == ErrCodeNotFound
}

// IsDuplicate reports whether err is a Duplicate error.
func IsDuplicate(err error) bool {
	return Code(err) == ErrCodeDuplicate
}

// AsBizError converts err to a BizError if possible.
func AsBizError(err error) (*BizError, bool) {
	if err == nil {
		return nil, false
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr, true
	}
	return nil, false
}

/* ========================================================================
 * GORM error translation
 * ======================================================================== */

// FromGorm translates persistence-layer errors into the business
// taxonomy. Record-not-found becomes NotFound: the caller must not be
// able to distinguish "absent" from "belongs to another owner".
func FromGorm(err error, message string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(ErrCodeNotFound, message, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(ErrCodeDuplicate, message, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(ErrCodeReferentialIntegrity, message, err)
	default:
		var bizErr *BizError
		if errors.As(err, &bizErr) {
			return err
		}
		return Wrap(ErrCodeInternal, message, err)
	}
}

/* ========================================================================
 * gRPC conversion
 * ======================================================================== */

var errorCodeToGRPCCode = map[ErrorCode]codes.Code{
	ErrCodeUnknown:              codes.Unknown,
	ErrCodeValidation:           codes.InvalidArgument,
	ErrCodeNotFound:             codes.NotFound,
	ErrCodeDuplicate:            codes.AlreadyExists,
	ErrCodePermissionDenied:     codes.PermissionDenied,
	ErrCodeUnauthenticated:      codes.Unauthenticated,
	ErrCodeInternal:             codes.Internal,
	ErrCodeUnavailable:          codes.Unavailable,
	ErrCodeTimeout:              codes.DeadlineExceeded,
	ErrCodeCanceled:             codes.Canceled,
	ErrCodeReferentialIntegrity: codes.FailedPrecondition,
}

// ToGRPCError converts a business error to a gRPC status error.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	var bizErr *BizError
	if errors.As(err, &bizErr) {
		grpcCode, ok := errorCodeToGRPCCode[bizErr.Code]
		if !ok {
			grpcCode = codes.Unknown
		}
		return status.Error(grpcCode, bizErr.Message)
	}

	return status.Error(codes.Internal, err.Error())
}

/* ========================================================================
 * HTTP conversion
 * ======================================================================== */

var httpStatusCode = map[ErrorCode]int{
	ErrCodeUnknown:              500,
	ErrCodeValidation:           400,
	ErrCodeNotFound:             404,
	ErrCodeDuplicate:            409,
	ErrCodePermissionDenied:     403,
	ErrCodeUnauthenticated:      401,
	ErrCodeInternal:             500,
	ErrCodeUnavailable:          503,
	ErrCodeTimeout:              504,
	ErrCodeCanceled:             499,
	ErrCodeReferentialIntegrity: 409,
}

var (
	httpStatusMu        sync.RWMutex
	httpStatusOverrides = make(map[ErrorCode]int)
)

// RegisterHTTPStatus overrides the HTTP status for a business code.
func RegisterHTTPStatus(code ErrorCode, status int) {
	httpStatusMu.Lock()
	defer httpStatusMu.Unlock()
	httpStatusOverrides[code] = status
}

func resolveHTTPStatus(code ErrorCode) (int, bool) {
	httpStatusMu.RLock()
	defer httpStatusMu.RUnlock()
	status, ok := httpStatusOverrides[code]
	return status, ok
}

// ToHTTPResponse converts a business error into an HTTP status and body.
func ToHTTPResponse(err error) (int, fiber.Map) {
	if err == nil {
		return 200, fiber.Map{"code": 0, "msg": "success"}
	}

	var bizErr *BizError
	if errors.As(err, &bizErr) {
		statusCode, ok := resolveHTTPStatus(bizErr.Code)
		if !ok {
			statusCode, ok = httpStatusCode[bizErr.Code]
			if !ok {
				statusCode = 500
			}
		}
		return statusCode, fiber.Map{
			"code": int(bizErr.Code),
			"msg":  bizErr.Message,
		}
	}

	return 500, fiber.Map{
		"code": 500,
		"msg":  "internal server error",
	}
}
