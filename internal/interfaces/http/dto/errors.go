package dto

import (
	"net/http"
	"strings"
)

// Wire error codes, ERR_<CATEGORY>_<DESCRIPTION>. Handlers put these in the
// envelope's error payload; clients branch on them rather than on messages.

const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"
)

const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict covers optimistic locking failures and the
	// drawing sync compare-and-swap.
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeLastAdmin blocks removing or demoting a company's only admin.
	ErrCodeLastAdmin            = "ERR_LAST_ADMIN"
	ErrCodeWorkOrdersInProgress = "ERR_WORK_ORDERS_IN_PROGRESS"
)

const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
)

const (
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeFileTooLarge:       http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeLastAdmin:            http.StatusConflict,
	ErrCodeWorkOrdersInProgress: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes outside
// the explicit map fall back on their naming convention so a new domain code
// degrades to a sensible status instead of a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}

	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"), strings.HasPrefix(code, "DUPLICATE_"),
		strings.HasSuffix(code, "_CONFLICT"), strings.HasPrefix(code, "CONCURRENT_"),
		strings.HasSuffix(code, "_TAKEN"), strings.HasSuffix(code, "_PENDING"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"), strings.HasSuffix(code, "_TOO_LARGE"),
		strings.HasPrefix(code, "EMPTY_"), strings.HasPrefix(code, "MISSING_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"), strings.HasPrefix(code, "CANNOT_"),
		strings.HasPrefix(code, "HAS_"), strings.HasSuffix(code, "_INACTIVE"),
		strings.HasSuffix(code, "_LOCKED"), strings.HasSuffix(code, "_EXPIRED"),
		strings.HasSuffix(code, "_EXCEEDED"), strings.HasSuffix(code, "_IN_PROGRESS"),
		strings.HasSuffix(code, "_CHILDREN"), strings.HasPrefix(code, "INCOMPATIBLE_"),
		strings.HasPrefix(code, "CIRCULAR_"):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates the bare codes domain errors carry into
// the standardized wire codes.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"LAST_ADMIN":              ErrCodeLastAdmin,
	"WORK_ORDERS_IN_PROGRESS": ErrCodeWorkOrdersInProgress,
	"FILE_TOO_LARGE":          ErrCodeFileTooLarge,
	"BLOB_TOO_LARGE":          ErrCodeFileTooLarge,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
	"TOKEN_EXPIRED":           ErrCodeTokenExpired,
	"TOKEN_INVALID":           ErrCodeTokenInvalid,
	"INVALID_CREDENTIALS":     ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a bare domain code to the standardized wire
// format; codes already standardized, or unknown, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
