package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	t.Run("mapped codes", func(t *testing.T) {
		for code, want := range map[string]int{
			ErrCodeUnknown:              http.StatusInternalServerError,
			ErrCodeInternal:             http.StatusInternalServerError,
			ErrCodeValidation:           http.StatusBadRequest,
			ErrCodeValidationRequired:   http.StatusBadRequest,
			ErrCodeUnauthorized:         http.StatusUnauthorized,
			ErrCodeForbidden:            http.StatusForbidden,
			ErrCodeTokenExpired:         http.StatusUnauthorized,
			ErrCodeNotFound:             http.StatusNotFound,
			ErrCodeAlreadyExists:        http.StatusConflict,
			ErrCodeConflict:             http.StatusConflict,
			ErrCodeConcurrencyConflict:  http.StatusConflict,
			ErrCodeInvalidState:         http.StatusUnprocessableEntity,
			ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
			ErrCodeLastAdmin:            http.StatusConflict,
			ErrCodeWorkOrdersInProgress: http.StatusConflict,
			ErrCodeBadRequest:           http.StatusBadRequest,
			ErrCodeInvalidInput:         http.StatusBadRequest,
			ErrCodeFileTooLarge:         http.StatusBadRequest,
			ErrCodeRateLimited:          http.StatusTooManyRequests,
		} {
			assert.Equal(t, want, GetHTTPStatus(code), code)
		}
	})

	t.Run("unmapped codes fall back on their naming convention", func(t *testing.T) {
		for code, want := range map[string]int{
			"ITEM_NOT_FOUND":       http.StatusNotFound,
			"DUPLICATE_ANNOTATION": http.StatusConflict,
			"USER_EXISTS":          http.StatusConflict,
			"INVITATION_PENDING":   http.StatusConflict,
			"INVALID_QUANTITY":     http.StatusBadRequest,
			"ALREADY_CONFIRMED":    http.StatusUnprocessableEntity,
			"WORK_CENTER_INACTIVE": http.StatusUnprocessableEntity,
			"INVITATION_EXPIRED":   http.StatusUnprocessableEntity,
		} {
			assert.Equal(t, want, GetHTTPStatus(code), code)
		}
	})

	t.Run("unrecognisable code is a server error", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ODD"))
	})
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("legacy codes map onto the ERR_ namespace", func(t *testing.T) {
		for legacy, want := range map[string]string{
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
			"VALIDATION_ERROR":        ErrCodeValidation,
			"BAD_REQUEST":             ErrCodeBadRequest,
			"INTERNAL_ERROR":          ErrCodeInternal,
		} {
			assert.Equal(t, want, NormalizeErrorCode(legacy), legacy)
		}
	})

	t.Run("current and unknown codes pass through", func(t *testing.T) {
		for _, code := range []string{ErrCodeNotFound, ErrCodeValidation, "CUSTOM_ERROR"} {
			assert.Equal(t, code, NormalizeErrorCode(code))
		}
	})
}

// Every declared code must carry the ERR_ prefix and resolve to a status
// without falling through to the naming-convention heuristic.
func TestErrorCodes_RegisteredAndPrefixed(t *testing.T) {
	allCodes := []string{
		ErrCodeUnknown,
		ErrCodeInternal,
		ErrCodeValidation,
		ErrCodeValidationRequired,
		ErrCodeValidationFormat,
		ErrCodeValidationRange,
		ErrCodeValidationLength,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeTokenExpired,
		ErrCodeTokenInvalid,
		ErrCodeNotFound,
		ErrCodeAlreadyExists,
		ErrCodeConflict,
		ErrCodeConcurrencyConflict,
		ErrCodeInvalidState,
		ErrCodeBusinessRule,
		ErrCodeLastAdmin,
		ErrCodeWorkOrdersInProgress,
		ErrCodeBadRequest,
		ErrCodeInvalidInput,
		ErrCodeInvalidJSON,
		ErrCodeFileTooLarge,
		ErrCodeRateLimited,
		ErrCodeTooManyRequests,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(code, "ERR_"))
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "code %s missing from ErrorCodeHTTPStatus", code)
			assert.Positive(t, status)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("normalises legacy codes", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse("NOT_FOUND", "Work order not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Work order not found", resp.Error.Message)
		assert.False(t, resp.Error.Timestamp.Before(before))
		assert.False(t, resp.Error.Timestamp.After(time.Now()))
	})

	t.Run("with request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Work order not found", "req-123-456")

		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-123-456", resp.Error.RequestID)
	})

	t.Run("with help link", func(t *testing.T) {
		help := "https://docs.fabmate.io/errors/auth"
		resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
		assert.Equal(t, help, resp.Error.Help)
	})
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "part_no", Message: "Part number is required"},
		{Field: "quantity", Message: "Must be at least 1"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "part_no", resp.Error.Details[0].Field)
	assert.Equal(t, "Part number is required", resp.Error.Details[0].Message)
}

func TestErrorResponse_JSONRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "User not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "User not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"number": "ORD-2024-0042"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"FLG-150", "FLG-200"}, 100, 1, 10)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)

	t.Run("pagination math", func(t *testing.T) {
		for _, tc := range []struct {
			total               int64
			pageSize            int
			wantPages, wantSize int
		}{
			{100, 10, 10, 10},
			{101, 10, 11, 10}, // partial page
			{0, 10, 0, 10},
			{9, 10, 1, 10},
			{10, 10, 1, 10},
			{11, 10, 2, 10},
			// Non-positive page sizes fall back to the default of 20.
			{100, 0, 5, 20},
			{100, -1, 5, 20},
		} {
			resp := NewSuccessResponseWithMeta(nil, tc.total, 1, tc.pageSize)
			assert.Equal(t, tc.wantPages, resp.Meta.TotalPages, "total=%d size=%d", tc.total, tc.pageSize)
			assert.Equal(t, tc.wantSize, resp.Meta.PageSize, "total=%d size=%d", tc.total, tc.pageSize)
		}
	})
}
