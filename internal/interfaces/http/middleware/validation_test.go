package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fabmate/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createWorkPackageInput struct {
	Name     string `json:"name" binding:"required,min=3"`
	Sequence int    `json:"sequence" binding:"required,min=1"`
}

func workPackageRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/work-packages", func(c *gin.Context) {
		var req createWorkPackageInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError_InvalidInput(t *testing.T) {
	SetupValidator()
	router := workPackageRouter()

	w := postJSON(router, "/api/v1/work-packages", `{"name": "ab", "sequence": 0}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	assert.Len(t, resp.Error.Details, 2, "both invalid fields should be reported")
}

func TestHandleValidationError_ValidInput(t *testing.T) {
	SetupValidator()
	router := workPackageRouter()

	w := postJSON(router, "/api/v1/work-packages", `{"name": "Stair Core", "sequence": 2}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleValidationError_MissingRequiredField(t *testing.T) {
	SetupValidator()
	router := workPackageRouter()

	w := postJSON(router, "/api/v1/work-packages", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
}

func TestGetValidationMessage(t *testing.T) {
	type ruleSample struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=10"`
		Len      string `binding:"len=5"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=a b c"`
		URL      string `binding:"url"`
	}

	wantByField := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 10 characters",
		"Len":      "Must be exactly 5 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: a b c",
		"URL":      "Invalid URL format",
	}

	err := validator.New().Struct(ruleSample{
		Email: "invalid",
		Min:   "ab",
		Max:   "this is way too long",
		Len:   "ab",
		UUID:  "invalid",
		OneOf: "d",
		URL:   "invalid",
	})
	require.Error(t, err)

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	seen := map[string]bool{}
	for _, e := range validationErrs {
		want, ok := wantByField[e.Field()]
		if !ok {
			continue
		}
		assert.Contains(t, getValidationMessage(e), want, "field %s", e.Field())
		seen[e.Field()] = true
	}
	for field := range wantByField {
		assert.True(t, seen[field], "no validation error produced for %s", field)
	}
}
