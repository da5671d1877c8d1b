package middleware

import (
	"net/http"
	"strings"

	"github.com/fabmate/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyContextKey is the key used to store company information in gin.Context
const (
	CompanyIDKey     = "company_id"
	CompanyCodeKey   = "company_code"
	CompanyHeaderKey = "X-Company-ID"
)

// CompanyInfo holds the extracted company information
type CompanyInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// CompanyValidator defines the interface for validating the company scope
type CompanyValidator interface {
	ValidateCompany(companyID string) (*CompanyInfo, error)
}

// CompanyScopeConfig holds configuration for the company scope middleware
type CompanyScopeConfig struct {
	// HeaderEnabled enables X-Company-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SkipPaths are paths that don't require company context (e.g., health check)
	SkipPaths []string
	// Required determines if company context is mandatory
	Required bool
	// Validator is an optional validator to check if the company exists and is active
	Validator CompanyValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultCompanyScopeConfig returns default company scope middleware configuration
func DefaultCompanyScopeConfig() CompanyScopeConfig {
	return CompanyScopeConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:      true,
		Validator:     nil,
		Logger:        nil,
	}
}

// CompanyScope extracts the company scope from the request.
// Extraction order: JWT claims > X-Company-ID header
func CompanyScope() gin.HandlerFunc {
	return CompanyScopeWithConfig(DefaultCompanyScopeConfig())
}

// CompanyScopeWithConfig returns company scope middleware with custom configuration
func CompanyScopeWithConfig(cfg CompanyScopeConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var companyID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtCompanyID := GetJWTCompanyID(c); jwtCompanyID != "" {
				companyID = jwtCompanyID
				extractionMethod = "jwt"
			}
		}

		// Priority 2: X-Company-ID header
		if companyID == "" && cfg.HeaderEnabled {
			if headerCompanyID := c.GetHeader(CompanyHeaderKey); headerCompanyID != "" {
				companyID = headerCompanyID
				extractionMethod = "header"
			}
		}

		// Validate company ID format if present
		if companyID != "" {
			if _, err := uuid.Parse(companyID); err != nil {
				respondUnauthorized(c, "Invalid company ID format")
				return
			}
		}

		// Check if company scope is required
		if companyID == "" && cfg.Required {
			respondUnauthorized(c, "Company identification required")
			return
		}

		// Optional: Validate company exists and is active
		var companyInfo *CompanyInfo
		if companyID != "" && cfg.Validator != nil {
			var err error
			companyInfo, err = cfg.Validator.ValidateCompany(companyID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Company validation failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive company")
				return
			}
		}

		// Set company information in context
		if companyID != "" {
			// Set in gin context for easy access in handlers
			c.Set(CompanyIDKey, companyID)
			if companyInfo != nil {
				c.Set(CompanyCodeKey, companyInfo.Code)
			}

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithCompanyID(ctx, log, companyID)
			c.Request = c.Request.WithContext(ctx)

			// Log extraction method for debugging
			if cfg.Logger != nil {
				cfg.Logger.Debug("Company identified",
					zap.String("company_id", companyID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if cid, ok := companyID.(string); ok {
			return cid
		}
	}
	return ""
}

// GetCompanyUUID retrieves the company ID as UUID from gin.Context
func GetCompanyUUID(c *gin.Context) (uuid.UUID, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(companyID)
}

// GetCompanyCode retrieves the company code from gin.Context
func GetCompanyCode(c *gin.Context) string {
	if companyCode, exists := c.Get(CompanyCodeKey); exists {
		if code, ok := companyCode.(string); ok {
			return code
		}
	}
	return ""
}

// MustGetCompanyID retrieves the company ID from gin.Context or panics if not found
// Use this only in handlers where company scope is guaranteed to exist
func MustGetCompanyID(c *gin.Context) string {
	companyID := GetCompanyID(c)
	if companyID == "" {
		panic("company_id not found in context")
	}
	return companyID
}

// MustGetCompanyUUID retrieves the company ID as UUID or panics if not found
func MustGetCompanyUUID(c *gin.Context) uuid.UUID {
	companyUUID, err := GetCompanyUUID(c)
	if err != nil || companyUUID == uuid.Nil {
		panic("valid company_id not found in context")
	}
	return companyUUID
}

// OptionalCompanyScope creates middleware that doesn't require company scope
func OptionalCompanyScope() gin.HandlerFunc {
	cfg := DefaultCompanyScopeConfig()
	cfg.Required = false
	return CompanyScopeWithConfig(cfg)
}
