// Package middleware provides HTTP middleware for the manufacturing backend.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Length caps for header-sourced trace attributes. Headers are attacker
// controlled, so values are bounded before they reach the span.
const (
	MaxRequestIDLength = 128
	MaxCompanyIDLength = 64
)

// uuidRegex validates UUID format for company IDs from headers.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "fabmate-backend", Enabled: true}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin and enriches the server span with
// request_id, company_id, and user_id. Span names follow otelgin's
// "METHOD route_pattern" convention.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		// otelgin starts the span; anything added afterwards lands on it.
		otelMiddleware(c)

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	for key, value := range map[string]string{
		"request_id": getRequestID(c),
		"company_id": getTraceCompanyID(c),
		"user_id":    getUserID(c),
	} {
		if value != "" {
			span.SetAttributes(attribute.String(key, value))
		}
	}
}

// getRequestID prefers the ID the RequestID middleware stored in the gin
// context, falling back to the raw header truncated to MaxRequestIDLength.
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok && id != "" {
			return id
		}
	}

	headerID := c.GetHeader("X-Request-ID")
	return headerID[:min(len(headerID), MaxRequestIDLength)]
}

// getTraceCompanyID prefers the JWT claim over the X-Company-ID header;
// header values must parse as UUIDs so nothing free-form reaches the span.
func getTraceCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(JWTCompanyIDKey); exists {
		if id, ok := companyID.(string); ok && id != "" {
			return id
		}
	}

	if headerCompanyID := c.GetHeader(CompanyHeaderKey); isValidCompanyID(headerCompanyID) {
		return headerCompanyID
	}
	return ""
}

func isValidCompanyID(companyID string) bool {
	return len(companyID) <= MaxCompanyIDLength && uuidRegex.MatchString(companyID)
}

// getUserID reads the user ID the JWT middleware stored on the context.
func getUserID(c *gin.Context) string {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// spanStatusMessage maps an HTTP status onto the span error description.
func spanStatusMessage(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "Internal Server Error"
	case statusCode == http.StatusUnauthorized:
		return "Unauthorized"
	case statusCode == http.StatusForbidden:
		return "Forbidden"
	case statusCode == http.StatusNotFound:
		return "Not Found"
	default:
		return "Client Error"
	}
}

// SpanErrorMarker marks the span as errored on 4xx/5xx responses. Place it
// after the Tracing middleware in the chain.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if statusCode := c.Writer.Status(); statusCode >= http.StatusBadRequest {
			span.SetStatus(codes.Error, spanStatusMessage(statusCode))
			span.SetAttributes(attribute.Int("http.status_code", statusCode))
		}
	}
}

// TracingAttributeInjector re-enriches the span once authentication has run
// and the JWT claims are on the context. Place it after both Tracing and the
// JWT middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}
