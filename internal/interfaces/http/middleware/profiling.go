// Package middleware provides HTTP middleware for the FabMate backend.
package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/fabmate/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips the health and documentation endpoints that
// would otherwise dominate the profile stream.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics"},
		SkipPathPrefixes: []string{"/swagger", "/api-docs"},
	}
}

// Profiling returns profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig tags each request's CPU samples with Pyroscope labels:
// controller, route, method, and company_id. All four stay low cardinality
// because the route label uses gin's pattern, not the concrete path.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(cfg.SkipPaths, path) ||
			slices.ContainsFunc(cfg.SkipPathPrefixes, func(p string) bool { return strings.HasPrefix(path, p) }) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), requestProfilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// requestProfilingLabels collects the label set for one request, omitting
// anything the request doesn't carry.
func requestProfilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()

	labels := make(map[string]string, 4)
	for key, value := range map[string]string{
		telemetry.ProfilingLabelMethod:     c.Request.Method,
		telemetry.ProfilingLabelRoute:      route,
		telemetry.ProfilingLabelController: controllerFromRoute(route),
		telemetry.ProfilingLabelCompanyID:  profilingCompanyID(c),
	} {
		if value != "" {
			labels[key] = value
		}
	}
	return labels
}

// controllerFromRoute picks the resource segment out of a route pattern:
// "/api/v1/orders/:id" yields "orders".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		switch {
		case part == "" || part == "api" || isVersionSegment(part):
		case strings.HasPrefix(part, ":") || strings.HasPrefix(part, "{"):
		default:
			return part
		}
	}
	return ""
}

// isVersionSegment reports whether a path segment looks like v1, v2, ...
func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, ch := range segment[1:] {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// profilingCompanyID reads the company ID set by the JWT middleware, falling
// back to the company scope key for header-scoped requests.
func profilingCompanyID(c *gin.Context) string {
	for _, key := range []string{JWTCompanyIDKey, CompanyIDKey} {
		if companyID, exists := c.Get(key); exists {
			if id, ok := companyID.(string); ok && id != "" {
				return id
			}
		}
	}
	return ""
}

// ProfilingAttributeInjector is the profiling middleware positioned after
// authentication, so company_id is present when the labels are read.
func ProfilingAttributeInjector() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}
