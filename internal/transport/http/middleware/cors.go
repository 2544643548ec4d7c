package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS answers cross-origin requests for the configured origins. A single
// "*" entry allows every origin; otherwise the request Origin must match one
// of the configured values exactly.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	resolve := originResolver(allowedOrigins)

	return func(c *gin.Context) {
		if origin := resolve(c.GetHeader("Origin")); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin,Content-Type,Accept,Authorization,X-Request-ID,X-Trace-ID")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originResolver maps a request Origin header to the Allow-Origin value to
// emit, or "" when the origin is not allowed.
func originResolver(allowedOrigins []string) func(string) string {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(string) string { return "*" }
		}
		allowed[strings.TrimSuffix(origin, "/")] = struct{}{}
	}

	return func(origin string) string {
		if _, ok := allowed[origin]; ok {
			return origin
		}
		return ""
	}
}
