package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/transport/http/handlers"
	"github.com/arklim/project-planner/internal/usecase"
)

// RequireAuth validates the Authorization header and attaches the verified claims.
// Rejection happens here, before any handler logic runs.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handlers.NewErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handlers.NewErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handlers.NewErrorResponse(c, "missing access token"))
			return
		}

		claims, err := authService.ParseAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					handlers.NewErrorResponse(c, "access token expired"))
			case errors.Is(err, usecase.ErrInvalidAccessToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					handlers.NewErrorResponse(c, "invalid access token"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					handlers.NewErrorResponse(c, "authentication failed"))
			}
			return
		}

		claimSet := claims.ClaimSet()
		c.Set(ClaimsKey, claimSet)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.CredentialID = claimSet.Subject
		}

		c.Next()
	}
}

// RequireRole checks whether the authenticated caller carries any of the given
// roles. SuperAdmin always passes.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handlers.NewErrorResponse(c, "authentication required"))
			return
		}

		allowed := append([]string{domain.RoleSuperAdmin}, roles...)
		if !claims.HasAnyRole(allowed...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				handlers.NewErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

// GetAuthenticatedCredentialID retrieves the caller's credential id (helper for handlers).
func GetAuthenticatedCredentialID(c *gin.Context) (string, bool) {
	claims, ok := GetClaims(c)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
