package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myfirstshop/fragrance-api/internal/domain"
	"github.com/myfirstshop/fragrance-api/internal/service"
	"github.com/myfirstshop/fragrance-api/pkg/response"
)

// ClaimsKey is the context key for verified token claims
const ClaimsKey = "auth_claims"

// RequireAdmin verifies the bearer token and rejects non-admin callers.
// Missing or bad credentials get 401; a valid token without the admin
// flag gets 403.
func RequireAdmin(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortUnauthorized(c, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			response.AbortUnauthorized(c, "Invalid authorization header")
			return
		}
		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			response.AbortUnauthorized(c, "Invalid authorization header")
			return
		}

		claims, err := authService.VerifyToken(c.Request.Context(), token)
		if err != nil {
			response.AbortUnauthorized(c, "Invalid or expired token")
			return
		}

		if !claims.IsAdmin {
			response.AbortForbidden(c, "Admin access required")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the verified claims set by RequireAdmin
func GetClaims(c *gin.Context) (*domain.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok
}
