package middleware

import (
	"net/http"
	"strings"

	"gamefilter/internal/application/auth"
	domainAuth "gamefilter/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

const (
	// PrincipalContextKey is the key used to store the caller in gin context
	PrincipalContextKey = "principal"
)

// AuthMiddleware validates bearer tokens. With auth disabled every request
// runs as a local administrator.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Enabled() {
			c.Set(PrincipalContextKey, &domainAuth.Principal{
				Subject: "admin",
				Role:    domainAuth.RoleAdministrator,
			})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		principal, err := authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireAdmin is a middleware that requires administrator role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipalFromContext(c)
		if p == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "principal not found in context"})
			c.Abort()
			return
		}
		if !p.IsAdministrator() {
			c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipalFromContext retrieves the caller from the gin context
func GetPrincipalFromContext(c *gin.Context) *domainAuth.Principal {
	if v, exists := c.Get(PrincipalContextKey); exists {
		if p, ok := v.(*domainAuth.Principal); ok {
			return p
		}
	}
	return nil
}
