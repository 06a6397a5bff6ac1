package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/domain/models"
	"github.com/kisanpay/milkledger/internal/service/auth"
)

const (
	// CallerIDKey is the gin context key holding the verified caller's account ID.
	CallerIDKey = "callerID"
	// CallerRoleKey is the gin context key holding the verified caller's role.
	CallerRoleKey = "callerRole"

	authHeaderPrefix = "Bearer "
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*auth.Claims, error)
}

// RequireAuth resolves the caller identity from the Authorization header and
// stores it on the request context. Handlers behind it can rely on a verified
// caller ID and role.
func RequireAuth(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, authHeaderPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authorized, no token"})
			return
		}

		claims, err := verifier.VerifyToken(strings.TrimPrefix(header, authHeaderPrefix))
		if err != nil {
			logger.Warn("token verification failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authorized, token failed"})
			return
		}

		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not authorized, subject missing"})
			return
		}

		c.Set(CallerIDKey, claims.Subject)
		c.Set(CallerRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin callers. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CallerRoleKey)
		if !exists || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden, admin role required"})
			return
		}
		c.Next()
	}
}

// CallerID returns the verified caller identity set by RequireAuth.
func CallerID(c *gin.Context) string {
	return c.GetString(CallerIDKey)
}
