package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Rahel786/QuickHire-sub000/services"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

// Context keys set by Auth and RequireRole.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (utils.Identity, error)
}

// RoleResolver looks up the stored role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

// Auth verifies the Authorization: Bearer <token> header and stores the
// user id and email in the Gin context. It never touches the database.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header format must be Bearer {token}"})
			return
		}

		identity, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextEmail, identity.Email)
		c.Next()
	}
}

// OptionalAuth behaves like Auth when a bearer token is present and lets
// anonymous requests through untouched. An invalid token is still rejected.
func OptionalAuth(tokens TokenVerifier) gin.HandlerFunc {
	strict := Auth(tokens)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		strict(c)
	}
}

// RequireRole resolves the caller's role from the credential store and
// allows the request only for one of roles. It must run after Auth. A caller
// whose account cannot be found is refused; store failures are a 500.
func RequireRole(resolver RoleResolver, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		role, err := resolver.RoleOf(c.Request.Context(), userID)
		if err != nil {
			switch services.ErrorCode(err) {
			case services.CodeNotFound, services.CodeUnauthorized:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			default:
				utils.LogError(slog.Default(), "role lookup failed", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Set(ContextRole, role)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// ResolveRole stores the caller's role in the context when it can be
// resolved, without rejecting anyone. Handlers use it for owner-or-admin
// checks.
func ResolveRole(resolver RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetString(ContextUserID); userID != "" {
			if role, err := resolver.RoleOf(c.Request.Context(), userID); err == nil {
				c.Set(ContextRole, role)
			}
		}
		c.Next()
	}
}
