package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/auth"
	"github.com/assetiq/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
	// ContextOrgID is the key for the caller's organization ID in gin context.
	ContextOrgID = "org_id"
)

// Auth returns a middleware that validates the identity-provider bearer
// token and sets user and org claims in context.
func Auth(validator *auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := validator.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextOrgID, claims.OrgID)
		c.Next()
	}
}

// RequireOrg returns a middleware that matches the caller's org claim
// against the :orgId path parameter. Cross-tenant requests are rejected
// before any handler runs.
func RequireOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("orgId"))
		if err != nil {
			response.BadRequest(c, "invalid organization id")
			c.Abort()
			return
		}
		claimOrg := c.MustGet(ContextOrgID).(uuid.UUID)
		if claimOrg != orgID {
			response.Forbidden(c, "not authorized for this organization")
			c.Abort()
			return
		}
		c.Next()
	}
}
