// README: Auth middleware: bearer token -> actor id -> effective role, resolved per request.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vtc/internal/infra"
	"vtc/internal/modules/access"
	"vtc/internal/modules/role"
	"vtc/internal/types"
)

const (
	ctxCallerUID   = "caller_uid"
	ctxTokenGrants = "token_grants"
	ctxCallerRole  = "caller_role"
)

// RoleResolver is satisfied by *role.Service.
type RoleResolver interface {
	Effective(ctx context.Context, actorID string, tokenGrants []string) (role.Role, error)
}

// Auth verifies the bearer token and resolves the caller's effective role
// from stored grants plus the grants the token carries. Nothing is cached
// between requests.
func Auth(verifier infra.TokenVerifier, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil || tok == nil || tok.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		grants := tok.Grants()
		effective, err := roles.Effective(c.Request.Context(), tok.UID, grants)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Set(ctxCallerUID, tok.UID)
		c.Set(ctxTokenGrants, grants)
		c.Set(ctxCallerRole, effective)
		c.Next()
	}
}

// Require lets the request through only if the caller's effective role may
// invoke op. Denials carry the landing area the caller should be sent to.
func Require(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := access.Check(CallerRole(c), op)
		if !d.Permitted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "redirect": d.RedirectHint})
			return
		}
		c.Next()
	}
}

// CallerUID returns the verified actor id, or "" on unauthenticated routes.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxCallerUID)
}

// CallerRole returns the effective role, defaulting to role.User.
func CallerRole(c *gin.Context) role.Role {
	if v, ok := c.Get(ctxCallerRole); ok {
		if r, ok := v.(role.Role); ok {
			return r
		}
	}
	return role.User
}

func Caller(c *gin.Context) role.Actor {
	return role.Actor{ID: types.ID(CallerUID(c)), Role: CallerRole(c)}
}
