package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserIDKey   = "userID"
	CtxUserEmail   = "userEmail"
	CtxUserName    = "userName"
	CtxUserRoleKey = "userRole"
)

// SessionResolver turns a session token into an identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (entity.Identity, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func abortWith(c *gin.Context, err error) {
	response.Fail(c, errs.HTTPStatus(err), errs.PublicMessage(err), response.ErrorBody{Kind: errs.KindOf(err).String()})
}

// Auth validates the bearer session token and sets userID, userEmail,
// userName and userRole in the Gin context on success.
func Auth(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWith(c, errs.Unauthorized("missing bearer token"))
			return
		}
		id, err := sessions.ResolveSession(c.Request.Context(), token)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxUserEmail, id.Email)
		c.Set(CtxUserName, id.Username)
		c.Set(CtxUserRoleKey, string(id.Role))
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if entity.Role(c.GetString(CtxUserRoleKey)) != role {
			abortWith(c, errs.Forbidden("requires the "+string(role)+" role"))
			return
		}
		c.Next()
	}
}
