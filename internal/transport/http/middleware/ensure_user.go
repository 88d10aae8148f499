package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	ctxlog "github.com/ErlanBelekov/pharmacy-auth/internal/log"
	"github.com/gin-gonic/gin"
)

type userFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// EnsureUser runs after Auth. It loads the user named by the token's user_id
// and rejects the request when the account no longer exists.
func EnsureUser(users userFinder, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "ensure_user")
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || claims.UserID == "" {
			abort(c, http.StatusUnauthorized, errUserIDMissing)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				abort(c, http.StatusUnauthorized, errNotAuthorized)
				return
			}
			logger.ErrorContext(c.Request.Context(), "load user", "error", err)
			abort(c, http.StatusInternalServerError, errInternalServer)
			return
		}

		SetUser(c, user)
		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// SetUser stores the authenticated user for downstream handlers.
func SetUser(c *gin.Context, u *domain.User) {
	c.Set(userKey, u)
}

// UserFrom returns the user loaded by EnsureUser, or nil.
func UserFrom(c *gin.Context) *domain.User {
	v, _ := c.Get(userKey)
	u, _ := v.(*domain.User)
	return u
}
