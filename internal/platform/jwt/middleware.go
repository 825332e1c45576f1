// Package jwtmw provides the session token codec and the Gin authorization gate built on it.
package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo_backend/internal/feature/auth/domain/entity"
	"todo_backend/internal/feature/auth/usecase"
	"todo_backend/internal/platform/httperr"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// contextIdentity is the gin context key holding the resolved Identity.
const contextIdentity = "identity"

// Identity is the resolved caller of an authenticated request.
// It is built once by AuthRequired and read by handlers through IdentityFrom.
type Identity struct {
	UserID    uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenVerifier validates a session token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// UserFinder resolves a token subject to a stored user.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// AuthRequired returns a Gin middleware that admits only requests carrying a valid
// session cookie whose subject still resolves to an existing user.
func AuthRequired(tokens TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Read the session cookie
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			httperr.Abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		// 2. Verify signature and expiry
		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			slog.Warn("token verification failed", "error", err, "remote_addr", c.ClientIP())
			httperr.Abort(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		// 3. The account must still exist
		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				slog.Warn("token subject no longer exists", "user_id", userID, "remote_addr", c.ClientIP())
				httperr.Abort(c, http.StatusUnauthorized, "Not authorized, user not found")
				return
			}
			slog.Error("failed to resolve token subject", "error", err, "user_id", userID)
			httperr.Abort(c, http.StatusInternalServerError, httperr.MsgServerError)
			return
		}

		// 4. Attach the identity for downstream handlers
		c.Set(contextIdentity, Identity{
			UserID:    user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		})
		c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthRequired.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetIdentity attaches id to the request context.
// It exists for handler tests that bypass the gate.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(contextIdentity, id)
}
