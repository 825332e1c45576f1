package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	jwtmw "todo_backend/internal/platform/jwt"
)

// sessionMaxAge is the lifetime of the session cookie, matching the token's own expiry.
var sessionMaxAge = int(jwtmw.SessionTTL / time.Second)

// setSessionCookie writes the session token as an HTTP-only, secure, cross-site cookie.
func setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     jwtmw.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// clearSessionCookie overwrites the session cookie with an empty value expired on arrival (Max-Age=0).
// The server keeps no revocation list, so a copied token stays valid until its own expiry.
func clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     jwtmw.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
