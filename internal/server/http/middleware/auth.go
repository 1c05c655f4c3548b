package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
)

const (
	// PrincipalContextKey is a gin context key for the authenticated caller.
	PrincipalContextKey = "principal"
	authCookieName      = "prowriters_token"
	tokenQueryParam     = "token"
)

// TokenParser resolves bearer tokens into principals.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Principal, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortJSON(c, http.StatusUnauthorized, "authentication required")
			return
		}

		principal, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abortJSON(c, http.StatusUnauthorized, "invalid token")
				return
			}
			_ = c.Error(err)
			abortJSON(c, http.StatusInternalServerError, "internal error")
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireStaff lets only support and admin users through. It must run after
// AuthRequired.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok || !principal.IsStaff() {
			abortJSON(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the caller stored by AuthRequired.
func CurrentPrincipal(c *gin.Context) (pkgAuth.Principal, bool) {
	val, ok := c.Get(PrincipalContextKey)
	if !ok {
		return pkgAuth.Principal{}, false
	}
	principal, ok := val.(pkgAuth.Principal)
	return principal, ok
}

// extractToken reads the bearer header, then the cookie. Websocket upgrades
// cannot carry headers from browsers, so they may pass the token as a query
// parameter.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil && cookie != "" {
		return cookie
	}
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query(tokenQueryParam)
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
