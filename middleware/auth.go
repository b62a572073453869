package middleware

import (
	"net/http"
	"strings"

	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// ContextKeyClaims is the context key for the validated token claims
	ContextKeyClaims = "claims"
	bearerPrefix     = "Bearer "
)

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// signed with secret
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := services.ParseToken(secret, strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				services.LogSecurityEvent("TOKEN_REJECTED", "invalid token from "+c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// GetClaims returns the claims stored by RequireAuth, or nil
func GetClaims(c echo.Context) *services.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*services.Claims)
	return claims
}
