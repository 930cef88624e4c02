package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey is where the token for the current request is stored.
const CSRFContextKey = "csrf"

// CSRF protects state-changing requests. The token is read from the
// X-CSRF-Token header or the _csrf form field.
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		ContextKey:     CSRFContextKey,
		CookieName:     "csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			switch c.Request().URL.Path {
			case "/health", "/metrics":
				return true
			}
			return false
		},
	})
}
