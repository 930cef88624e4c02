package middleware

import (
	"github.com/damacus/s3-browser/internal/services"
	"github.com/damacus/s3-browser/internal/utils"
	"github.com/labstack/echo/v4"
)

// SessionMiddleware opens the session cookie and stores the credential pair
// in the echo context. Requests without a usable cookie carry no credentials;
// handlers decide what that means.
func SessionMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(utils.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			creds, err := authService.DecryptCredentials(cookie.Value)
			if err != nil {
				// Invalid cookie - clear it so the browser stops sending it
				cookie.Value = ""
				cookie.Path = "/"
				cookie.MaxAge = -1
				cookie.HttpOnly = true
				c.SetCookie(cookie)
				return next(c)
			}

			c.Set(utils.ContextKeyCreds, creds)
			return next(c)
		}
	}
}
