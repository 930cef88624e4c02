package handlers

import (
	"net/http"
	"time"

	"github.com/damacus/s3-browser/internal/middleware"
	"github.com/damacus/s3-browser/internal/services"
	"github.com/damacus/s3-browser/internal/utils"
	"github.com/labstack/echo/v4"
)

// SessionLifetime is how long a credential cookie stays valid.
const SessionLifetime = 24 * time.Hour

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Index renders the landing page with the credential form
func (h *AuthHandler) Index(c echo.Context) error {
	token, _ := c.Get(middleware.CSRFContextKey).(string)
	_, signedIn := c.Get(utils.ContextKeyCreds).(*services.Credentials)
	return c.Render(http.StatusOK, "index", map[string]interface{}{
		"CSRFToken": token,
		"SignedIn":  signedIn,
	})
}

// SetCredentials stores the submitted key pair in the session cookie.
// The pair is not checked here; the first backend call will reject bad keys.
func (h *AuthHandler) SetCredentials(c echo.Context) error {
	creds := services.Credentials{
		AccessKey: c.FormValue("accessKey"),
		SecretKey: c.FormValue("secretKey"),
	}

	encrypted, err := h.authService.EncryptCredentials(creds)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session").SetInternal(err)
	}

	cookie := new(http.Cookie)
	cookie.Name = utils.CookieName
	cookie.Value = encrypted
	cookie.Expires = time.Now().Add(SessionLifetime)
	cookie.MaxAge = int(SessionLifetime / time.Second)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteStrictMode
	cookie.Secure = requestIsSecure(c)
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, "/buckets")
}

// Logout clears the session
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = utils.CookieName
	cookie.Value = ""
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	cookie.MaxAge = -1
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteStrictMode
	cookie.Secure = requestIsSecure(c)
	c.SetCookie(cookie)
	return c.Redirect(http.StatusSeeOther, "/")
}
