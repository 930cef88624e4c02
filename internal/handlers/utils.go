package handlers

import (
	"net/http"
	"net/url"
	"path"

	"github.com/damacus/s3-browser/internal/services"
	"github.com/damacus/s3-browser/internal/utils"
	"github.com/labstack/echo/v4"
)

// GetCredentials retrieves the session credentials from the context
func GetCredentials(c echo.Context) (*services.Credentials, error) {
	creds, ok := c.Get(utils.ContextKeyCreds).(*services.Credentials)
	if !ok || creds == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return creds, nil
}

// GetCredentialsOrRedirect retrieves credentials or redirects to the landing page.
// When ok is false the redirect has already been written and err is its result.
func GetCredentialsOrRedirect(c echo.Context) (creds *services.Credentials, ok bool, err error) {
	creds, err = GetCredentials(c)
	if err != nil {
		return nil, false, c.Redirect(http.StatusSeeOther, "/")
	}
	return creds, true, nil
}

// objectKeyParam returns the wildcard path segment as an unescaped object key.
func objectKeyParam(c echo.Context) string {
	key := c.Param("*")
	if c.Request().URL.RawPath == "" {
		return key
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		return unescaped
	}
	return key
}

// downloadURL builds the download link for a key, escaping each segment.
func downloadURL(bucket, key string) string {
	return (&url.URL{Path: path.Join("/download", bucket) + "/" + key}).EscapedPath()
}

// attachmentName is the filename offered to the browser: the last key segment.
func attachmentName(key string) string {
	name := path.Base(key)
	if name == "." || name == "/" {
		return "download"
	}
	return name
}

func requestIsSecure(c echo.Context) bool {
	req := c.Request()
	if req.TLS != nil {
		return true
	}

	return req.Header.Get("X-Forwarded-Proto") == "https"
}
