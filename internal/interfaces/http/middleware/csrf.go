package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quillstore/quill/internal/shared/utils"
)

const (
	// CSRFTokenCookie is the double-submit cookie name.
	CSRFTokenCookie = "csrf_token"

	// CSRFTokenHeader is the header the frontend echoes the cookie into.
	CSRFTokenHeader = "X-CSRF-Token"
)

// csrfPrefixPaths lists path prefixes exempt from CSRF validation.
// Webhooks are authenticated by HMAC signature, not cookies, so the
// double-submit check does not apply to them.
var csrfPrefixPaths = []string{
	"/webhooks/",
}

// CSRF validates mutating requests using the Double Submit Cookie
// pattern: the csrf_token cookie must match the X-CSRF-Token header.
// Safe methods (GET, HEAD, OPTIONS) are always skipped, as are
// requests authenticated purely by bearer token (no session cookie to
// ride on).
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range csrfPrefixPaths {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		cookieToken, err := c.Cookie(CSRFTokenCookie)
		if err != nil || cookieToken == "" {
			// Header-token requests carry no ambient credentials.
			if strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
				c.Next()
				return
			}
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token")
			c.Abort()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeader)
		if headerToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			utils.ErrorResponse(c, http.StatusForbidden, "invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// isSafeMethod returns true for HTTP methods that do not mutate state.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
