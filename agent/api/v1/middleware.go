package v1

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
)

// AuthMiddleware validates Bearer or Basic auth against tokens (token -> caller
// name) and stores the caller name under "caller".
func AuthMiddleware(tokens map[string]string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				c.Response().Header().Set("WWW-Authenticate", `Basic realm="nfs-manager"`)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error: "missing authorization header",
					Code:  "UNAUTHORIZED",
				})
			}

			scheme, value, ok := strings.Cut(auth, " ")
			if !ok {
				return unauthorized(c)
			}

			var provided string
			switch scheme {
			case "Bearer":
				provided = value
			case "Basic":
				decoded, err := base64.StdEncoding.DecodeString(value)
				if err != nil {
					return unauthorized(c)
				}
				_, pass, ok := strings.Cut(string(decoded), ":")
				if !ok {
					return unauthorized(c)
				}
				provided = pass
			default:
				return unauthorized(c)
			}

			caller, ok := lookupToken(tokens, provided)
			if !ok {
				return unauthorized(c)
			}
			c.Set("caller", caller)

			return next(c)
		}
	}
}

func lookupToken(tokens map[string]string, provided string) (string, bool) {
	var caller string
	found := false
	for token, name := range tokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(provided)) == 1 {
			caller, found = name, true
		}
	}
	return caller, found
}

func unauthorized(c *echo.Context) error {
	c.Response().Header().Set("WWW-Authenticate", `Basic realm="nfs-manager"`)
	return c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error: "invalid auth token",
		Code:  "UNAUTHORIZED",
	})
}
