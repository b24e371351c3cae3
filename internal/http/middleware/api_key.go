package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const (
	ctxClientID = "client_id"

	// Anonymous is the client of every request when no API keys are configured.
	Anonymous = "anonymous"
)

// ClientIDFromCtx extracts the authenticated client set by APIKeyMiddleware.
func ClientIDFromCtx(c echo.Context) (string, bool) {
	id, ok := c.Get(ctxClientID).(string)
	return id, ok && id != ""
}

// ClientID is a stable, non-reversible label for an API key.
func ClientID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}

// APIKeyMiddleware authenticates requests using X-API-Key header against a
// static key set. With no keys configured every request passes as Anonymous.
func APIKeyMiddleware(keys []string) echo.MiddlewareFunc {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed = append(allowed, []byte(k))
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				c.Set(ctxClientID, Anonymous)
				return next(c)
			}

			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			if !known(allowed, []byte(key)) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set(ctxClientID, ClientID(key))
			return next(c)
		}
	}
}

func known(allowed [][]byte, key []byte) bool {
	found := 0
	for _, k := range allowed {
		found |= subtle.ConstantTimeCompare(k, key)
	}
	return found == 1
}
