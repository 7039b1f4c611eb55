package middlewares

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrustedMiddlewareHeader carries the authority string a trusted reverse
// proxy asserts when it performs authentication in front of the engine.
const TrustedMiddlewareHeader = "X-Surveyproxy-Auth"

// HasTrustedMiddlewareAuthority only lets requests through whose trusted
// middleware header matches the configured authority string. The engine
// stores and compares this string, the actual authentication lives in the
// proxy.
func HasTrustedMiddlewareAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(TrustedMiddlewareHeader)
		if got == "" {
			slog.Error("trusted middleware header missing")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "trusted middleware header missing"})
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(authority)) != 1 {
			slog.Error("trusted middleware header mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "trusted middleware header mismatch"})
			c.Abort()
			return
		}
		c.Set("authority", got)
		c.Next()
	}
}
