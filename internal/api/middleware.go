package api

import (
	"errors"
	"net/http"

	"evermart/media-service/internal/auth"

	"github.com/gin-gonic/gin"
)

// Header pair asserted by calling services; verified remotely.
const (
	HeaderServiceName = "X-Service-Name"
	HeaderServiceKey  = "X-Service-Key"
)

// ServiceAuthMiddleware creates a Gin middleware that verifies the
// service header pair against the remote verification endpoint.
func ServiceAuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(HeaderServiceName)
		key := c.GetHeader(HeaderServiceKey)
		if name == "" || key == "" {
			abortWithError(c, http.StatusUnauthorized, "Service credentials are missing")
			return
		}

		if err := verifier.Verify(c.Request.Context(), name, key); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				abortWithError(c, http.StatusUnauthorized, "Invalid service credentials")
			} else {
				abortWithError(c, http.StatusServiceUnavailable, "Unable to verify service credentials")
			}
			return
		}

		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
