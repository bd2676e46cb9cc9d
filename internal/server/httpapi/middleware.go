package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/token"
)

const userContextKey = "habitlock.sessionUser"

// BearerAuth validates the Authorization header and stores the token subject
// in the request context. Validation is purely cryptographic; no database
// lookup happens here.
func BearerAuth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		subject, err := tokens.ValidateAccess(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(userContextKey, subject)
		c.Next()
	}
}

// currentUser returns the subject stored by BearerAuth. Only call it from
// handlers behind the middleware.
func currentUser(c *gin.Context) *models.SessionUser {
	return c.MustGet(userContextKey).(*models.SessionUser)
}
