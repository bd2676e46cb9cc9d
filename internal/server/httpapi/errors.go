package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lulemo/habitlock/internal/apperr"
)

var statusByError = []struct {
	sentinel error
	status   int
}{
	{apperr.ErrValidation, http.StatusBadRequest},
	{apperr.ErrAuthentication, http.StatusUnauthorized},
	{apperr.ErrIntegrity, http.StatusUnauthorized},
	{apperr.ErrAuthorization, http.StatusForbidden},
	{apperr.ErrNotFound, http.StatusNotFound},
	{apperr.ErrAlreadyExists, http.StatusConflict},
	{apperr.ErrExpiredOrConsumed, http.StatusGone},
}

// writeError maps an application error to a status and a {"error": msg}
// body. Unmapped errors become opaque 500s; their detail goes to the log,
// not to the client.
func writeError(c *gin.Context, err error) {
	for _, m := range statusByError {
		if errors.Is(err, m.sentinel) {
			c.JSON(m.status, gin.H{"error": err.Error()})
			return
		}
	}
	c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
