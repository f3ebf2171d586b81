// internal/middleware/errors.go
package middleware

import (
	"errors"
	"expense-ledger/internal/domain"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// clientErrors are the errors whose message is safe to show, with their status.
var clientErrors = []struct {
	err    error
	status int
}{
	{domain.ErrMissingCredential, http.StatusUnauthorized},
	{domain.ErrInvalidCredential, http.StatusUnauthorized},
	{domain.ErrIdentityNotFound, http.StatusUnauthorized},
	{domain.ErrBadCredentials, http.StatusUnauthorized},
	{domain.ErrNotAccountOwner, http.StatusForbidden},
	{domain.ErrCategoryNotFound, http.StatusNotFound},
	{domain.ErrExpenseNotFound, http.StatusNotFound},
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrNoExpensesInRange, http.StatusNotFound},
	{domain.ErrEmailTaken, http.StatusConflict},
	{domain.ErrCategoryExists, http.StatusConflict},
}

// WriteError aborts the request with the status mapped from err. Anything
// not in clientErrors, the signing secret fault included, is a 500 with a
// generic body; the cause only goes to the log.
func WriteError(c *gin.Context, err error) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			c.AbortWithStatusJSON(ce.status, gin.H{"error": ce.err.Error()})
			return
		}
	}
	slog.Error("Request failed", "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id"))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
