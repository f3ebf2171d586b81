// internal/middleware/auth.go
package middleware

import (
	"context"
	"expense-ledger/internal/domain"
	"log/slog"

	"github.com/gin-gonic/gin"
)

const credentialKey = "credential"

// CarryCredential reads the Authorization header once per request and
// keeps it in the gin context. It does not validate anything: every
// service call re-validates the value it is handed.
func CarryCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(credentialKey, c.GetHeader("Authorization"))
		c.Next()
	}
}

// Credential returns the header stored by CarryCredential, or "" when absent.
func Credential(c *gin.Context) string {
	return c.GetString(credentialKey)
}

type CredentialValidator interface {
	Validate(authHeader string) (domain.Identity, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, id domain.Identity) (*domain.Account, error)
}

type AuthMiddleware struct {
	tokens   CredentialValidator
	accounts IdentityResolver
}

func NewAuthMiddleware(tokens CredentialValidator, accounts IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts}
}

// RequireAuth guards routes that are not ownership scoped (categories)
// but still need a valid token of a live account.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.tokens.Validate(Credential(c))
		if err == nil {
			_, err = m.accounts.Resolve(c.Request.Context(), id)
		}
		if err != nil {
			slog.Debug("Request rejected", "path", c.FullPath(), "error", err)
			WriteError(c, err)
			return
		}

		c.Set("user_id", id.UserID)
		c.Next()
	}
}
