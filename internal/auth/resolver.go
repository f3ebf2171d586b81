// internal/auth/resolver.go
package auth

import (
	"context"
	"expense-ledger/internal/domain"
	"fmt"
)

// AccountFinder looks up live accounts; it returns nil, nil when the id is
// unknown or soft-deleted.
type AccountFinder interface {
	FindAccountByID(ctx context.Context, id int64) (*domain.Account, error)
}

// Resolver maps a verified identity to its account.
type Resolver struct {
	accounts AccountFinder
}

func NewResolver(accounts AccountFinder) *Resolver {
	return &Resolver{accounts: accounts}
}

func (r *Resolver) Resolve(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	acc, err := r.accounts.FindAccountByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("find account %d: %w", id.UserID, err)
	}
	if acc == nil {
		return nil, domain.ErrIdentityNotFound
	}
	return acc, nil
}
