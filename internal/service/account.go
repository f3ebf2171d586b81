// internal/service/account.go
package service

import (
	"context"
	"expense-ledger/internal/auth"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/storage"
	"fmt"
	"log/slog"
	"strings"
)

type TokenIssuer interface {
	GenerateToken(userID int64, email string) (string, error)
}

// AccountTokens issues credentials on login and validates them on the
// self-service calls.
type AccountTokens interface {
	TokenIssuer
	CredentialValidator
}

// AccountService registers accounts, issues credentials and lets an
// account owner manage their own account.
type AccountService struct {
	store    storage.AccountStorage
	tokens   AccountTokens
	resolver *auth.Resolver
}

func NewAccountService(store storage.AccountStorage, tokens AccountTokens) *AccountService {
	return &AccountService{store: store, tokens: tokens, resolver: auth.NewResolver(store)}
}

func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.Guard("register", err)
	}
	acc, err := s.store.CreateAccount(ctx, email, hash)
	if err != nil {
		return nil, domain.Guard("register", err)
	}
	slog.Info("Account registered", "user_id", acc.ID)
	return acc, nil
}

// Login checks the password and returns a signed token. Unknown emails and
// wrong passwords produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.store.FindAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", domain.Guard("login", err)
	}
	if acc == nil || !auth.CheckPassword(acc.PasswordHash, password) {
		return "", domain.ErrBadCredentials
	}

	token, err := s.tokens.GenerateToken(acc.ID, acc.Email)
	if err != nil {
		return "", domain.Guard("login", err)
	}
	return token, nil
}

func (s *AccountService) authorize(ctx context.Context, credential string) (domain.Identity, error) {
	id, err := s.tokens.Validate(credential)
	if err != nil {
		return domain.Identity{}, err
	}
	if _, err := s.resolver.Resolve(ctx, id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// requireOwner fails unless the caller is the account being modified.
func (s *AccountService) requireOwner(ctx context.Context, credential string, accountID int64) error {
	id, err := s.authorize(ctx, credential)
	if err != nil {
		return err
	}
	if id.UserID != accountID {
		slog.Warn("Account change by non-owner rejected", "user_id", id.UserID, "account_id", accountID)
		return domain.ErrNotAccountOwner
	}
	return nil
}

// List pages live accounts in creation order.
func (s *AccountService) List(ctx context.Context, credential string, page, limit int) (*domain.Page[domain.Account], error) {
	const op = "list accounts"

	if _, err := s.authorize(ctx, credential); err != nil {
		return nil, domain.Guard(op, err)
	}
	page, limit = NormalizePage(page, limit)
	accounts, total, err := s.store.ListAccounts(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	return domain.NewPage(accounts, total, page, limit), nil
}

func (s *AccountService) Get(ctx context.Context, credential string, accountID int64) (*domain.Account, error) {
	const op = "get account"

	if _, err := s.authorize(ctx, credential); err != nil {
		return nil, domain.Guard(op, err)
	}
	acc, err := s.store.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	if acc == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, domain.ErrAccountNotFound)
	}
	return acc, nil
}

// UpdatePassword re-hashes and stores a new password for the caller's own
// account.
func (s *AccountService) UpdatePassword(ctx context.Context, credential string, accountID int64, password string) (*domain.Account, error) {
	const op = "update account"

	if err := s.requireOwner(ctx, credential, accountID); err != nil {
		return nil, domain.Guard(op, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	acc, err := s.store.UpdateAccountPassword(ctx, accountID, hash)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	if acc == nil {
		return nil, fmt.Errorf("account %d: %w", accountID, domain.ErrAccountNotFound)
	}
	slog.Info("Account password updated", "user_id", accountID)
	return acc, nil
}

// Remove soft deletes the caller's own account. Its credentials stop
// resolving immediately; expenses stay in storage.
func (s *AccountService) Remove(ctx context.Context, credential string, accountID int64) (*domain.Confirmation, error) {
	const op = "remove account"

	if err := s.requireOwner(ctx, credential, accountID); err != nil {
		return nil, domain.Guard(op, err)
	}
	deleted, err := s.store.SoftDeleteAccount(ctx, accountID)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	if !deleted {
		return nil, fmt.Errorf("account %d: %w", accountID, domain.ErrAccountNotFound)
	}
	slog.Info("Account soft deleted", "user_id", accountID)
	return &domain.Confirmation{Message: fmt.Sprintf("User with ID %d has been soft deleted", accountID)}, nil
}
