// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Credential errors.
var (
	ErrMissingCredential          = errors.New("authorization header missing")
	ErrInvalidCredential          = errors.New("invalid or expired token")
	ErrMisconfiguredSigningSecret = errors.New("token signing secret is not configured")
)

// Lookup errors. ErrExpenseNotFound is also returned for expenses owned by
// someone else so callers cannot discover foreign ids.
var (
	ErrIdentityNotFound  = errors.New("user not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrNoExpensesInRange = errors.New("no expenses found for the given date range")
)

// Conflicts raised by the account and category collaborators.
var (
	ErrEmailTaken     = errors.New("email already in use")
	ErrCategoryExists = errors.New("category already exists")
	ErrBadCredentials = errors.New("invalid email or password")
)

// ErrNotAccountOwner is returned when a caller touches an account other
// than their own.
var ErrNotAccountOwner = errors.New("not allowed to modify another account")

// ErrStoreFailure matches any *StoreFailure via errors.Is.
var ErrStoreFailure = errors.New("internal storage failure")

// StoreFailure hides an unexpected persistence error behind a generic
// message. The cause stays reachable through Unwrap for logging.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, ErrStoreFailure.Error())
}

func (e *StoreFailure) Unwrap() error { return e.Err }

func (e *StoreFailure) Is(target error) bool { return target == ErrStoreFailure }

// IsDomainError reports whether err belongs to the client-visible taxonomy
// and must be returned unchanged.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrMissingCredential,
		ErrInvalidCredential,
		ErrMisconfiguredSigningSecret,
		ErrIdentityNotFound,
		ErrCategoryNotFound,
		ErrExpenseNotFound,
		ErrAccountNotFound,
		ErrNotAccountOwner,
		ErrNoExpensesInRange,
		ErrEmailTaken,
		ErrCategoryExists,
		ErrBadCredentials,
		ErrStoreFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Guard passes domain errors through and wraps everything else as a
// StoreFailure for op.
func Guard(op string, err error) error {
	if err == nil || IsDomainError(err) {
		return err
	}
	return &StoreFailure{Op: op, Err: err}
}
