package auth

import (
	"context"
	"errors"
	"expense-ledger/internal/config"
	"expense-ledger/internal/domain"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestTokenService(secret string) *TokenService {
	return NewTokenService(config.Config{JWTSecret: secret, JWTExpiresIn: time.Hour})
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	ts := newTestTokenService(testSecret)

	token, err := ts.GenerateToken(42, "a@example.com")
	require.NoError(t, err)

	id, err := ts.Validate(BearerPrefix + token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.UserID)
}

func TestValidate_Failures(t *testing.T) {
	ts := newTestTokenService(testSecret)
	future := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"empty header", "", domain.ErrMissingCredential},
		{"garbage", "Bearer not-a-jwt", domain.ErrInvalidCredential},
		{"wrong secret", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "1", "exp": future}), domain.ErrInvalidCredential},
		{"expired", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()}), domain.ErrInvalidCredential},
		{"no expiry", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "1"}), domain.ErrInvalidCredential},
		{"no subject", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future}), domain.ErrInvalidCredential},
		{"zero subject", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "0", "exp": future}), domain.ErrInvalidCredential},
		{"non numeric subject", "Bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "alice", "exp": future}), domain.ErrInvalidCredential},
		{"lowercase scheme", "bearer " + signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "1", "exp": future}), domain.ErrInvalidCredential},
		{"other hmac", "Bearer " + signClaims(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "1", "exp": future}), domain.ErrInvalidCredential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.Validate(tc.header)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate_NumericSubject(t *testing.T) {
	ts := newTestTokenService(testSecret)
	token := signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := ts.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UserID)
}

func TestValidate_MissingSecret(t *testing.T) {
	ts := newTestTokenService("")

	_, err := ts.Validate("Bearer whatever")
	assert.ErrorIs(t, err, domain.ErrMisconfiguredSigningSecret)

	// an absent header is still reported as a client error first
	_, err = ts.Validate("")
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = ts.GenerateToken(1, "a@example.com")
	assert.ErrorIs(t, err, domain.ErrMisconfiguredSigningSecret)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("strongpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "strongpassword", hash)
	assert.True(t, CheckPassword(hash, "strongpassword"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

type accountFinderFunc func(ctx context.Context, id int64) (*domain.Account, error)

func (f accountFinderFunc) FindAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	return f(ctx, id)
}

func TestResolver(t *testing.T) {
	r := NewResolver(accountFinderFunc(func(_ context.Context, id int64) (*domain.Account, error) {
		switch id {
		case 1:
			return &domain.Account{ID: 1, Email: "a@example.com"}, nil
		case 2:
			return nil, errors.New("db down")
		default:
			return nil, nil
		}
	}))
	ctx := context.Background()

	acc, err := r.Resolve(ctx, domain.Identity{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", acc.Email)

	_, err = r.Resolve(ctx, domain.Identity{UserID: 99})
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)

	_, err = r.Resolve(ctx, domain.Identity{UserID: 2})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrIdentityNotFound)
}
