// internal/auth/jwt.go
package auth

import (
	"errors"
	"expense-ledger/internal/config"
	"expense-ledger/internal/domain"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerPrefix is stripped from the Authorization header before verification.
const BearerPrefix = "Bearer "

type TokenService struct {
	secretKey []byte
	expiresIn time.Duration
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		secretKey: []byte(cfg.JWTSecret),
		expiresIn: cfg.JWTExpiresIn,
	}
}

// GenerateToken signs an HS256 token whose subject is the account id.
func (s *TokenService) GenerateToken(userID int64, email string) (string, error) {
	if len(s.secretKey) == 0 {
		return "", domain.ErrMisconfiguredSigningSecret
	}

	now := time.Now()
	expTime := now.Add(s.expiresIn)
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   expTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}
	slog.Info("JWT generated", "user_id", userID, "expires_at", expTime.Format(time.DateTime))
	return tokenStr, nil
}

// Validate turns an Authorization header value into an identity.
// Every call verifies signature and expiry again; nothing is cached.
func (s *TokenService) Validate(authHeader string) (domain.Identity, error) {
	if authHeader == "" {
		return domain.Identity{}, domain.ErrMissingCredential
	}
	if len(s.secretKey) == 0 {
		slog.Error("JWT_SECRET is not configured")
		return domain.Identity{}, domain.ErrMisconfiguredSigningSecret
	}

	tokenStr := strings.TrimPrefix(authHeader, BearerPrefix)

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		slog.Debug("JWT rejected", "error", err)
		return domain.Identity{}, domain.ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, domain.ErrInvalidCredential
	}

	userID, ok := subjectID(claims["sub"])
	if !ok {
		return domain.Identity{}, domain.ErrInvalidCredential
	}
	slog.Debug("JWT parsed successfully", "user_id", userID)
	return domain.Identity{UserID: userID}, nil
}

// subjectID accepts the subject as a decimal string or a JSON number.
func subjectID(sub any) (int64, bool) {
	var id int64
	switch v := sub.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		id = int64(v)
	default:
		return 0, false
	}
	return id, id > 0
}
