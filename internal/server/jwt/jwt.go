package jwttoken

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carddemo/internal/platform/middleware"
	"carddemo/pkg/apierrors"
)

// AccessTokenClaims are the JWT claims carried by CardDemo access tokens.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// Service handles access token creation and validation plus opaque refresh
// token generation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

// NewService constructs a token service with the given HS256 signing key.
func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "carddemo",
		tokenTTL:   tokenTTL,
	}
}

// TokenTTL reports the configured access token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// GenerateAccessToken signs a new access token for the given user.
func (s *Service) GenerateAccessToken(userID, userType string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}
	jti := hex.EncodeToString(b)
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessTokenClaims{
		UserID:   userID,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies a token, returning the claims the
// middleware consumes. It satisfies middleware.TokenValidator.
func (s *Service) ValidateAccessToken(tokenString string) (*middleware.TokenClaims, error) {
	if tokenString == "" {
		return nil, apierrors.New(apierrors.CodeUnauthorized, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierrors.New(apierrors.CodeUnauthorized, "token expired")
		}
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok {
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Issuer != s.issuer {
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token issuer")
	}

	return &middleware.TokenClaims{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		JTI:      claims.ID,
	}, nil
}

// CreateRefreshToken returns an opaque random token for the refresh flow.
func (s *Service) CreateRefreshToken() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
