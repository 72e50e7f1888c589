package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elskow/sphere-accounts/internal/config"
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService fails when the signing secret or expiration is missing so
// that a misconfigured process never starts serving.
func NewTokenService(cfg *config.AuthConfig) (*TokenService, error) {
	if cfg == nil {
		return nil, errors.New("auth config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		expiration: cfg.TokenExpiration,
		now:        time.Now,
	}, nil
}

// Issue signs a token for the given identity.
func (s *TokenService) Issue(id uuid.UUID, username, email string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   id,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token, ErrTokenExpired for an expired
// one and ErrTokenInvalid for anything else.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// jwt checks the signature before the expiry, so an expired error
		// implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
