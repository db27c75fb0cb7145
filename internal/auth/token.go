package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// TokenTTL is the fixed validity window of every issued token.
const TokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired is returned once the validity window has elapsed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers malformed tokens, bad signatures and unusable claims.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Identity is what a token asserts about its bearer.
type Identity struct {
	UserID     string
	Email      string
	ActiveRole domain.Role
}

// Claims describes JWT payload.
type Claims struct {
	UserID     string      `json:"uid"`
	Email      string      `json:"email"`
	ActiveRole domain.Role `json:"active_role"`
	jwt.RegisteredClaims
}

// Identity returns the asserted identity.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, ActiveRole: c.ActiveRole}
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Issue signs a token for the identity and returns it with its expiry.
func (tm *TokenManager) Issue(id Identity) (string, time.Time, error) {
	if id.UserID == "" || !id.ActiveRole.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: cannot issue token for %q with role %q", id.UserID, id.ActiveRole)
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		UserID:     id.UserID,
		Email:      id.Email,
		ActiveRole: id.ActiveRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Verify validates the token and returns its claims. Failures wrap either
// ErrTokenExpired or ErrTokenInvalid.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenInvalid)
	}
	if claims.UserID == "" || !claims.ActiveRole.Valid() {
		return nil, fmt.Errorf("%w: missing identity claims", ErrTokenInvalid)
	}
	return claims, nil
}
