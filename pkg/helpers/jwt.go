package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/faizi-7/graveyard-back/config"
)

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrSigningKeyMissing = errors.New("token signing key is missing")
)

// TokenClass selects the signing key, lifetime and purpose of a token.
type TokenClass int

const (
	TokenSession TokenClass = iota
	TokenEmailVerification
	TokenPasswordReset
)

func (c TokenClass) purpose() string {
	switch c {
	case TokenEmailVerification:
		return "verify_email"
	case TokenPasswordReset:
		return "password_reset"
	default:
		return "session"
	}
}

// Claims is the payload of every token class.
type Claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenAuthority mints and verifies stateless HS256 tokens. It keeps no
// record of issued tokens: a token stays valid until it expires.
type TokenAuthority struct {
	cfg config.TokenConfig
	now func() time.Time
}

type TokenOption func(*TokenAuthority)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(a *TokenAuthority) { a.now = now }
}

func NewTokenAuthority(cfg config.TokenConfig, opts ...TokenOption) *TokenAuthority {
	a := &TokenAuthority{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *TokenAuthority) secret(c TokenClass) []byte {
	if c == TokenPasswordReset {
		return []byte(a.cfg.ResetSecret)
	}
	return []byte(a.cfg.SessionSecret)
}

// ttl is zero for email verification: those tokens carry no exp claim.
func (a *TokenAuthority) ttl(c TokenClass) time.Duration {
	switch c {
	case TokenSession:
		return a.cfg.SessionTTL
	case TokenPasswordReset:
		return a.cfg.ResetTTL
	default:
		return 0
	}
}

// Issue signs a token of class c for email. expiresAt is zero when the class
// has no expiry.
func (a *TokenAuthority) Issue(c TokenClass, email string) (token string, expiresAt time.Time, err error) {
	secret := a.secret(c)
	if len(secret) == 0 {
		return "", time.Time{}, ErrSigningKeyMissing
	}
	now := a.now()
	claims := &Claims{
		Email:   email,
		Purpose: c.purpose(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl := a.ttl(c); ttl > 0 {
		expiresAt = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, expiresAt, nil
}

// Verify checks signature, expiry and purpose and returns the claims.
// Failures wrap ErrTokenExpired, ErrTokenInvalid or ErrSigningKeyMissing.
func (a *TokenAuthority) Verify(c TokenClass, token string) (*Claims, error) {
	secret := a.secret(c)
	if len(secret) == 0 {
		return nil, ErrSigningKeyMissing
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.Purpose != c.purpose() || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
