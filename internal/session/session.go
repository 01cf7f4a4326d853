// Package session issues and validates the signed bearer tokens that
// identify logged-in users. Tokens are HS256 JWTs carrying the user's
// record ID and role; verification is strict about algorithm and
// issuer so a token minted elsewhere never authenticates here.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("session token expired")
	// ErrInvalidSignature indicates the signature does not match.
	ErrInvalidSignature = errors.New("session token signature invalid")
	// ErrInvalidToken covers every other parse or claim failure.
	ErrInvalidToken = errors.New("session token invalid")
)

// Claims are the validated contents of a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates session tokens with a shared secret.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// ManagerConfig configures a session Manager.
type ManagerConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time // defaults to time.Now
}

// NewManager creates a session Manager. The secret must be non-empty
// and the TTL positive.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("session issuer is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    now,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a session token for the user. Returns the signed token
// and its expiry.
func (m *Manager) Issue(userID, role string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate parses and verifies a session token, returning its claims.
func (m *Manager) Validate(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrInvalidSignature
	default:
		return ErrInvalidToken
	}
}
