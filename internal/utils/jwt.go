package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL is applied when a caller passes a non-positive TTL.
const DefaultAccessTTL = 60 * time.Minute

// ErrInvalidToken is returned for every token that fails validation.  The
// wrapped cause (bad signature, expired, malformed) is meant for logs only.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenManager signs and verifies HS256 access tokens with a single
// process-wide secret.  It holds no mutable state and is safe for
// concurrent use.
type TokenManager struct {
	secret []byte
}

// NewTokenManager returns a TokenManager bound to secret.  Rotating the
// secret invalidates every token issued before.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Issue builds and signs a token whose subject is subject and which expires
// at now+ttl.  The JWT carries the standard sub, exp and iat claims.
func (m *TokenManager) Issue(subject string, now time.Time, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now = now.UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: claims.ExpiresAt.Time}, nil
}

// Validate checks the signature of raw and that it has not expired at now.
// A token is expired once now reaches its exp claim.  On success the
// subject is returned; every failure wraps ErrInvalidToken.
func (m *TokenManager) Validate(raw string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	var claims jwt.RegisteredClaims
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
