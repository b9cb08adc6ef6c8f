package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned for every token that fails verification.
// Bad signatures, foreign algorithms, garbage and expired tokens all look
// the same to the caller.
var ErrInvalidToken = AuthError("Not authorized, invalid token")

// Claims represents the JWT claims
type Claims struct {
	IdentityID string `json:"userId"`
	jwt.StandardClaims
}

// SessionIssuer mints and verifies HS256 session tokens with one
// process-wide key and TTL.
type SessionIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionIssuer returns an issuer signing with key. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewSessionIssuer(key []byte, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{key: key, ttl: ttl, now: time.Now}
}

// WithClock replaces the issuer's clock. Used by tests.
func (s *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	s.now = now
	return s
}

// TTL returns the lifetime of issued tokens.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue generates a signed token for the identity id.
func (s *SessionIssuer) Issue(identityID string) (string, error) {
	issuedAt := s.now()
	claims := &Claims{
		IdentityID: identityID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify checks the token signature and expiry and returns its claims.
func (s *SessionIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Name},
		// expiry is checked below against the issuer clock
		SkipClaimsValidation: true,
	}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) || claims.IdentityID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsInvalidToken reports whether err came from a failed token verification.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
