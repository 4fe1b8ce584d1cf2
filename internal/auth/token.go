package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of login-issued tokens unless configured otherwise.
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidToken covers every verification failure, expiry included.
var ErrInvalidToken = errors.New("invalid token")

var signingMethod = jwt.SigningMethodHS256

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject   int64
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 signed bearer tokens.
// The secret is fixed for the lifetime of the service; build a new one to rotate it.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewTokenService creates a TokenService. A nil clock means the system clock.
func NewTokenService(secret []byte, ttl time.Duration, clock Clock) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenService{secret: key, ttl: ttl, clock: clock}, nil
}

// TTL returns the default token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token for subject using the default lifetime.
func (s *TokenService) Issue(subject int64) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL creates a token for subject that expires ttl from now.
func (s *TokenService) IssueWithTTL(subject int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subject, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	subject, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:   subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
