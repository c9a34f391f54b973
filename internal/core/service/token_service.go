package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

const defaultTokenTTL = time.Hour

// TokenService signs HS256 JWTs whose subject is the account email.
// Its configuration is fixed at construction and safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenService = (*TokenService)(nil)

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL reports the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for identity that expires after the configured TTL.
func (s *TokenService) Issue(identity string) (string, error) {
	return s.IssueUntil(identity, s.now().Add(s.ttl))
}

// IssueUntil signs a token for identity with an absolute expiration instant.
func (s *TokenService) IssueUntil(identity string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAndExtractIdentity checks signature and expiry and returns the subject.
// Any identity passed to Issue, including the empty string, round-trips.
func (s *TokenService) VerifyAndExtractIdentity(token string) (string, error) {
	claims, err := s.parse(token, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	// An absent sub claim is the empty identity; the directory never knows it.
	return claims.Subject, nil
}

// IsValidFor reports whether token was issued for identity and has not expired.
// credentialVersion is accepted for interface symmetry with the directory but
// tokens are not bound to it: changing a password does not revoke tokens.
func (s *TokenService) IsValidFor(token, identity, credentialVersion string) bool {
	_ = credentialVersion
	subject, err := s.VerifyAndExtractIdentity(token)
	return err == nil && subject == identity
}

// ExpirationOf returns the absolute expiry encoded in a correctly signed token,
// whether or not it has already passed.
func (s *TokenService) ExpirationOf(token string) (time.Time, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp", domain.ErrMalformedToken)
	}
	return claims.ExpiresAt.Time, nil
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
