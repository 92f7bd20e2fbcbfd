// Package jwt signs and verifies HS256 access tokens.
package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret      = errors.New("jwt: empty signing secret")
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrMissingSubject   = errors.New("jwt: token has no subject")
)

// Claims are the claims carried by an access token. Subject holds the
// user ID.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	gojwt.RegisteredClaims
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim written and required. Default: "inkwell".
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithTTL sets the lifetime of issued tokens. Default: 24h.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service issues and parses tokens signed with a shared secret.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Service. The secret must not be empty.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	s := &Service{
		secret: []byte(secret),
		issuer: "inkwell",
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the given user.
func (s *Service) Issue(userID, name, email string) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims := Claims{
		Name:  name,
		Email: email,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies token and returns its claims.
func (s *Service) Parse(token string) (*Claims, error) {
	var claims Claims
	_, err := gojwt.ParseWithClaims(token, &claims,
		func(*gojwt.Token) (any, error) { return s.secret, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.issuer),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return nil, errors.Join(ErrInvalidSignature, err)
	default:
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return &claims, nil
}
