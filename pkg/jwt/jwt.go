package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identifies the principal of a token. Tenant tokens carry the
// subdomain they were issued for; platform admin tokens leave it empty.
type Claims struct {
	UserID    string `json:"id"`
	Subdomain string `json:"subdomain,omitempty"`
	gojwt.RegisteredClaims
}

// Validate is called by the parser after the registered claims pass.
func (c *Claims) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidClaims)
	}
	return nil
}

// Service signs and verifies HS256 tokens.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithIssuer sets the "iss" claim of issued tokens and requires it on parse.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a service. The key should be at least 32 bytes.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		signingKey: signingKey,
		ttl:        7 * 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromConfig creates a service from Config.
func NewFromConfig(cfg Config, opts ...Option) (*Service, error) {
	return New([]byte(cfg.Secret), append([]Option{WithTTL(cfg.TTL), WithIssuer(cfg.Issuer)}, opts...)...)
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for userID. subdomain is empty for platform tokens.
// Every token gets a unique "jti" so it can be revoked individually.
func (s *Service) Issue(userID, subdomain string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID,
		Subdomain: subdomain,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := s.Generate(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Generate signs arbitrary claims.
func (s *Service) Generate(claims gojwt.Claims) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse verifies token and decodes it into claims.
func (s *Service) Parse(token string, claims gojwt.Claims) error {
	if token == "" {
		return ErrMissingToken
	}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrInvalidClaims):
		return err
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}

// ParseClaims is Parse into Claims.
func (s *Service) ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if err := s.Parse(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
