package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/api/metrics"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

const DefaultTokenTTL = 60 * time.Minute

// TokenService issues and verifies HS256 access tokens and keeps the
// revocation set. Verification consults the revocation set before touching
// the signature.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked ports.RevokedTokenRepository
	cache   ports.RevocationCache // optional
	now     func() time.Time
	log     zerolog.Logger
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithRevocationCache puts a fast lookup in front of the durable revocation set.
func WithRevocationCache(cache ports.RevocationCache) TokenOption {
	return func(s *TokenService) { s.cache = cache }
}

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, revoked ports.RevokedTokenRepository, log zerolog.Logger, opts ...TokenOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token whose subject is userID and which expires TTL from now.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: %w", domain.ErrMissingSubject)
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify rejects revoked tokens first, then checks signature, algorithm and
// expiry, then requires a subject.
func (s *TokenService) Verify(ctx context.Context, token string) (domain.TokenClaims, error) {
	if token == "" {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}

	revoked, err := s.IsRevoked(ctx, token)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	if revoked {
		return domain.TokenClaims{}, domain.ErrTokenRevoked
	}

	claims, err := s.parse(token, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return domain.TokenClaims{}, domain.ErrMissingSubject
	}
	return toTokenClaims(claims), nil
}

// Revoke adds token to the revocation set. Tokens that do not carry our
// signature are rejected; expired ones are accepted and simply recorded.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return domain.ErrTokenInvalid
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoked.Revoke(ctx, domain.RevokedToken{
		Token:     token,
		RevokedAt: now.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.TokensRevokedTotal.Inc()

	if s.cache != nil {
		if ttl := expiresAt.Sub(now); ttl > 0 {
			if err := s.cache.MarkRevoked(ctx, token, ttl); err != nil {
				s.log.Warn().Err(err).Msg("failed to cache token revocation")
			}
		}
	}
	return nil
}

// IsRevoked checks the cache, then the durable set. Cache failures are
// logged and treated as a miss.
func (s *TokenService) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.IsRevoked(ctx, token)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation cache lookup failed, falling back to store")
		} else if hit {
			return true, nil
		}
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes revocation records whose token can no longer verify.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.revoked.PurgeExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	metrics.RevokedTokensPurgedTotal.Add(float64(n))
	return n, nil
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token not valid")
	}
	return claims, nil
}

func toTokenClaims(c *jwt.RegisteredClaims) domain.TokenClaims {
	out := domain.TokenClaims{UserID: c.Subject, TokenID: c.ID}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
