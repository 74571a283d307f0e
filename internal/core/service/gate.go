package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agendaav/room-booking/internal/api/metrics"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// TokenVerifier is the part of TokenService the gate depends on.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.TokenClaims, error)
}

// Gate resolves bearer tokens to users for every protected route.
type Gate struct {
	tokens TokenVerifier
	users  ports.UserRepository
	log    zerolog.Logger
}

func NewGate(tokens TokenVerifier, users ports.UserRepository, log zerolog.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, log: log}
}

// Authenticate runs, in order: revocation check, signature/expiry check,
// subject extraction, user lookup. The returned user has no password hash.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := g.tokens.Verify(ctx, token)
	if err != nil {
		if reason := domain.UnauthorizedReason(err); reason != "" {
			metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
			g.log.Debug().Str("reason", reason).Msg("token rejected")
		}
		return nil, err
	}

	if !primitive.IsValidObjectID(claims.UserID) {
		metrics.AuthFailuresTotal.WithLabelValues("missing_subject").Inc()
		return nil, domain.ErrMissingSubject
	}

	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("user_not_found").Inc()
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user.Public(), nil
}
