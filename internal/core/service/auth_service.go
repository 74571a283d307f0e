package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/api/metrics"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// PasswordHasher is implemented by CredentialStore.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenManager is the part of TokenService used for login and logout.
type TokenManager interface {
	Issue(userID string) (string, time.Time, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService implements registration, login and logout.
type AuthService struct {
	repo        ports.UserRepository
	hasher      PasswordHasher
	tokens      TokenManager
	adminEmails map[string]struct{}
	log         zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hasher PasswordHasher, tokens TokenManager, adminEmails []string, log zerolog.Logger) *AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, adminEmails: admins, log: log}
}

// Register creates an account. Email uniqueness is enforced by the store.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name and password are required", domain.ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleMember
	if _, ok := s.adminEmails[email]; ok {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", role).Msg("user registered")
	return created.Public(), nil
}

// Login checks the credentials and issues an access token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// Logout revokes the token presented on the request.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	s.log.Debug().Msg("token revoked")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: email must be a valid address", domain.ErrValidation)
	}
	return nil
}
