package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-api/internal/auth"
	"github.com/spec-kit/marketplace-api/internal/config"
	"github.com/spec-kit/marketplace-api/internal/domain"
	"github.com/spec-kit/marketplace-api/internal/events"
	"github.com/spec-kit/marketplace-api/internal/repository"
	apperrors "github.com/spec-kit/marketplace-api/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost: cfg.BcryptCost,
		dispatcher: dispatcher,
	}
}

// Register creates a CUSTOMER or SELLER account. ADMIN accounts go through
// RegisterAdmin, which sits behind an ADMIN-only route.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleCustomer && role != domain.RoleSeller {
		return nil, apperrors.NewValidationError("role must be CUSTOMER or SELLER", map[string]any{"role": string(role)})
	}
	return s.createUser(ctx, username, password, role)
}

// RegisterAdmin creates an ADMIN account.
func (s *AuthService) RegisterAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	return s.createUser(ctx, username, password, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		Actor:     events.Actor{Username: user.Username, Role: user.Role},
		Timestamp: time.Now(),
		Payload:   events.UserRegisteredPayload{Username: user.Username, Role: user.Role},
	})
	return user, nil
}

// Login authenticates a user and issues a token carrying username and role.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.Role, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.loginFailed(ctx, username)
		}
		return "", "", time.Time{}, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return s.loginFailed(ctx, username)
	}

	token, expiresAt, err := s.tokenMgr.Issue(user.Username, user.Role)
	if err != nil {
		return "", "", time.Time{}, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventLoginSucceeded,
		Actor:     events.Actor{Username: user.Username, Role: user.Role},
		Timestamp: time.Now(),
	})
	return token, user.Role, expiresAt, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username string) (string, domain.Role, time.Time, error) {
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventLoginFailed,
		Timestamp: time.Now(),
		Payload:   events.LoginFailedPayload{Username: username},
	})
	return "", "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
}

// Logout is a stateless no-op; tokens stay valid until expiry.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
