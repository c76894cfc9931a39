package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/config"
	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/events"
	"github.com/spec-kit/guide-store/internal/repository"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// AuthService coordinates registration, login and signout flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.TokenRevoker
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Revoker    auth.TokenRevoker
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoker:    deps.Revoker,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new customer account and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		user.Name = &trimmed
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win the insert race after the
		// duplicate check above passed.
		if err == repository.ErrDuplicateEmail {
			return nil, "", time.Time{}, apperrors.NewValidationError("email already registered", nil)
		}
		return nil, "", time.Time{}, err
	}

	s.publishRegistered(ctx, user)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a customer.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Signout revokes the presented token until its natural expiry.
func (s *AuthService) Signout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishRegistered(ctx context.Context, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserRegisteredPayload{Email: user.Email},
	})
}
