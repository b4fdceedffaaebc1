package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fleetwatch/monitor-service/internal/auth"
	"github.com/fleetwatch/monitor-service/internal/config"
	"github.com/fleetwatch/monitor-service/internal/domain"
	"github.com/fleetwatch/monitor-service/internal/repository"
	apperrors "github.com/fleetwatch/monitor-service/pkg/util/errorutil"
)

// LoginResult bundles what a successful registration or login hands back.
type LoginResult struct {
	User         *domain.User
	AccessToken  *domain.CredentialRecord
	RefreshToken *domain.CredentialRecord
}

// AuthService coordinates registration and login flows on top of the token
// service.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.Service
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, tokens *auth.Service) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterUser creates a new account and issues its first token pair.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*LoginResult, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{"user"},
		AuthLevel:    domain.LevelUser,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// LoginUser authenticates an account and issues a token pair.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewUnauthorized("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates a refresh token into a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResult, error) {
	result, err := s.tokens.RefreshUserToken(ctx, refreshToken)
	if err != nil {
		return nil, auth.MapAuthError(err)
	}
	return result, nil
}

// Logout revokes the presented token pair. A token that is already gone is
// not an error.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.tokens.RevokeToken(ctx, domain.KindUserToken, accessToken); err != nil && !errors.Is(err, auth.ErrNotFound) {
			return auth.MapAuthError(err)
		}
	}
	if refreshToken != "" {
		if err := s.tokens.RevokeToken(ctx, domain.KindRefreshToken, refreshToken); err != nil && !errors.Is(err, auth.ErrNotFound) {
			return auth.MapAuthError(err)
		}
	}
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	claims := domain.Claims{
		Roles:       user.Roles,
		Permissions: user.Permissions,
		AuthLevel:   user.AuthLevel,
	}
	access, err := s.tokens.GenerateSessionToken(ctx, user.ID, claims)
	if err != nil {
		return nil, auth.MapAuthError(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, user.ID, claims)
	if err != nil {
		return nil, auth.MapAuthError(err)
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
