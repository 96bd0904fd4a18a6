package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
}

type service struct {
	users   repository.UserRepository
	clinics repository.ClinicRepository
	jwt     auth.JWTService
	hasher  security.PasswordHasher
	logger  zerolog.Logger
}

func NewService(users repository.UserRepository, clinics repository.ClinicRepository, jwt auth.JWTService, hasher security.PasswordHasher, logger zerolog.Logger) Service {
	return &service{
		users:   users,
		clinics: clinics,
		jwt:     jwt,
		hasher:  hasher,
		logger:  logger.With().Str("service", "auth").Logger(),
	}
}

// Login authenticates a user. Staff of non-active clinics are refused even
// with correct credentials; system admins have no clinic to check.
func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("account is inactive")
	}

	if user.ClinicID != nil {
		clinic, err := s.clinics.Get(ctx, *user.ClinicID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up clinic: %w", err)
		}
		if clinic.Status != model.ClinicStatusActive {
			return nil, apperrors.Forbidden(fmt.Sprintf("clinic is %s", clinic.Status))
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	tokens.User = user
	return tokens, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("invalid refresh token")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("account is inactive")
	}

	return s.issueTokens(user)
}

func (s *service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
