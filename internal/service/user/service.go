package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	Deactivate(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
}

type service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) Service {
	return &service{repo: repo, hasher: hasher}
}

func (s *service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	// system_admin accounts never belong to a clinic; everyone else must.
	var clinicID *uuid.UUID
	if req.Role != model.RoleSystemAdmin {
		if req.ClinicID == "" {
			return nil, apperrors.BadRequest("clinic_id is required for staff accounts", nil)
		}
		id, err := uuid.Parse(req.ClinicID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid clinic_id", err)
		}
		clinicID = &id
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("a user with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check user email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	u := &model.User{
		ClinicID:     clinicID,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusActive,
	}
	if req.Phone != "" {
		u.Phone = &req.Phone
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error) {
	return s.getScoped(ctx, clinicID, id)
}

// getScoped loads a user and checks it belongs to clinicID. Staff from
// another clinic, and system admins with no clinic at all, read as not
// found so callers cannot tell foreign ids apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.ClinicID == nil || *u.ClinicID != clinicID {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	if req.Role != nil {
		u.Role = *req.Role
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *service) Deactivate(ctx context.Context, clinicID, id uuid.UUID) error {
	u, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return err
	}
	u.Status = model.UserStatusInactive
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
