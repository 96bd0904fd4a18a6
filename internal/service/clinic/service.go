package clinic

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/email"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterClinicRequest) (*model.Clinic, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	PhoneAvailable(ctx context.Context, phone string) (bool, error)

	Approve(ctx context.Context, id, adminID uuid.UUID, notes string) (*model.Clinic, error)
	Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Clinic, error)
	Suspend(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Clinic, error)
	Reactivate(ctx context.Context, id, adminID uuid.UUID) (*model.Clinic, error)
}

type service struct {
	repo   repository.ClinicRepository
	users  repository.UserRepository
	outbox repository.OutboxRepository
	hasher security.PasswordHasher
	mailer email.Service
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo repository.ClinicRepository, users repository.UserRepository, outbox repository.OutboxRepository, hasher security.PasswordHasher, mailer email.Service, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		users:  users,
		outbox: outbox,
		hasher: hasher,
		mailer: mailer,
		now:    time.Now,
		logger: logger.With().Str("service", "clinic").Logger(),
	}
}

// Register creates a pending clinic together with its owner account. The
// owner cannot sign in usefully until a system admin approves the clinic.
func (s *service) Register(ctx context.Context, req *model.RegisterClinicRequest) (*model.Clinic, error) {
	if taken, err := s.repo.EmailExists(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check clinic email: %w", err)
	} else if taken {
		return nil, apperrors.Conflict("a clinic with this email already exists")
	}
	if taken, err := s.repo.PhoneExists(ctx, req.Phone); err != nil {
		return nil, fmt.Errorf("failed to check clinic phone: %w", err)
	} else if taken {
		return nil, apperrors.Conflict("a clinic with this phone already exists")
	}
	if _, err := s.users.GetByEmail(ctx, req.OwnerEmail); err == nil {
		return nil, apperrors.Conflict("a user with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check owner email: %w", err)
	}

	hash, err := s.hasher.Hash(req.OwnerPassword)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	clinic := &model.Clinic{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  model.ClinicStatusPending,
	}
	if err := s.repo.Create(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	owner := &model.User{
		ClinicID:     &clinic.ID,
		Email:        req.OwnerEmail,
		Name:         req.OwnerName,
		PasswordHash: hash,
		Role:         model.RoleClinicOwner,
		Status:       model.UserStatusActive,
	}
	if err := s.users.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create clinic owner: %w", err)
	}

	s.emit(ctx, "clinic.registered", clinic)
	return clinic, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *service) List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	clinics, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (s *service) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to check clinic email: %w", err)
	}
	return !taken, nil
}

func (s *service) PhoneAvailable(ctx context.Context, phone string) (bool, error) {
	taken, err := s.repo.PhoneExists(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("failed to check clinic phone: %w", err)
	}
	return !taken, nil
}

func (s *service) Approve(ctx context.Context, id, adminID uuid.UUID, notes string) (*model.Clinic, error) {
	clinic, err := s.transition(ctx, id, model.ClinicStatusActive, func(c *model.Clinic) {
		now := s.now()
		c.ApprovedBy = &adminID
		c.ApprovedAt = &now
		if notes != "" {
			c.Notes = &notes
		}
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(clinic, func() error {
		return s.mailer.SendClinicApproved(clinic.Email, clinic.Name)
	})
	s.emit(ctx, "clinic.approved", clinic)
	return clinic, nil
}

func (s *service) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Clinic, error) {
	clinic, err := s.transition(ctx, id, model.ClinicStatusRejected, func(c *model.Clinic) {
		if reason != "" {
			c.RejectionReason = &reason
		}
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(clinic, func() error {
		return s.mailer.SendClinicRejected(clinic.Email, clinic.Name, reason)
	})
	s.emit(ctx, "clinic.rejected", clinic)
	return clinic, nil
}

func (s *service) Suspend(ctx context.Context, id, adminID uuid.UUID, reason string) (*model.Clinic, error) {
	clinic, err := s.transition(ctx, id, model.ClinicStatusSuspended, func(c *model.Clinic) {
		if reason != "" {
			c.SuspensionReason = &reason
		}
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecision(clinic, func() error {
		return s.mailer.SendClinicSuspended(clinic.Email, clinic.Name, reason)
	})
	s.emit(ctx, "clinic.suspended", clinic)
	return clinic, nil
}

func (s *service) Reactivate(ctx context.Context, id, adminID uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.transition(ctx, id, model.ClinicStatusActive, func(c *model.Clinic) {
		c.SuspensionReason = nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "clinic.reactivated", clinic)
	return clinic, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target model.ClinicStatus, apply func(*model.Clinic)) (*model.Clinic, error) {
	clinic, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !clinic.CanTransitionTo(target) {
		return nil, apperrors.Conflict(fmt.Sprintf("clinic in status %s cannot move to %s", clinic.Status, target))
	}

	clinic.Status = target
	apply(clinic)

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to update clinic status: %w", err)
	}
	return clinic, nil
}

// notifyDecision sends lifecycle mail best effort. A mail failure never rolls
// back the decision.
func (s *service) notifyDecision(clinic *model.Clinic, send func() error) {
	if s.mailer == nil {
		return
	}
	if err := send(); err != nil {
		s.logger.Warn().Err(err).
			Str("clinic_id", clinic.ID.String()).
			Msg("failed to send clinic decision email")
	}
}

func (s *service) emit(ctx context.Context, eventType string, clinic *model.Clinic) {
	payload, err := json.Marshal(map[string]interface{}{
		"clinic_id": clinic.ID,
		"name":      clinic.Name,
		"status":    clinic.Status,
	})
	if err != nil {
		return
	}
	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to enqueue event")
	}
}
