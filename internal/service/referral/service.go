package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, fromDoctorID uuid.UUID, req *model.CreateReferralRequest) (*model.Referral, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Referral, error)
	List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error)
	UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error)
}

// transitions holds the allowed referral status moves.
var transitions = map[model.ReferralStatus][]model.ReferralStatus{
	model.ReferralStatusPending:  {model.ReferralStatusAccepted, model.ReferralStatusCancelled},
	model.ReferralStatusAccepted: {model.ReferralStatusCompleted, model.ReferralStatusCancelled},
}

type service struct {
	repo          repository.ReferralRepository
	notifications repository.NotificationRepository
	logger        zerolog.Logger
}

func NewService(repo repository.ReferralRepository, notifications repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:          repo,
		notifications: notifications,
		logger:        logger.With().Str("service", "referral").Logger(),
	}
}

func (s *service) Create(ctx context.Context, fromDoctorID uuid.UUID, req *model.CreateReferralRequest) (*model.Referral, error) {
	toDoctorID := uuid.MustParse(req.ToDoctorID)
	if toDoctorID == fromDoctorID {
		return nil, apperrors.BadRequest("cannot refer a patient to yourself", nil)
	}

	r := &model.Referral{
		ClinicID:     uuid.MustParse(req.ClinicID),
		PatientID:    uuid.MustParse(req.PatientID),
		FromDoctorID: fromDoctorID,
		ToDoctorID:   toDoctorID,
		Reason:       req.Reason,
		Status:       model.ReferralStatusPending,
	}
	if req.Notes != "" {
		r.Notes = &req.Notes
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	relatedType := "referral"
	notification := &model.Notification{
		UserID:      toDoctorID,
		Type:        model.NotificationTypeReferral,
		Title:       "New patient referral",
		Message:     fmt.Sprintf("You have received a referral: %s", req.Reason),
		RelatedID:   &r.ID,
		RelatedType: &relatedType,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn().Err(err).Str("referral_id", r.ID.String()).Msg("failed to notify referred doctor")
	}
	return r, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Referral, error) {
	return s.getScoped(ctx, clinicID, id)
}

// getScoped loads a referral and checks it belongs to clinicID. A referral
// from another clinic reads as not found so callers cannot tell foreign
// ids apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.Referral, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("referral", err)
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	if r.ClinicID != clinicID {
		return nil, apperrors.NotFound("referral", nil)
	}
	return r, nil
}

func (s *service) List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error) {
	referrals, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}

func (s *service) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error) {
	r, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if !allowed(r.Status, status) {
		return nil, apperrors.Conflict(fmt.Sprintf("referral in status %s cannot move to %s", r.Status, status))
	}

	r.Status = status
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update referral: %w", err)
	}
	return r, nil
}

func allowed(from, to model.ReferralStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
