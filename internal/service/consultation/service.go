package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// FollowUpDeriver creates the follow-up artifacts for a completed
// consultation. Implemented by the follow-up service.
type FollowUpDeriver interface {
	DeriveFromConsultation(ctx context.Context, c *model.Consultation) error
}

type Service interface {
	Create(ctx context.Context, req *model.CreateConsultationRequest) (*model.Consultation, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Consultation, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateConsultationRequest) (*model.Consultation, error)
	List(ctx context.Context, filters *model.ConsultationFilters) ([]*model.Consultation, error)
}

type service struct {
	repo    repository.ConsultationRepository
	deriver FollowUpDeriver
	outbox  repository.OutboxRepository
	now     func() time.Time
	logger  zerolog.Logger
}

func NewService(repo repository.ConsultationRepository, deriver FollowUpDeriver, outbox repository.OutboxRepository, logger zerolog.Logger) Service {
	return &service{
		repo:    repo,
		deriver: deriver,
		outbox:  outbox,
		now:     time.Now,
		logger:  logger.With().Str("service", "consultation").Logger(),
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateConsultationRequest) (*model.Consultation, error) {
	c := &model.Consultation{
		ClinicID:  uuid.MustParse(req.ClinicID),
		DoctorID:  uuid.MustParse(req.DoctorID),
		PatientID: uuid.MustParse(req.PatientID),
		Status:    model.ConsultationStatusInProgress,
	}
	if req.Diagnosis != "" {
		c.Diagnosis = &req.Diagnosis
	}
	if req.Treatment != "" {
		c.Treatment = &req.Treatment
	}
	if req.Prescription != "" {
		c.Prescription = &req.Prescription
	}
	if req.Notes != "" {
		c.Notes = &req.Notes
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create consultation: %w", err)
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Consultation, error) {
	return s.getScoped(ctx, clinicID, id)
}

// getScoped loads a consultation and checks it belongs to clinicID. A
// consultation from another clinic reads as not found so callers cannot
// tell foreign ids apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.Consultation, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("consultation", err)
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	if c.ClinicID != clinicID {
		return nil, apperrors.NotFound("consultation", nil)
	}
	return c, nil
}

// Update applies a partial update. When the update sets the status to
// completed, follow-up derivation runs after the save; every completion
// derives again, including repeated completions of the same consultation.
func (s *service) Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateConsultationRequest) (*model.Consultation, error) {
	c, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	completing := false
	if req.Status != nil {
		status := model.ConsultationStatus(*req.Status)
		completing = status == model.ConsultationStatusCompleted
		c.Status = status
	}
	if req.Diagnosis != nil {
		c.Diagnosis = req.Diagnosis
	}
	if req.Treatment != nil {
		c.Treatment = req.Treatment
	}
	if req.Prescription != nil {
		c.Prescription = req.Prescription
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if req.FollowUpDays != nil {
		c.FollowUpDays = req.FollowUpDays
	}
	if req.FollowUpDate != nil {
		date, err := time.Parse(model.DateOnly, *req.FollowUpDate)
		if err != nil {
			return nil, apperrors.BadRequest("invalid follow_up_date, expected YYYY-MM-DD", err)
		}
		c.FollowUpDate = &date
	} else if req.FollowUpDays != nil && *req.FollowUpDays > 0 {
		// An interval without an explicit date resolves to a date now, so
		// the stored record always carries the concrete follow-up day.
		date := todayUTC(s.now()).AddDate(0, 0, *req.FollowUpDays)
		c.FollowUpDate = &date
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update consultation: %w", err)
	}

	if completing {
		// Best effort: the consultation is already saved, so derivation
		// failures are logged and swallowed rather than surfaced.
		if err := s.deriver.DeriveFromConsultation(ctx, c); err != nil {
			s.logger.Error().Err(err).
				Str("consultation_id", c.ID.String()).
				Msg("follow-up derivation failed")
		}
		s.emitCompleted(ctx, c)
	}
	return c, nil
}

func (s *service) List(ctx context.Context, filters *model.ConsultationFilters) ([]*model.Consultation, error) {
	consultations, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

// todayUTC truncates to the UTC midnight of t's calendar day, the storage
// convention for date-only values.
func todayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) emitCompleted(ctx context.Context, c *model.Consultation) {
	payload, err := json.Marshal(map[string]interface{}{
		"consultation_id": c.ID,
		"clinic_id":       c.ClinicID,
		"doctor_id":       c.DoctorID,
		"patient_id":      c.PatientID,
	})
	if err != nil {
		return
	}
	event := &model.OutboxEvent{
		EventType: "consultation.completed",
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to enqueue consultation.completed event")
	}
}
