package appointment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)

	// Start moves a scheduled appointment to in_progress and opens a
	// consultation for it.
	Start(ctx context.Context, clinicID, id uuid.UUID) (*model.Consultation, error)
}

type service struct {
	repo          repository.AppointmentRepository
	consultations repository.ConsultationRepository
	outbox        repository.OutboxRepository
	logger        zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, consultations repository.ConsultationRepository, outbox repository.OutboxRepository, logger zerolog.Logger) Service {
	return &service{
		repo:          repo,
		consultations: consultations,
		outbox:        outbox,
		logger:        logger.With().Str("service", "appointment").Logger(),
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := time.Parse(model.DateOnly, req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperrors.BadRequest("invalid time, expected HH:MM", err)
	}

	doctorID := uuid.MustParse(req.DoctorID)
	taken, err := s.repo.SlotTaken(ctx, doctorID, date, req.Time, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return nil, apperrors.Conflict("doctor already has an appointment at this time")
	}

	appt := &model.Appointment{
		ClinicID:  uuid.MustParse(req.ClinicID),
		DoctorID:  doctorID,
		PatientID: uuid.MustParse(req.PatientID),
		Date:      date,
		Time:      req.Time,
		Status:    model.AppointmentStatusScheduled,
	}
	if req.Reason != "" {
		appt.Reason = &req.Reason
	}
	if req.Notes != "" {
		appt.Notes = &req.Notes
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		// The partial unique index closes the race between the check above
		// and the insert.
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("doctor already has an appointment at this time")
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emit(ctx, "appointment.created", appt)
	return appt, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	return s.getScoped(ctx, clinicID, id)
}

// getScoped loads an appointment and checks it belongs to clinicID. An
// appointment from another clinic reads as not found so callers cannot
// tell foreign ids apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt.ClinicID != clinicID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return appt, nil
}

func (s *service) Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := time.Parse(model.DateOnly, *req.Date)
		if err != nil {
			return nil, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
		}
		appt.Date = date
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return nil, apperrors.BadRequest("invalid time, expected HH:MM", err)
		}
		appt.Time = *req.Time
	}
	if req.Status != nil {
		appt.Status = model.AppointmentStatus(*req.Status)
	}
	if req.Reason != nil {
		appt.Reason = req.Reason
	}
	if req.Notes != nil {
		appt.Notes = req.Notes
	}

	// Rescheduling must not land on an occupied slot. The appointment's own
	// row is excluded so a no-op reschedule succeeds.
	if req.Date != nil || req.Time != nil {
		taken, err := s.repo.SlotTaken(ctx, appt.DoctorID, appt.Date, appt.Time, &appt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot availability: %w", err)
		}
		if taken {
			return nil, apperrors.Conflict("doctor already has an appointment at this time")
		}
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("doctor already has an appointment at this time")
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return appt, nil
}

func (s *service) Cancel(ctx context.Context, clinicID, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("completed appointments cannot be cancelled", nil)
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return appt, nil
	}

	appt.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.emit(ctx, "appointment.cancelled", appt)
	return appt, nil
}

func (s *service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *service) Start(ctx context.Context, clinicID, id uuid.UUID) (*model.Consultation, error) {
	appt, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.BadRequest("only scheduled appointments can be started", nil)
	}

	appt.Status = model.AppointmentStatusInProgress
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to start appointment: %w", err)
	}

	consultation := &model.Consultation{
		ClinicID:      appt.ClinicID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		AppointmentID: &appt.ID,
		Status:        model.ConsultationStatusInProgress,
	}
	if err := s.consultations.Create(ctx, consultation); err != nil {
		return nil, fmt.Errorf("failed to open consultation: %w", err)
	}
	return consultation, nil
}

func (s *service) emit(ctx context.Context, eventType string, appt *model.Appointment) {
	payload, err := json.Marshal(map[string]interface{}{
		"appointment_id": appt.ID,
		"clinic_id":      appt.ClinicID,
		"doctor_id":      appt.DoctorID,
		"patient_id":     appt.PatientID,
		"date":           appt.Date.Format(model.DateOnly),
		"time":           appt.Time,
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

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
