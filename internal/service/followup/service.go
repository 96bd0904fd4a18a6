package followup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Task wraps a follow-up with its read-time classification and, when
// overdue, the number of days past due.
type Task struct {
	*model.FollowUpTask
	State       string `json:"state"`
	DaysOverdue int    `json:"days_overdue,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req *model.CreateFollowUpRequest) (*model.FollowUpTask, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filters *model.FollowUpFilters) ([]*Task, error)
	Complete(ctx context.Context, clinicID, id uuid.UUID, notes string) (*model.FollowUpTask, error)

	// DeriveFromConsultation creates the follow-up task and the doctor
	// notification for a completed consultation. Called after the
	// consultation update has been persisted.
	DeriveFromConsultation(ctx context.Context, c *model.Consultation) error
}

type service struct {
	repo          repository.FollowUpRepository
	patients      repository.PatientRepository
	notifications repository.NotificationRepository
	now           func() time.Time
	logger        zerolog.Logger
}

func NewService(repo repository.FollowUpRepository, patients repository.PatientRepository, notifications repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:          repo,
		patients:      patients,
		notifications: notifications,
		now:           time.Now,
		logger:        logger.With().Str("service", "followup").Logger(),
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateFollowUpRequest) (*model.FollowUpTask, error) {
	dueDate, err := time.Parse(model.DateOnly, req.DueDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid due_date, expected YYYY-MM-DD", err)
	}

	task := &model.FollowUpTask{
		ClinicID:  uuid.MustParse(req.ClinicID),
		DoctorID:  uuid.MustParse(req.DoctorID),
		PatientID: uuid.MustParse(req.PatientID),
		Title:     req.Title,
		DueDate:   dueDate,
	}
	if req.Description != "" {
		task.Description = &req.Description
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create follow-up task: %w", err)
	}
	return task, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*Task, error) {
	task, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}
	return s.classify(task), nil
}

// getScoped loads a task and checks it belongs to clinicID. A task from
// another clinic reads as not found so callers cannot tell foreign ids
// apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.FollowUpTask, error) {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("follow-up task", err)
		}
		return nil, fmt.Errorf("failed to get follow-up task: %w", err)
	}
	if task.ClinicID != clinicID {
		return nil, apperrors.NotFound("follow-up task", nil)
	}
	return task, nil
}

// List classifies every task at read time. The state filter is applied here
// rather than in SQL because classification depends on the current date.
func (s *service) List(ctx context.Context, filters *model.FollowUpFilters) ([]*Task, error) {
	state := filters.State
	tasks, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow-up tasks: %w", err)
	}

	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		classified := s.classify(t)
		if state != "" && classified.State != state {
			continue
		}
		out = append(out, classified)
	}
	return out, nil
}

func (s *service) Complete(ctx context.Context, clinicID, id uuid.UUID, notes string) (*model.FollowUpTask, error) {
	task, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if task.IsCompleted {
		return task, nil
	}

	now := s.now()
	task.IsCompleted = true
	task.CompletedAt = &now
	if notes != "" {
		task.Notes = &notes
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to complete follow-up task: %w", err)
	}
	return task, nil
}

// DeriveFromConsultation fires only for a non-nil follow_up_date. The patient
// lookup supplies the tenant clinic and display name; a missing patient skips
// the derivation without failing the completed consultation.
func (s *service) DeriveFromConsultation(ctx context.Context, c *model.Consultation) error {
	if c.FollowUpDate == nil {
		return nil
	}
	dueDate := *c.FollowUpDate

	patient, err := s.patients.Get(ctx, c.PatientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn().
				Str("consultation_id", c.ID.String()).
				Str("patient_id", c.PatientID.String()).
				Msg("patient not found, skipping follow-up derivation")
			return nil
		}
		return fmt.Errorf("failed to look up patient: %w", err)
	}

	task := &model.FollowUpTask{
		ClinicID:       patient.ClinicID,
		DoctorID:       c.DoctorID,
		PatientID:      c.PatientID,
		ConsultationID: &c.ID,
		Title:          fmt.Sprintf("Follow-up: %s", patient.Name),
		DueDate:        dueDate,
	}
	if c.FollowUpDays != nil {
		desc := fmt.Sprintf("Scheduled %d day(s) after the consultation", *c.FollowUpDays)
		task.Description = &desc
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create derived follow-up task: %w", err)
	}

	notification := &model.Notification{
		UserID:      c.DoctorID,
		Type:        model.NotificationTypeFollowUp,
		Title:       "Follow-up scheduled",
		Message:     fmt.Sprintf("Follow-up for %s due on %s", patient.Name, dueDate.Format(model.DateOnly)),
		RelatedID:   &c.ID,
		RelatedType: strPtr("consultation"),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		// The task exists; a missing notification is not worth failing the
		// completion over.
		s.logger.Warn().Err(err).
			Str("task_id", task.ID.String()).
			Msg("failed to create follow-up notification")
	}
	return nil
}

func (s *service) classify(t *model.FollowUpTask) *Task {
	now := s.now()
	task := &Task{FollowUpTask: t, State: t.Classify(now)}
	if task.State == model.FollowUpOverdue {
		task.DaysOverdue = t.DaysOverdue(now)
	}
	return task
}

func strPtr(s string) *string { return &s }
