package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	}

	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		PhoneExists(ctx context.Context, phone string) (bool, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		SlotTaken(ctx context.Context, doctorID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error)
		ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	}

	ConsultationRepository interface {
		Create(ctx context.Context, consultation *model.Consultation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
		Update(ctx context.Context, consultation *model.Consultation) error
		List(ctx context.Context, filters *model.ConsultationFilters) ([]*model.Consultation, error)
	}

	FollowUpRepository interface {
		Create(ctx context.Context, task *model.FollowUpTask) error
		Get(ctx context.Context, id uuid.UUID) (*model.FollowUpTask, error)
		Update(ctx context.Context, task *model.FollowUpTask) error
		List(ctx context.Context, filters *model.FollowUpFilters) ([]*model.FollowUpTask, error)
		ListDueOn(ctx context.Context, day time.Time) ([]*model.FollowUpTask, error)
		ListOverdue(ctx context.Context, before time.Time) ([]*model.FollowUpTask, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	}

	ReferralRepository interface {
		Create(ctx context.Context, referral *model.Referral) error
		Get(ctx context.Context, id uuid.UUID) (*model.Referral, error)
		Update(ctx context.Context, referral *model.Referral) error
		List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error)
	}

	PatientFileRepository interface {
		Create(ctx context.Context, file *model.PatientFile) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientFile, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientFile, error)
	}

	CommunicationLogRepository interface {
		Create(ctx context.Context, log *model.CommunicationLog) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CommunicationLog, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	}

	AnalyticsRepository interface {
		CountsByStatus(ctx context.Context, clinicID uuid.UUID, table string) (map[string]int, error)
		AppointmentsPerDay(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (map[string]int, error)
	}
)
