package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
)

type consultationRepository struct {
	*BaseRepository
}

func NewConsultationRepository(base *BaseRepository) repository.ConsultationRepository {
	return &consultationRepository{BaseRepository: base}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, clinic_id, doctor_id, patient_id, appointment_id, status,
			diagnosis, treatment, prescription, notes,
			follow_up_days, follow_up_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	consultation.ID = uuid.New()
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.ClinicID,
		consultation.DoctorID,
		consultation.PatientID,
		consultation.AppointmentID,
		consultation.Status,
		consultation.Diagnosis,
		consultation.Treatment,
		consultation.Prescription,
		consultation.Notes,
		consultation.FollowUpDays,
		consultation.FollowUpDate,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, appointment_id, status,
			   diagnosis, treatment, prescription, notes,
			   follow_up_days, follow_up_date, created_at, updated_at
		FROM consultations
		WHERE id = $1
	`
	var consultation model.Consultation
	if err := r.db.GetContext(ctx, &consultation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

func (r *consultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	query := `
		UPDATE consultations
		SET status = $1, diagnosis = $2, treatment = $3, prescription = $4,
			notes = $5, follow_up_days = $6, follow_up_date = $7, updated_at = $8
		WHERE id = $9
	`
	consultation.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		consultation.Status,
		consultation.Diagnosis,
		consultation.Treatment,
		consultation.Prescription,
		consultation.Notes,
		consultation.FollowUpDays,
		consultation.FollowUpDate,
		consultation.UpdatedAt,
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *consultationRepository) List(ctx context.Context, filters *model.ConsultationFilters) ([]*model.Consultation, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, appointment_id, status,
			   diagnosis, treatment, prescription, notes,
			   follow_up_days, follow_up_date, created_at, updated_at
		FROM consultations
		WHERE clinic_id = $1
	`
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}
	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var consultations []*model.Consultation
	if err := r.db.SelectContext(ctx, &consultations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}
