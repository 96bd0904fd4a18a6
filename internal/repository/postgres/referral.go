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

type referralRepository struct {
	*BaseRepository
}

func NewReferralRepository(base *BaseRepository) repository.ReferralRepository {
	return &referralRepository{BaseRepository: base}
}

func (r *referralRepository) Create(ctx context.Context, referral *model.Referral) error {
	query := `
		INSERT INTO referrals (
			id, clinic_id, patient_id, from_doctor_id, to_doctor_id,
			reason, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	referral.ID = uuid.New()
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		referral.ID,
		referral.ClinicID,
		referral.PatientID,
		referral.FromDoctorID,
		referral.ToDoctorID,
		referral.Reason,
		referral.Notes,
		referral.Status,
		referral.CreatedAt,
		referral.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	query := `
		SELECT id, clinic_id, patient_id, from_doctor_id, to_doctor_id,
			   reason, notes, status, created_at, updated_at
		FROM referrals
		WHERE id = $1
	`
	var referral model.Referral
	if err := r.db.GetContext(ctx, &referral, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &referral, nil
}

func (r *referralRepository) Update(ctx context.Context, referral *model.Referral) error {
	query := `
		UPDATE referrals
		SET reason = $1, notes = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	referral.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		referral.Reason,
		referral.Notes,
		referral.Status,
		referral.UpdatedAt,
		referral.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update referral: %w", err)
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

func (r *referralRepository) List(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error) {
	query := `
		SELECT id, clinic_id, patient_id, from_doctor_id, to_doctor_id,
			   reason, notes, status, created_at, updated_at
		FROM referrals
		WHERE clinic_id = $1
	`
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}
	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND (from_doctor_id = $%d OR to_doctor_id = $%d)", argCount, argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var referrals []*model.Referral
	if err := r.db.SelectContext(ctx, &referrals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}
