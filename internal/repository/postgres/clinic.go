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

type clinicRepository struct {
	*BaseRepository
}

func NewClinicRepository(base *BaseRepository) repository.ClinicRepository {
	return &clinicRepository{BaseRepository: base}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, email, phone, address, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	clinic.ID = uuid.New()
	clinic.CreatedAt = time.Now()
	clinic.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.Email,
		clinic.Phone,
		clinic.Address,
		clinic.Status,
		clinic.Notes,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, email, phone, address, status, notes,
			   rejection_reason, suspension_reason, approved_by, approved_at,
			   created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	if err := r.db.GetContext(ctx, &clinic, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, email = $2, phone = $3, address = $4, status = $5,
			notes = $6, rejection_reason = $7, suspension_reason = $8,
			approved_by = $9, approved_at = $10, updated_at = $11
		WHERE id = $12
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.Email,
		clinic.Phone,
		clinic.Address,
		clinic.Status,
		clinic.Notes,
		clinic.RejectionReason,
		clinic.SuspensionReason,
		clinic.ApprovedBy,
		clinic.ApprovedAt,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
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

func (r *clinicRepository) List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, email, phone, address, status, notes,
			   rejection_reason, suspension_reason, approved_by, approved_at,
			   created_at, updated_at
		FROM clinics
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var clinics []*model.Clinic
	if err := r.db.SelectContext(ctx, &clinics, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (r *clinicRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM clinics WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("failed to check clinic email: %w", err)
	}
	return exists, nil
}

func (r *clinicRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM clinics WHERE phone = $1)`, phone)
	if err != nil {
		return false, fmt.Errorf("failed to check clinic phone: %w", err)
	}
	return exists, nil
}
