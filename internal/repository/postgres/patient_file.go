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

type patientFileRepository struct {
	*BaseRepository
}

func NewPatientFileRepository(base *BaseRepository) repository.PatientFileRepository {
	return &patientFileRepository{BaseRepository: base}
}

func (r *patientFileRepository) Create(ctx context.Context, file *model.PatientFile) error {
	query := `
		INSERT INTO patient_files (
			id, clinic_id, patient_id, uploaded_by, file_name, content_type,
			size_bytes, storage_path, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	file.ID = uuid.New()
	file.CreatedAt = time.Now()
	file.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.ClinicID,
		file.PatientID,
		file.UploadedBy,
		file.FileName,
		file.ContentType,
		file.SizeBytes,
		file.StoragePath,
		file.Description,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient file: %w", err)
	}
	return nil
}

func (r *patientFileRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientFile, error) {
	query := `
		SELECT id, clinic_id, patient_id, uploaded_by, file_name, content_type,
			   size_bytes, storage_path, description, created_at, updated_at
		FROM patient_files
		WHERE id = $1
	`
	var file model.PatientFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get patient file: %w", err)
	}
	return &file, nil
}

func (r *patientFileRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientFile, error) {
	query := `
		SELECT id, clinic_id, patient_id, uploaded_by, file_name, content_type,
			   size_bytes, storage_path, description, created_at, updated_at
		FROM patient_files
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var files []*model.PatientFile
	if err := r.db.SelectContext(ctx, &files, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient files: %w", err)
	}
	return files, nil
}
