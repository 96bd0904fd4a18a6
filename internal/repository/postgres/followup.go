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

type followUpRepository struct {
	*BaseRepository
}

func NewFollowUpRepository(base *BaseRepository) repository.FollowUpRepository {
	return &followUpRepository{BaseRepository: base}
}

func (r *followUpRepository) Create(ctx context.Context, task *model.FollowUpTask) error {
	query := `
		INSERT INTO follow_up_tasks (
			id, clinic_id, doctor_id, patient_id, consultation_id,
			title, description, due_date, is_completed, completed_at, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.ClinicID,
		task.DoctorID,
		task.PatientID,
		task.ConsultationID,
		task.Title,
		task.Description,
		task.DueDate,
		task.IsCompleted,
		task.CompletedAt,
		task.Notes,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow-up task: %w", err)
	}
	return nil
}

func (r *followUpRepository) Get(ctx context.Context, id uuid.UUID) (*model.FollowUpTask, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, consultation_id,
			   title, description, due_date, is_completed, completed_at, notes,
			   created_at, updated_at
		FROM follow_up_tasks
		WHERE id = $1
	`
	var task model.FollowUpTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get follow-up task: %w", err)
	}
	return &task, nil
}

func (r *followUpRepository) Update(ctx context.Context, task *model.FollowUpTask) error {
	query := `
		UPDATE follow_up_tasks
		SET title = $1, description = $2, due_date = $3, is_completed = $4,
			completed_at = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	task.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.DueDate,
		task.IsCompleted,
		task.CompletedAt,
		task.Notes,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update follow-up task: %w", err)
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

func (r *followUpRepository) List(ctx context.Context, filters *model.FollowUpFilters) ([]*model.FollowUpTask, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, consultation_id,
			   title, description, due_date, is_completed, completed_at, notes,
			   created_at, updated_at
		FROM follow_up_tasks
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

	query += " ORDER BY due_date ASC"

	var tasks []*model.FollowUpTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list follow-up tasks: %w", err)
	}
	return tasks, nil
}

// ListDueOn returns incomplete tasks whose due date falls on the given day.
func (r *followUpRepository) ListDueOn(ctx context.Context, day time.Time) ([]*model.FollowUpTask, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, consultation_id,
			   title, description, due_date, is_completed, completed_at, notes,
			   created_at, updated_at
		FROM follow_up_tasks
		WHERE is_completed = false
		AND due_date = $1
		ORDER BY due_date ASC
	`
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var tasks []*model.FollowUpTask
	if err := r.db.SelectContext(ctx, &tasks, query, day); err != nil {
		return nil, fmt.Errorf("failed to list due follow-up tasks: %w", err)
	}
	return tasks, nil
}

// ListOverdue returns incomplete tasks whose due date is strictly before the
// given day.
func (r *followUpRepository) ListOverdue(ctx context.Context, before time.Time) ([]*model.FollowUpTask, error) {
	query := `
		SELECT id, clinic_id, doctor_id, patient_id, consultation_id,
			   title, description, due_date, is_completed, completed_at, notes,
			   created_at, updated_at
		FROM follow_up_tasks
		WHERE is_completed = false
		AND due_date < $1
		ORDER BY due_date ASC
	`
	before = time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, time.UTC)

	var tasks []*model.FollowUpTask
	if err := r.db.SelectContext(ctx, &tasks, query, before); err != nil {
		return nil, fmt.Errorf("failed to list overdue follow-up tasks: %w", err)
	}
	return tasks, nil
}
