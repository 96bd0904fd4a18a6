package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
)

type communicationLogRepository struct {
	*BaseRepository
}

func NewCommunicationLogRepository(base *BaseRepository) repository.CommunicationLogRepository {
	return &communicationLogRepository{BaseRepository: base}
}

func (r *communicationLogRepository) Create(ctx context.Context, log *model.CommunicationLog) error {
	query := `
		INSERT INTO communication_logs (
			id, clinic_id, patient_id, user_id, channel, subject, content,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	log.ID = uuid.New()
	log.CreatedAt = time.Now()
	log.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.ClinicID,
		log.PatientID,
		log.UserID,
		log.Channel,
		log.Subject,
		log.Content,
		log.CreatedAt,
		log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create communication log: %w", err)
	}
	return nil
}

func (r *communicationLogRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CommunicationLog, error) {
	query := `
		SELECT id, clinic_id, patient_id, user_id, channel, subject, content,
			   created_at, updated_at
		FROM communication_logs
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var logs []*model.CommunicationLog
	if err := r.db.SelectContext(ctx, &logs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list communication logs: %w", err)
	}
	return logs, nil
}
