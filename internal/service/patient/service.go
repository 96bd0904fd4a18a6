package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, clinicID, id uuid.UUID) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)

	AddFile(ctx context.Context, clinicID uuid.UUID, file *model.PatientFile) error
	ListFiles(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.PatientFile, error)
	LogCommunication(ctx context.Context, clinicID uuid.UUID, log *model.CommunicationLog) error
	ListCommunications(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.CommunicationLog, error)
}

type service struct {
	repo  repository.PatientRepository
	files repository.PatientFileRepository
	comms repository.CommunicationLogRepository
	now   func() time.Time
}

func NewService(repo repository.PatientRepository, files repository.PatientFileRepository, comms repository.CommunicationLogRepository) Service {
	return &service{repo: repo, files: files, comms: comms, now: time.Now}
}

func (s *service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	p := &model.Patient{
		ClinicID:   uuid.MustParse(req.ClinicID),
		FileNumber: req.FileNumber,
		Name:       req.Name,
	}
	if p.FileNumber == "" {
		p.FileNumber = model.NewFileNumber(s.now())
	}
	if req.Email != "" {
		p.Email = &req.Email
	}
	if req.Phone != "" {
		p.Phone = &req.Phone
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(model.DateOnly, req.DateOfBirth)
		if err != nil {
			return nil, apperrors.BadRequest("invalid date_of_birth, expected YYYY-MM-DD", err)
		}
		p.DateOfBirth = &dob
	}
	if req.Gender != "" {
		p.Gender = &req.Gender
	}
	if req.Address != "" {
		p.Address = &req.Address
	}
	if req.Notes != "" {
		p.Notes = &req.Notes
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	return s.getScoped(ctx, clinicID, id)
}

// getScoped loads a patient and checks it belongs to clinicID. A patient
// from another clinic reads as not found so callers cannot tell foreign
// ids apart from missing ones.
func (s *service) getScoped(ctx context.Context, clinicID, id uuid.UUID) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if p.ClinicID != clinicID {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, clinicID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.getScoped(ctx, clinicID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Gender != nil {
		p.Gender = req.Gender
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	if _, err := s.getScoped(ctx, clinicID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *service) AddFile(ctx context.Context, clinicID uuid.UUID, file *model.PatientFile) error {
	if _, err := s.getScoped(ctx, clinicID, file.PatientID); err != nil {
		return err
	}
	if err := s.files.Create(ctx, file); err != nil {
		return fmt.Errorf("failed to add patient file: %w", err)
	}
	return nil
}

func (s *service) ListFiles(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.PatientFile, error) {
	if _, err := s.getScoped(ctx, clinicID, patientID); err != nil {
		return nil, err
	}
	files, err := s.files.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient files: %w", err)
	}
	return files, nil
}

func (s *service) LogCommunication(ctx context.Context, clinicID uuid.UUID, log *model.CommunicationLog) error {
	if _, err := s.getScoped(ctx, clinicID, log.PatientID); err != nil {
		return err
	}
	if err := s.comms.Create(ctx, log); err != nil {
		return fmt.Errorf("failed to log communication: %w", err)
	}
	return nil
}

func (s *service) ListCommunications(ctx context.Context, clinicID, patientID uuid.UUID) ([]*model.CommunicationLog, error) {
	if _, err := s.getScoped(ctx, clinicID, patientID); err != nil {
		return nil, err
	}
	logs, err := s.comms.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	return logs, nil
}
