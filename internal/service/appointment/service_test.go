package appointment

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	byID map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	if _, ok := f.byID[a.ID]; !ok {
		return sql.ErrNoRows
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) SlotTaken(_ context.Context, doctorID uuid.UUID, date time.Time, slot string, excludeID *uuid.UUID) (bool, error) {
	for _, a := range f.byID {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == slot && a.Status != model.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointmentRepo) ListStartingBetween(_ context.Context, _, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeConsultationRepo struct {
	created []*model.Consultation
}

func (f *fakeConsultationRepo) Create(_ context.Context, c *model.Consultation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeConsultationRepo) Get(_ context.Context, _ uuid.UUID) (*model.Consultation, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeConsultationRepo) Update(_ context.Context, _ *model.Consultation) error { return nil }

func (f *fakeConsultationRepo) List(_ context.Context, _ *model.ConsultationFilters) ([]*model.Consultation, error) {
	return nil, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func createRequest(clinicID, doctorID uuid.UUID, date, slot string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		ClinicID:  clinicID.String(),
		DoctorID:  doctorID.String(),
		PatientID: uuid.New().String(),
		Date:      date,
		Time:      slot,
	}
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	doctorID := uuid.New()

	_, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateAllowsDifferentSlot(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	doctorID := uuid.New()

	_, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:30"))
	assert.NoError(t, err)
	_, err = svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-02", "10:00"))
	assert.NoError(t, err)
}

// A cancelled appointment frees its slot.
func TestCancelledSlotIsReusable(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	doctorID := uuid.New()

	appt, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, clinicID, appt.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	assert.NoError(t, err)
}

// Rescheduling onto the appointment's own slot is not a conflict.
func TestRescheduleOntoOwnSlot(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	doctorID := uuid.New()

	appt, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.NoError(t, err)

	slot := "10:00"
	_, err = svc.Update(ctx, clinicID, appt.ID, &model.UpdateAppointmentRequest{Time: &slot})
	assert.NoError(t, err)
}

func TestRescheduleOntoTakenSlot(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	doctorID := uuid.New()

	_, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "10:00"))
	require.NoError(t, err)
	appt, err := svc.Create(ctx, createRequest(clinicID, doctorID, "2026-04-01", "11:00"))
	require.NoError(t, err)

	slot := "10:00"
	_, err = svc.Update(ctx, clinicID, appt.ID, &model.UpdateAppointmentRequest{Time: &slot})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestStartOpensConsultation(t *testing.T) {
	repo := newFakeAppointmentRepo()
	consultations := &fakeConsultationRepo{}
	svc := NewService(repo, consultations, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()

	appt, err := svc.Create(ctx, createRequest(clinicID, uuid.New(), "2026-04-01", "10:00"))
	require.NoError(t, err)

	consultation, err := svc.Start(ctx, clinicID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationStatusInProgress, consultation.Status)
	require.NotNil(t, consultation.AppointmentID)
	assert.Equal(t, appt.ID, *consultation.AppointmentID)

	stored, err := svc.Get(ctx, clinicID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, stored.Status)

	// Starting again is a client error.
	_, err = svc.Start(ctx, clinicID, appt.ID)
	assert.Error(t, err)
}

func TestCreateInvalidDate(t *testing.T) {
	svc := NewService(newFakeAppointmentRepo(), &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), createRequest(uuid.New(), uuid.New(), "01/04/2026", "10:00"))
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), createRequest(uuid.New(), uuid.New(), "2026-04-01", "25:99"))
	assert.Error(t, err)
}

// An appointment is only visible through its own clinic; another clinic's
// id reads and mutates it as if it did not exist.
func TestClinicIsolation(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := NewService(repo, &fakeConsultationRepo{}, &fakeOutboxRepo{}, zerolog.Nop())
	ctx := context.Background()
	clinicID := uuid.New()
	otherClinic := uuid.New()

	appt, err := svc.Create(ctx, createRequest(clinicID, uuid.New(), "2026-04-01", "10:00"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherClinic, appt.ID)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	_, err = svc.Cancel(ctx, otherClinic, appt.ID)
	assert.Error(t, err)
	_, err = svc.Start(ctx, otherClinic, appt.ID)
	assert.Error(t, err)

	slot := "11:00"
	_, err = svc.Update(ctx, otherClinic, appt.ID, &model.UpdateAppointmentRequest{Time: &slot})
	assert.Error(t, err)

	stored, err := svc.Get(ctx, clinicID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, stored.Status)
}
