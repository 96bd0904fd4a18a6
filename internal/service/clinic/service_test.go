package clinic

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type fakeClinicRepo struct {
	byID map[uuid.UUID]*model.Clinic
}

func newFakeClinicRepo() *fakeClinicRepo {
	return &fakeClinicRepo{byID: make(map[uuid.UUID]*model.Clinic)}
}

func (f *fakeClinicRepo) Create(_ context.Context, c *model.Clinic) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeClinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClinicRepo) Update(_ context.Context, c *model.Clinic) error {
	if _, ok := f.byID[c.ID]; !ok {
		return sql.ErrNoRows
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeClinicRepo) List(_ context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	var out []*model.Clinic
	for _, c := range f.byID {
		if filters.Status != "" && string(c.Status) != filters.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClinicRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, c := range f.byID {
		if strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClinicRepo) PhoneExists(_ context.Context, phone string) (bool, error) {
	for _, c := range f.byID {
		if c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, error) {
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

type fakeMailer struct {
	approved  []string
	rejected  []string
	suspended []string
}

func (f *fakeMailer) SendClinicApproved(to, _ string) error {
	f.approved = append(f.approved, to)
	return nil
}

func (f *fakeMailer) SendClinicRejected(to, _, _ string) error {
	f.rejected = append(f.rejected, to)
	return nil
}

func (f *fakeMailer) SendClinicSuspended(to, _, _ string) error {
	f.suspended = append(f.suspended, to)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeClinicRepo, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	clinics := newFakeClinicRepo()
	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := NewService(clinics, users, &fakeOutboxRepo{}, security.NewBcryptHasher(4), mailer, zerolog.Nop())
	return svc, clinics, users, mailer
}

func registerRequest() *model.RegisterClinicRequest {
	return &model.RegisterClinicRequest{
		Name:          "Sunrise Clinic",
		Email:         "clinic@sunrise.test",
		Phone:         "+966500000001",
		Address:       "Riyadh",
		OwnerName:     "Dr. Owner",
		OwnerEmail:    "owner@sunrise.test",
		OwnerPassword: "very-secret-1",
	}
}

func TestRegisterCreatesPendingClinicWithOwner(t *testing.T) {
	svc, _, users, _ := newTestService(t)

	clinic, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.Equal(t, model.ClinicStatusPending, clinic.Status)

	owner, err := users.GetByEmail(context.Background(), "owner@sunrise.test")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClinicOwner, owner.Role)
	require.NotNil(t, owner.ClinicID)
	assert.Equal(t, clinic.ID, *owner.ClinicID)
	assert.NotEqual(t, "very-secret-1", owner.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Phone = "+966500000099"
	req.OwnerEmail = "other@sunrise.test"
	_, err = svc.Register(ctx, req)

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	req := registerRequest()
	req.Email = "other@sunrise.test"
	req.OwnerEmail = "other-owner@sunrise.test"
	_, err = svc.Register(ctx, req)

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestLifecycle(t *testing.T) {
	svc, _, _, mailer := newTestService(t)
	ctx := context.Background()
	adminID := uuid.New()

	clinic, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, clinic.ID, adminID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, model.ClinicStatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, adminID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, []string{"clinic@sunrise.test"}, mailer.approved)

	suspended, err := svc.Suspend(ctx, clinic.ID, adminID, "billing")
	require.NoError(t, err)
	assert.Equal(t, model.ClinicStatusSuspended, suspended.Status)
	require.NotNil(t, suspended.SuspensionReason)
	assert.Equal(t, "billing", *suspended.SuspensionReason)

	reactivated, err := svc.Reactivate(ctx, clinic.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, model.ClinicStatusActive, reactivated.Status)
	assert.Nil(t, reactivated.SuspensionReason)
}

func TestInvalidTransitions(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	adminID := uuid.New()

	clinic, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	// Pending clinics cannot be suspended.
	_, err = svc.Suspend(ctx, clinic.ID, adminID, "")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	// Rejection is terminal.
	_, err = svc.Reject(ctx, clinic.ID, adminID, "incomplete papers")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, clinic.ID, adminID, "")
	assert.Error(t, err)
	_, err = svc.Reactivate(ctx, clinic.ID, adminID)
	assert.Error(t, err)
}

func TestAvailabilityChecks(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	available, err := svc.EmailAvailable(ctx, "clinic@sunrise.test")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	available, err = svc.EmailAvailable(ctx, "clinic@sunrise.test")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.PhoneAvailable(ctx, "+966500000001")
	require.NoError(t, err)
	assert.False(t, available)
}
