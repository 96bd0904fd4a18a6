package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/testutil"
	pkgauth "github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

func newTestAuth(t *testing.T) (Service, *testutil.MemUserRepo, *testutil.MemClinicRepo, security.PasswordHasher) {
	t.Helper()
	users := testutil.NewMemUserRepo()
	clinics := testutil.NewMemClinicRepo()
	hasher := security.NewBcryptHasher(4)
	jwt := pkgauth.NewJWTService(pkgauth.Config{Secret: "s", RefreshSecret: "r"})
	return NewService(users, clinics, jwt, hasher, zerolog.Nop()), users, clinics, hasher
}

func seedUser(t *testing.T, users *testutil.MemUserRepo, hasher security.PasswordHasher, clinicID *uuid.UUID, status string) *model.User {
	t.Helper()
	hash, err := hasher.Hash("correct-horse-1")
	require.NoError(t, err)
	u := &model.User{
		ClinicID:     clinicID,
		Email:        "doc@clinic.test",
		Name:         "Doc",
		PasswordHash: hash,
		Role:         model.RoleDoctor,
		Status:       status,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func seedClinic(t *testing.T, clinics *testutil.MemClinicRepo, status model.ClinicStatus) *model.Clinic {
	t.Helper()
	c := &model.Clinic{Name: "C", Email: "c@c.test", Phone: "1", Status: status}
	require.NoError(t, clinics.Create(context.Background(), c))
	return c
}

func TestLoginSuccess(t *testing.T) {
	svc, users, clinics, hasher := newTestAuth(t)
	clinic := seedClinic(t, clinics, model.ClinicStatusActive)
	seedUser(t, users, hasher, &clinic.ID, model.UserStatusActive)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.test",
		Password: "correct-horse-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	require.NotNil(t, tokens.User)
	assert.NotNil(t, tokens.User.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, clinics, hasher := newTestAuth(t)
	clinic := seedClinic(t, clinics, model.ClinicStatusActive)
	seedUser(t, users, hasher, &clinic.ID, model.UserStatusActive)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.test",
		Password: "wrong-password-1",
	})

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthenticated, appErr.Code)
}

// Unknown emails and wrong passwords are indistinguishable to the caller.
func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestAuth(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@clinic.test",
		Password: "whatever-123",
	})

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthenticated, appErr.Code)
}

// Staff of a suspended or pending clinic cannot sign in even with correct
// credentials.
func TestLoginBlockedByClinicStatus(t *testing.T) {
	for _, status := range []model.ClinicStatus{model.ClinicStatusPending, model.ClinicStatusSuspended, model.ClinicStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			svc, users, clinics, hasher := newTestAuth(t)
			clinic := seedClinic(t, clinics, status)
			seedUser(t, users, hasher, &clinic.ID, model.UserStatusActive)

			_, err := svc.Login(context.Background(), &model.LoginRequest{
				Email:    "doc@clinic.test",
				Password: "correct-horse-1",
			})

			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
		})
	}
}

// System admins have no clinic, so no clinic status can block them.
func TestLoginSystemAdminWithoutClinic(t *testing.T) {
	svc, users, _, hasher := newTestAuth(t)
	hash, err := hasher.Hash("correct-horse-1")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &model.User{
		Email:        "admin@platform.test",
		Name:         "Admin",
		PasswordHash: hash,
		Role:         model.RoleSystemAdmin,
		Status:       model.UserStatusActive,
	}))

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "admin@platform.test",
		Password: "correct-horse-1",
	})
	assert.NoError(t, err)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users, clinics, hasher := newTestAuth(t)
	clinic := seedClinic(t, clinics, model.ClinicStatusActive)
	seedUser(t, users, hasher, &clinic.ID, model.UserStatusInactive)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.test",
		Password: "correct-horse-1",
	})

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestRefresh(t *testing.T) {
	svc, users, clinics, hasher := newTestAuth(t)
	clinic := seedClinic(t, clinics, model.ClinicStatusActive)
	seedUser(t, users, hasher, &clinic.ID, model.UserStatusActive)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.test",
		Password: "correct-horse-1",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token.
	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}
