package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(Config{Secret: "access-secret", RefreshSecret: "refresh-secret"})

	clinicID := uuid.New()
	user := &model.User{
		Base:     model.Base{ID: uuid.New()},
		ClinicID: &clinicID,
		Email:    "doc@clinic.test",
		Role:     model.RoleDoctor,
	}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleDoctor, claims.Role)
	require.NotNil(t, claims.ClinicID)
	assert.Equal(t, clinicID, *claims.ClinicID)
}

func TestAccessTokenWithoutClinic(t *testing.T) {
	svc := NewJWTService(Config{Secret: "access-secret", RefreshSecret: "refresh-secret"})

	token, err := svc.GenerateAccessToken(&model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "admin@platform.test",
		Role:  model.RoleSystemAdmin,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ClinicID)
}

// Access and refresh tokens are signed with separate secrets, so one never
// validates as the other.
func TestTokenSecretsAreSeparate(t *testing.T) {
	svc := NewJWTService(Config{Secret: "access-secret", RefreshSecret: "refresh-secret"})
	user := &model.User{Base: model.Base{ID: uuid.New()}, Email: "doc@clinic.test", Role: model.RoleDoctor}

	access, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := NewJWTService(Config{Secret: "access-secret", RefreshSecret: "refresh-secret"})

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
