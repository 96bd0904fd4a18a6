package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identity(role string, clinicID *uuid.UUID) *Identity {
	return &Identity{
		UserID:   uuid.New(),
		Email:    "someone@clinic.test",
		Role:     role,
		ClinicID: clinicID,
	}
}

func TestCheckRole(t *testing.T) {
	clinicID := uuid.New()

	cases := []struct {
		name    string
		role    string
		allowed []string
		wantErr bool
	}{
		{"doctor allowed", model.RoleDoctor, []string{model.RoleDoctor, model.RoleNurse}, false},
		{"nurse allowed", model.RoleNurse, []string{model.RoleDoctor, model.RoleNurse}, false},
		{"owner not in clinical list", model.RoleClinicOwner, []string{model.RoleDoctor, model.RoleNurse}, true},
		{"admin needs explicit listing", model.RoleSystemAdmin, []string{model.RoleDoctor}, true},
		{"empty list denies all", model.RoleSystemAdmin, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRole(identity(tc.role, &clinicID), tc.allowed)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckClinicScope(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	t.Run("own clinic allowed", func(t *testing.T) {
		assert.NoError(t, CheckClinicScope(identity(model.RoleDoctor, &own), own))
	})

	t.Run("other clinic denied", func(t *testing.T) {
		assert.Error(t, CheckClinicScope(identity(model.RoleDoctor, &own), other))
	})

	t.Run("owner cannot cross clinics", func(t *testing.T) {
		assert.Error(t, CheckClinicScope(identity(model.RoleClinicOwner, &own), other))
	})

	t.Run("system admin bypasses scope", func(t *testing.T) {
		assert.NoError(t, CheckClinicScope(identity(model.RoleSystemAdmin, nil), other))
	})

	t.Run("nil clinic denied for staff", func(t *testing.T) {
		assert.Error(t, CheckClinicScope(identity(model.RoleDoctor, nil), other))
	})
}

func TestResolveTargetClinic(t *testing.T) {
	pathID := uuid.New()
	queryID := uuid.New()
	bodyID := uuid.New()

	newCtx := func(method, url string, body []byte) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		var reader *bytes.Buffer
		if body != nil {
			reader = bytes.NewBuffer(body)
			c.Request = httptest.NewRequest(method, url, reader)
		} else {
			c.Request = httptest.NewRequest(method, url, nil)
		}
		return c
	}

	t.Run("path param wins", func(t *testing.T) {
		c := newCtx(http.MethodGet, "/clinics/x?clinic_id="+queryID.String(), nil)
		c.Params = gin.Params{{Key: "clinic_id", Value: pathID.String()}}

		got, err := ResolveTargetClinic(c)
		require.NoError(t, err)
		assert.Equal(t, pathID, got)
	})

	t.Run("query", func(t *testing.T) {
		c := newCtx(http.MethodGet, "/patients?clinic_id="+queryID.String(), nil)

		got, err := ResolveTargetClinic(c)
		require.NoError(t, err)
		assert.Equal(t, queryID, got)
	})

	t.Run("body", func(t *testing.T) {
		body := []byte(`{"clinic_id":"` + bodyID.String() + `","name":"x"}`)
		c := newCtx(http.MethodPost, "/patients", body)

		got, err := ResolveTargetClinic(c)
		require.NoError(t, err)
		assert.Equal(t, bodyID, got)
	})

	t.Run("body is restored after peeking", func(t *testing.T) {
		body := []byte(`{"clinic_id":"` + bodyID.String() + `"}`)
		c := newCtx(http.MethodPost, "/patients", body)

		_, err := ResolveTargetClinic(c)
		require.NoError(t, err)

		var parsed struct {
			ClinicID string `json:"clinic_id"`
		}
		require.NoError(t, c.ShouldBindJSON(&parsed))
		assert.Equal(t, bodyID.String(), parsed.ClinicID)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		c := newCtx(http.MethodGet, "/patients", nil)

		_, err := ResolveTargetClinic(c)
		assert.Error(t, err)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		c := newCtx(http.MethodGet, "/patients?clinic_id=not-a-uuid", nil)

		_, err := ResolveTargetClinic(c)
		assert.Error(t, err)
	})
}

// A scope denial must abort before the handler runs, so the request has no
// side effects.
func TestRequireClinicScopeAbortsBeforeHandler(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	r := gin.New()
	handlerRan := false
	r.GET("/patients", func(c *gin.Context) {
		c.Set(ContextIdentity, identity(model.RoleDoctor, &own))
	}, RequireClinicScope(), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients?clinic_id="+other.String(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, handlerRan)
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(ContextIdentity, identity(model.RoleDoctor, nil))
	}, RequireRoles(model.RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesUnauthenticated(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireRoles(model.RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
