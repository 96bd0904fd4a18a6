package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/model"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Identity is the authenticated caller as resolved from the session token.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Role     string
	ClinicID *uuid.UUID
}

const ContextIdentity = "identity"

// IdentityFrom returns the caller identity set by Authenticate.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*Identity)
	return ident, ok
}

// CheckRole is the role axis of authorization: the caller's role must be in
// the operation's allow-list. It never considers clinic membership.
func CheckRole(ident *Identity, allowed []string) error {
	for _, role := range allowed {
		if ident.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden("insufficient role")
}

// CheckClinicScope is the tenant axis: the target clinic must be the caller's
// own clinic unless the caller is a system admin. It never widens what a role
// allows.
func CheckClinicScope(ident *Identity, target uuid.UUID) error {
	if ident.Role == model.RoleSystemAdmin {
		return nil
	}
	if ident.ClinicID != nil && *ident.ClinicID == target {
		return nil
	}
	return apperrors.Forbidden("clinic access denied")
}

// ResolveTargetClinic extracts the clinic id an operation targets, checking
// path param, then query, then JSON body, in that order. A missing id is a
// client error, distinct from an authorization failure.
func ResolveTargetClinic(c *gin.Context) (uuid.UUID, error) {
	if raw := c.Param("clinic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, apperrors.BadRequest("invalid clinic ID", err)
		}
		return id, nil
	}

	if raw := c.Query("clinic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, apperrors.BadRequest("invalid clinic ID", err)
		}
		return id, nil
	}

	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return uuid.Nil, apperrors.BadRequest("failed to read request body", err)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		var peek struct {
			ClinicID string `json:"clinic_id"`
		}
		if err := json.Unmarshal(body, &peek); err == nil && peek.ClinicID != "" {
			id, err := uuid.Parse(peek.ClinicID)
			if err != nil {
				return uuid.Nil, apperrors.BadRequest("invalid clinic ID", err)
			}
			return id, nil
		}
	}

	return uuid.Nil, apperrors.BadRequest("clinic ID is required", nil)
}

// RequireRoles guards an operation with a declarative role allow-list.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			return
		}

		if err := CheckRole(ident, roles); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role"))
			return
		}
		c.Next()
	}
}

// RequireClinicScope guards clinic-scoped resources. It must run after
// Authenticate and denies before the handler executes, so a denied request
// performs no writes.
func RequireClinicScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
			return
		}

		target, err := ResolveTargetClinic(c)
		if err != nil {
			appErr, _ := apperrors.As(err)
			c.AbortWithStatusJSON(appErr.StatusCode(), handler.NewErrorResponse(appErr.Message))
			return
		}

		if err := CheckClinicScope(ident, target); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("clinic access denied"))
			return
		}

		c.Set("target_clinic_id", target)
		c.Next()
	}
}
