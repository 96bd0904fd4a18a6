package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/service/analytics"
)

type Handler struct {
	svc analytics.Service
}

func NewHandler(svc analytics.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Dashboard(c *gin.Context) {
	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)

	dashboard, err := h.svc.Dashboard(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dashboard))
}
