package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/clinic"
)

type Handler struct {
	svc clinic.Service
}

func NewHandler(svc clinic.Service) *Handler {
	return &Handler{svc: svc}
}

// Register is the public self-service registration endpoint. New clinics
// start pending and wait for an admin decision.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email is required"))
		return
	}

	available, err := h.svc.EmailAvailable(c.Request.Context(), email)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"available": available}))
}

func (h *Handler) CheckPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("phone is required"))
		return
	}

	available, err := h.svc.PhoneAvailable(c.Request.Context(), phone)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"available": available}))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	found, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

// List is admin-only; the status query filters by lifecycle state.
func (h *Handler) List(c *gin.Context) {
	filters := &model.ClinicFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	clinics, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, func(ctx *gin.Context, id, adminID uuid.UUID, req *model.ClinicDecisionRequest) (*model.Clinic, error) {
		return h.svc.Approve(ctx.Request.Context(), id, adminID, req.Notes)
	})
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, func(ctx *gin.Context, id, adminID uuid.UUID, req *model.ClinicDecisionRequest) (*model.Clinic, error) {
		return h.svc.Reject(ctx.Request.Context(), id, adminID, req.Reason)
	})
}

func (h *Handler) Suspend(c *gin.Context) {
	h.decide(c, func(ctx *gin.Context, id, adminID uuid.UUID, req *model.ClinicDecisionRequest) (*model.Clinic, error) {
		return h.svc.Suspend(ctx.Request.Context(), id, adminID, req.Reason)
	})
}

func (h *Handler) Reactivate(c *gin.Context) {
	h.decide(c, func(ctx *gin.Context, id, adminID uuid.UUID, req *model.ClinicDecisionRequest) (*model.Clinic, error) {
		return h.svc.Reactivate(ctx.Request.Context(), id, adminID)
	})
}

func (h *Handler) decide(c *gin.Context, apply func(*gin.Context, uuid.UUID, uuid.UUID, *model.ClinicDecisionRequest) (*model.Clinic, error)) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return
	}

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	// Decision bodies are optional; an empty body means no notes or reason.
	var req model.ClinicDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	updated, err := apply(c, id, ident.UserID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
