package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/patient"
)

type Handler struct {
	svc patient.Service
}

func NewHandler(svc patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	found, err := h.svc.Get(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	updated, err := h.svc.Update(c.Request.Context(), clinicID, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	if err := h.svc.Delete(c.Request.Context(), clinicID, id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) List(c *gin.Context) {
	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	filters := &model.PatientFilters{
		ClinicID: clinicID,
		Search:   c.Query("search"),
	}

	patients, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) AddFile(c *gin.Context) {
	var req model.CreatePatientFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	file := &model.PatientFile{
		ClinicID:    uuid.MustParse(req.ClinicID),
		PatientID:   uuid.MustParse(req.PatientID),
		UploadedBy:  ident.UserID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		StoragePath: req.StoragePath,
	}
	if req.Description != "" {
		file.Description = &req.Description
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	if err := h.svc.AddFile(c.Request.Context(), clinicID, file); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(file))
}

func (h *Handler) ListFiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	files, err := h.svc.ListFiles(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(files))
}

func (h *Handler) LogCommunication(c *gin.Context) {
	var req model.CreateCommunicationLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication required"))
		return
	}

	log := &model.CommunicationLog{
		ClinicID:  uuid.MustParse(req.ClinicID),
		PatientID: uuid.MustParse(req.PatientID),
		UserID:    ident.UserID,
		Channel:   req.Channel,
		Subject:   req.Subject,
		Content:   req.Content,
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	if err := h.svc.LogCommunication(c.Request.Context(), clinicID, log); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(log))
}

func (h *Handler) ListCommunications(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	clinicID := c.MustGet("target_clinic_id").(uuid.UUID)
	logs, err := h.svc.ListCommunications(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}
