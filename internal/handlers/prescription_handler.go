package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/middleware"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"
	"pharmacy_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PrescriptionHandler struct {
	*BaseHandler
	prescriptionService services.PrescriptionService
}

func NewPrescriptionHandler(base *BaseHandler, prescriptionService services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{
		BaseHandler:         base,
		prescriptionService: prescriptionService,
	}
}

func (h *PrescriptionHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	prescriptions := r.Group("/prescriptions")
	prescriptions.Use(guards.Session)
	{
		prescriptions.POST("", middleware.RoleMiddleware(auth.RolePatient), h.Upload)
		prescriptions.GET("", middleware.RoleMiddleware(auth.RolePatient), h.ListMine)
		prescriptions.GET("/open", middleware.RoleMiddleware(auth.RolePharmacy, auth.RoleAdmin), h.ListOpen)
		prescriptions.GET("/:prescriptionId", h.Get)
		prescriptions.POST("/:prescriptionId/cancel", middleware.RoleMiddleware(auth.RolePatient), h.Cancel)
	}
}

// Upload godoc
// @Summary Upload a prescription
// @Description JSON body, or multipart form with an optional "image" file.
// @Tags prescriptions
// @Accept json,mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param notes formData string false "Notes"
// @Param image formData file false "Prescription image or PDF"
// @Success 200 {object} dto.PrescriptionResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/prescriptions [post]
func (h *PrescriptionHandler) Upload(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	var req dto.CreatePrescriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	var image *multipart.FileHeader
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, err := c.FormFile("image")
		switch {
		case err == nil:
			image = file
		case !errors.Is(err, http.ErrMissingFile):
			h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid image upload"))
			return
		}
	}

	prescription, err := h.prescriptionService.Upload(c.Request.Context(), h.GetDB(c), caller, &req, image)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, prescription)
}

// ListMine godoc
// @Summary List own prescriptions
// @Tags prescriptions
// @Produce json
// @Param status query string false "pending, responded, accepted or cancelled"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.PrescriptionListResponse
// @Security BearerAuth
// @Router /api/v1/prescriptions [get]
func (h *PrescriptionHandler) ListMine(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}
	var query dto.ListPrescriptionsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	response, err := h.prescriptionService.ListMine(c.Request.Context(), h.GetDB(c), caller, query.Status, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListOpen godoc
// @Summary List prescriptions open for offers
// @Tags prescriptions
// @Produce json
// @Success 200 {object} dto.PrescriptionListResponse
// @Security BearerAuth
// @Router /api/v1/prescriptions/open [get]
func (h *PrescriptionHandler) ListOpen(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}
	page, pageSize := ParsePagination(c)

	response, err := h.prescriptionService.ListOpen(c.Request.Context(), h.GetDB(c), caller, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	prescription, err := h.prescriptionService.Get(c.Request.Context(), h.GetDB(c), caller, c.Param("prescriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescription)
}

func (h *PrescriptionHandler) Cancel(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	if err := h.prescriptionService.Cancel(c.Request.Context(), h.GetDB(c), caller, c.Param("prescriptionId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Prescription cancelled"})
}
