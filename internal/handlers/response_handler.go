package handlers

import (
	"net/http"

	"pharmacy_backend/internal/auth"
	"pharmacy_backend/internal/middleware"
	"pharmacy_backend/internal/services"
	"pharmacy_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ResponseHandler serves pharmacy offers on prescriptions.
type ResponseHandler struct {
	*BaseHandler
	responseService services.PharmacyResponseService
}

func NewResponseHandler(base *BaseHandler, responseService services.PharmacyResponseService) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     base,
		responseService: responseService,
	}
}

func (h *ResponseHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	prescriptions := r.Group("/prescriptions/:prescriptionId/responses")
	prescriptions.Use(guards.Session)
	{
		prescriptions.POST("", middleware.RoleMiddleware(auth.RolePharmacy), h.Respond)
		prescriptions.GET("", h.ListForPrescription)
	}

	responses := r.Group("/responses")
	responses.Use(guards.Session, middleware.RoleMiddleware(auth.RolePatient))
	{
		responses.POST("/:responseId/accept", h.Accept)
	}
}

// Respond godoc
// @Summary Offer medicines for a prescription
// @Description The patient is notified after the offer is stored.
// @Tags responses
// @Accept json
// @Produce json
// @Param prescriptionId path string true "Prescription id"
// @Param request body dto.CreatePharmacyResponseRequest true "Offer"
// @Success 200 {object} dto.PharmacyResponseResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Prescription closed"
// @Security BearerAuth
// @Router /api/v1/prescriptions/{prescriptionId}/responses [post]
func (h *ResponseHandler) Respond(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	var req dto.CreatePharmacyResponseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.responseService.Respond(c.Request.Context(), h.GetDB(c), caller, c.Param("prescriptionId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListForPrescription godoc
// @Summary List offers on a prescription
// @Tags responses
// @Produce json
// @Param prescriptionId path string true "Prescription id"
// @Success 200 {array} dto.PharmacyResponseResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/prescriptions/{prescriptionId}/responses [get]
func (h *ResponseHandler) ListForPrescription(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	responses, err := h.responseService.ListForPrescription(c.Request.Context(), h.GetDB(c), caller, c.Param("prescriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// Accept godoc
// @Summary Accept an offer
// @Description Declines the other offers and closes the prescription.
// @Tags responses
// @Produce json
// @Param responseId path string true "Response id"
// @Success 200 {object} dto.PharmacyResponseResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/responses/{responseId}/accept [post]
func (h *ResponseHandler) Accept(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	response, err := h.responseService.Accept(c.Request.Context(), h.GetDB(c), caller, c.Param("responseId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
