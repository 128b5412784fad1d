package handlers

import (
	"net/http"

	"github.com/onegreenvn/student-campaigns-backend/internal/middleware"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/services"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type ParticipationHandler struct {
	participationService *services.ParticipationService
}

func NewParticipationHandler(participationService *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participationService: participationService}
}

// Register godoc
// @Summary Register for a campaign
// @Description Creates a pending participation for the caller
// @Tags participations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.RegisterParticipationRequest true "Registration form"
// @Success 201 {object} models.Participation
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /campaigns/{id}/participations [post]
func (h *ParticipationHandler) Register(c *gin.Context) {
	var req models.RegisterParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	participation, err := h.participationService.Register(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to register participation")
		return
	}

	c.JSON(http.StatusCreated, participation)
}

// GetMine godoc
// @Summary Get my participation in a campaign
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} services.ParticipationView
// @Failure 404 {object} map[string]interface{}
// @Router /campaigns/{id}/participations/me [get]
func (h *ParticipationHandler) GetMine(c *gin.Context) {
	view, err := h.participationService.GetMine(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get participation")
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetByCampaign godoc
// @Summary List a campaign's participations (Reviewer only)
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param status query string false "Status filter" Enums(pending, approved, rejected)
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /campaigns/{id}/participations [get]
func (h *ParticipationHandler) GetByCampaign(c *gin.Context) {
	participations, pagination, err := h.participationService.List(c.Request.Context(), middleware.CurrentActor(c), store.ParticipationFilter{
		CampaignID: c.Param("id"),
		Status:     models.ParticipationStatus(c.Query("status")),
		PageRequest: utils.ParsePageRequest(c.Query("page"), c.Query("page_size")),
	})
	if err != nil {
		respondError(c, err, "Failed to get participations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": participations, "pagination": pagination})
}

// Review godoc
// @Summary Approve or reject a participation (Reviewer only)
// @Tags participations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Param request body models.ReviewParticipationRequest true "Review decision"
// @Success 200 {object} models.Participation
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /participations/{id}/review [put]
func (h *ParticipationHandler) Review(c *gin.Context) {
	var req models.ReviewParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	participation, err := h.participationService.Review(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to review participation")
		return
	}

	c.JSON(http.StatusOK, participation)
}

// GetHistory godoc
// @Summary Status history of a participation (Reviewer only)
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Participation ID"
// @Success 200 {array} models.StatusHistory
// @Failure 404 {object} map[string]interface{}
// @Router /participations/{id}/history [get]
func (h *ParticipationHandler) GetHistory(c *gin.Context) {
	history, err := h.participationService.History(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get participation history")
		return
	}

	c.JSON(http.StatusOK, history)
}
