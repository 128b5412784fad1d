package handlers

import (
	"net/http"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/middleware"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/services"
	"github.com/onegreenvn/student-campaigns-backend/internal/store"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService    *services.CampaignService
	eligibilityService *services.EligibilityService
	submissionService  *services.SubmissionService
}

func NewCampaignHandler(campaignService *services.CampaignService, eligibilityService *services.EligibilityService, submissionService *services.SubmissionService) *CampaignHandler {
	return &CampaignHandler{
		campaignService:    campaignService,
		eligibilityService: eligibilityService,
		submissionService:  submissionService,
	}
}

// GetCampaigns godoc
// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Param status query string false "Status filter" Enums(draft, active, completed, cancelled)
// @Param search query string false "Title search"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /campaigns [get]
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, pagination, err := h.campaignService.ListCampaigns(c.Request.Context(), store.CampaignFilter{
		Status:      models.CampaignStatus(c.Query("status")),
		Search:      c.Query("search"),
		PageRequest: utils.ParsePageRequest(c.Query("page"), c.Query("page_size")),
	})
	if err != nil {
		respondError(c, err, "Failed to get campaigns")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": campaigns, "pagination": pagination})
}

// GetCampaignByID godoc
// @Summary Get campaign by ID
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Failure 404 {object} map[string]interface{}
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) GetCampaignByID(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get campaign")
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// GetDecision godoc
// @Summary What can the caller do next in a campaign
// @Description Returns the single eligibility decision for the caller. Anonymous callers get not_authenticated.
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} lifecycle.Decision
// @Failure 404 {object} map[string]interface{}
// @Router /campaigns/{id}/decision [get]
func (h *CampaignHandler) GetDecision(c *gin.Context) {
	decision, err := h.eligibilityService.GetDecision(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to evaluate eligibility")
		return
	}

	c.JSON(http.StatusOK, decision)
}

// GetLeaderboard godoc
// @Summary Campaign leaderboard
// @Description Graded submissions ranked by position, then score
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {array} models.LeaderboardEntry
// @Failure 404 {object} map[string]interface{}
// @Router /campaigns/{id}/leaderboard [get]
func (h *CampaignHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.submissionService.Leaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get leaderboard")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// CreateCampaign godoc
// @Summary Create a new campaign (Admin only)
// @Description Creates a draft campaign. Blocking timeline issues fail with 400; warnings are returned with the campaign.
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Campaign data"
// @Success 201 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), middleware.CurrentActor(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create campaign")
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// UpdateCampaign godoc
// @Summary Update a campaign (Admin only)
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.UpdateCampaignRequest true "Campaign data"
// @Success 200 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	var req models.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update campaign")
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// UpdateCampaignStatus godoc
// @Summary Change campaign status (Admin only)
// @Description draft -> active -> completed, or cancelled from draft or active
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.UpdateCampaignStatusRequest true "New status"
// @Success 200 {object} models.Campaign
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /campaigns/{id}/status [put]
func (h *CampaignHandler) UpdateCampaignStatus(c *gin.Context) {
	var req models.UpdateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	campaign, err := h.campaignService.UpdateStatus(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update campaign status")
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// ValidateTimeline godoc
// @Summary Validate a campaign timeline without saving (Admin only)
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CampaignRequest true "Campaign data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /campaigns/validate-timeline [post]
func (h *CampaignHandler) ValidateTimeline(c *gin.Context) {
	var req models.CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	issues := h.campaignService.ValidateTimeline(&req)
	valid := true
	for _, issue := range issues {
		if issue.Severity == lifecycle.SeverityError {
			valid = false
			break
		}
	}
	if issues == nil {
		issues = []models.TimelineIssue{}
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid, "issues": issues})
}
