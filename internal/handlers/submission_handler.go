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

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Submit godoc
// @Summary Submit a project to a campaign
// @Description Requires an approved participation and an open submission window
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.SubmitProjectRequest true "Project"
// @Success 201 {object} models.Submission
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /campaigns/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req models.SubmitProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to submit project")
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GetByCampaign godoc
// @Summary List a campaign's submissions (Reviewer only)
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /campaigns/{id}/submissions [get]
func (h *SubmissionHandler) GetByCampaign(c *gin.Context) {
	submissions, pagination, err := h.submissionService.List(c.Request.Context(), middleware.CurrentActor(c), store.SubmissionFilter{
		CampaignID: c.Param("id"),
		Status:     models.SubmissionStatus(c.Query("status")),
		PageRequest: utils.ParsePageRequest(c.Query("page"), c.Query("page_size")),
	})
	if err != nil {
		respondError(c, err, "Failed to get submissions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": submissions, "pagination": pagination})
}

// GetSubmissionByID godoc
// @Summary Get a submission
// @Description Visible to its owner and to reviewers
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmissionByID(c *gin.Context) {
	submission, err := h.submissionService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get submission")
		return
	}

	c.JSON(http.StatusOK, submission)
}

// StartReview godoc
// @Summary Move a submission to under_review (Reviewer only)
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /submissions/{id}/start-review [post]
func (h *SubmissionHandler) StartReview(c *gin.Context) {
	submission, err := h.submissionService.StartReview(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to start review")
		return
	}

	c.JSON(http.StatusOK, submission)
}

// Grade godoc
// @Summary Grade a submission (Reviewer only)
// @Description Records score, grade and outcome. winner holds position 1, runner_up 2 or 3.
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param request body models.GradeSubmissionRequest true "Grading decision"
// @Success 200 {object} models.Submission
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /submissions/{id}/grade [put]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	var req models.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	submission, err := h.submissionService.Grade(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to grade submission")
		return
	}

	c.JSON(http.StatusOK, submission)
}

// GetHistory godoc
// @Summary Status history of a submission (Reviewer only)
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {array} models.StatusHistory
// @Failure 404 {object} map[string]interface{}
// @Router /submissions/{id}/history [get]
func (h *SubmissionHandler) GetHistory(c *gin.Context) {
	history, err := h.submissionService.History(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get submission history")
		return
	}

	c.JSON(http.StatusOK, history)
}
