package handlers

import (
	"errors"
	"net/http"

	"github.com/onegreenvn/student-campaigns-backend/internal/middleware"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/auth"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	authService *auth.AuthService
}

func NewAdminHandler(authService *auth.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// GetAllUsers godoc
// @Summary Get all users (Admin only)
// @Description List users with pagination, optional username search and role filter
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param search query string false "Username search"
// @Param role query string false "Role filter" Enums(student, donor, reviewer, admin)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /admin/users [get]
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	page := utils.ParsePageRequest(c.Query("page"), c.Query("page_size")).Normalized()

	role := models.UserRole(c.Query("role"))
	if role != "" && !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": auth.ErrInvalidRole.Error()})
		return
	}

	users, total, err := h.authService.GetAllUsers(page, c.Query("search"), role)
	if err != nil {
		respondError(c, err, "Failed to get users")
		return
	}

	data := make([]models.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, users[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": page.Result(total),
	})
}

// SetVerification godoc
// @Summary Set a user's verification status (Admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body models.SetVerificationRequest true "Verification status"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/verification [put]
func (h *AdminHandler) SetVerification(c *gin.Context) {
	var req models.SetVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.SetVerificationStatus(c.Param("id"), req.Status)
	if err != nil {
		h.respondUserError(c, err, "Failed to update verification status")
		return
	}

	logrus.Infof("Admin %s set verification of %s to %s", c.GetString("user_id"), user.ID, user.VerificationStatus)
	c.JSON(http.StatusOK, user.ToResponse())
}

// SetRole godoc
// @Summary Set a user's role (Admin only)
// @Description Changing a role revokes the user's existing access tokens
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body models.SetRoleRequest true "Role"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if c.Param("id") == c.GetString("user_id") && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove your own admin role"})
		return
	}

	user, err := h.authService.SetUserRole(c.Param("id"), req.Role)
	if err != nil {
		h.respondUserError(c, err, "Failed to update role")
		return
	}

	logrus.Infof("Admin %s set role of %s to %s", c.GetString("user_id"), user.ID, user.Role)
	c.JSON(http.StatusOK, user.ToResponse())
}

// SetUserStatus godoc
// @Summary Set user active status (Admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body map[string]bool true "Status request {\"is_active\": true/false}"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	current := middleware.CurrentUser(c)
	if current != nil && current.ID == c.Param("id") && !*req.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot deactivate your own account"})
		return
	}

	if err := h.authService.SetUserActive(c.Param("id"), *req.IsActive); err != nil {
		h.respondUserError(c, err, "Failed to update user status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User status updated successfully"})
}

func (h *AdminHandler) respondUserError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrInvalidVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		respondError(c, err, fallback)
	}
}
