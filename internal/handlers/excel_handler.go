package handlers

import (
	"fmt"
	"net/http"

	"github.com/onegreenvn/student-campaigns-backend/internal/middleware"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/excel"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExcelHandler handles HTTP requests related to Excel operations
type ExcelHandler struct {
	excelService *excel.Service
}

// NewExcelHandler creates a new ExcelHandler instance
func NewExcelHandler(excelService *excel.Service) *ExcelHandler {
	return &ExcelHandler{excelService: excelService}
}

// ExportCampaign handles GET /admin/campaigns/:id/export
// @Summary Export campaign participations and submissions to Excel
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {file} file "xlsx workbook"
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /admin/campaigns/{id}/export [get]
func (h *ExcelHandler) ExportCampaign(c *gin.Context) {
	result, err := h.excelService.ExportCampaign(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to export campaign")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}
