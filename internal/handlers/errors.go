package handlers

import (
	"errors"
	"net/http"

	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var kindStatus = map[lifecycle.Kind]int{
	lifecycle.KindValidation:  http.StatusBadRequest,
	lifecycle.KindPermission:  http.StatusForbidden,
	lifecycle.KindNotFound:    http.StatusNotFound,
	lifecycle.KindConflict:    http.StatusConflict,
	lifecycle.KindEligibility: http.StatusUnprocessableEntity,
}

// respondError writes a lifecycle error with its mapped status, or a 500 for
// anything else. Unexpected errors are reported to Sentry.
func respondError(c *gin.Context, err error, fallback string) {
	var le *lifecycle.Error
	if errors.As(err, &le) {
		body := gin.H{"error": le.Message, "code": le.Code}
		if len(le.Fields) > 0 {
			body["details"] = le.Fields
		}
		if len(le.Issues) > 0 {
			body["issues"] = le.Issues
		}
		c.JSON(kindStatus[le.Kind()], body)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found", "code": lifecycle.CodeNotFound})
		return
	}

	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Errorf("%s: %v", fallback, err)
	utils.CaptureError(err, map[string]string{
		"method": c.Request.Method,
		"route":  c.FullPath(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "code": lifecycle.CodeValidation, "details": err.Error()})
}
