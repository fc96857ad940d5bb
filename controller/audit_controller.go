// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m2m-works/scld/api/audit"
	"github.com/m2m-works/scld/api/util"
)

// AuditController exposes the operation records written by the resource
// controller.
type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

// RegisterRoutes registers the API routes for audit queries
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/records", ac.QueryRecords)
}

// QueryRecords endpoint
func (ac *AuditController) QueryRecords(c *gin.Context) {
	from, err := parseTimeParam(c.DefaultQuery("from", time.Now().Add(-24*time.Hour).Format(time.RFC3339)))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
		return
	}
	to, err := parseTimeParam(c.DefaultQuery("to", time.Now().Format(time.RFC3339)))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
		return
	}

	records, err := ac.auditService.QueryRecords(c, from, to, c.Query("requestingEntity"), c.Query("targetPath"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit records", err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func parseTimeParam(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
