package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
)

const maxExportWindow = 90 * 24 * time.Hour

func (s *Server) ListAuditLogs(c *gin.Context) {
	auditableID, err := snowflake.ParseString(c.Param("auditableId"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	logs, err := s.auditSvc.ListByAuditable(c.Request.Context(), c.Param("auditableType"), auditableID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, logs)
}

// ExportAuditLogs handles GET /api/v1/audit/export
func (s *Server) ExportAuditLogs(c *gin.Context) {
	startDateStr := strings.TrimSpace(c.Query("start_date"))
	endDateStr := strings.TrimSpace(c.Query("end_date"))
	formatStr := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	actionsStr := strings.TrimSpace(c.Query("actions"))

	if startDateStr == "" || endDateStr == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// End date is inclusive on the wire, exclusive in the query.
	endDate = endDate.Add(24 * time.Hour)
	if endDate.Before(startDate) || endDate.Sub(startDate) > maxExportWindow {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var format auditdomain.ExportFormat
	switch formatStr {
	case "csv":
		format = auditdomain.ExportFormatCSV
	case "json":
		format = auditdomain.ExportFormatJSON
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var actions []string
	if actionsStr != "" {
		for _, action := range strings.Split(actionsStr, ",") {
			actions = append(actions, strings.TrimSpace(action))
		}
	}

	result, err := s.auditExportSvc.Export(c.Request.Context(), auditdomain.ExportRequest{
		StartDate: startDate,
		EndDate:   endDate,
		Format:    format,
		Actions:   actions,
	})
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("X-Audit-Export-Checksum", result.Checksum)
	c.Header("X-Audit-Export-Count", strconv.Itoa(result.Count))

	var contentType, filename string
	switch result.Format {
	case auditdomain.ExportFormatCSV:
		contentType = "text/csv"
		filename = "audit_export_" + startDateStr + "_" + endDateStr + ".csv"
	case auditdomain.ExportFormatJSON:
		contentType = "application/json"
		filename = "audit_export_" + startDateStr + "_" + endDateStr + ".json"
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, contentType, result.Data)
}
