package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"medreport/internal/domain"
	"medreport/internal/export"
	"medreport/internal/service"
)

// ReportHandler handles report structuring endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// StructureRequest is the body of POST /reports/structure.
type StructureRequest struct {
	Text       string         `json:"text"`
	ReportType string         `json:"reportType"`
	Language   string         `json:"language"`
	Metadata   map[string]any `json:"metadata"`
}

// ExportRequest is the body of POST /reports/export.
type ExportRequest struct {
	StructureRequest
	Format string `json:"format"`
}

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

func (r StructureRequest) input() service.StructureInput {
	return service.StructureInput{
		Text:       r.Text,
		ReportType: domain.ReportType(r.ReportType),
		Language:   r.Language,
		Metadata:   r.Metadata,
	}
}

// Structure handles POST /api/v1/reports/structure.
func (h *ReportHandler) Structure(c *gin.Context) {
	var req StructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a text field")
		return
	}

	report, err := h.reportService.Structure(c.Request.Context(), req.input())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

// Export handles POST /api/v1/reports/export. The format comes from the body or the
// ?format= query parameter and defaults to json.
func (h *ReportHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a text field")
		return
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		HandleError(c, err)
		return
	}

	report, err := h.reportService.Structure(c.Request.Context(), req.input())
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, report, format); err != nil {
		HandleError(c, fmt.Errorf("export %s: %w", format, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.BuildFilename(report, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Extract handles POST /api/v1/extract.
func (h *ReportHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a text field")
		return
	}

	analysis, err := h.reportService.Extract(c.Request.Context(), service.ExtractInput{Text: req.Text})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, analysis)
}

// ReportTypes handles GET /api/v1/report-types.
func (h *ReportHandler) ReportTypes(c *gin.Context) {
	RespondOK(c, h.reportService.ReportTypes())
}
