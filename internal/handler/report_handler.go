package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/service"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, req models.ReportRequest, actorID string) (*models.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*models.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes asynchronous export endpoints.
type ReportHandler struct {
	service reportService
	logger  *zap.Logger
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{service: svc, logger: logger}
}

// GenerateReport godoc
// @Summary Queue complaint export
// @Description Enqueue an asynchronous complaint report job
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.ReportRequest true "Report payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), req, claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, job, nil)
}

// ReportStatus godoc
// @Summary Report job status
// @Description Return progress and result URL for a report job
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadReport godoc
// @Summary Download exported report
// @Description Stream a finished export referenced by a signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if download.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		h.logger.Warn("failed to stream report download", zap.Error(err))
	}
}
