package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/service"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/response"
)

// ComplaintHandler wires HTTP endpoints to the complaint service.
type ComplaintHandler struct {
	service *service.ComplaintService
}

// NewComplaintHandler creates a new handler.
func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// Create godoc
// @Summary Lodge complaint
// @Description Create a new complaint; status always starts Pending
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body models.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, view)
}

// ListMine godoc
// @Summary List own complaints
// @Description Return the authenticated student's complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/my [get]
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.service.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}

// ListAssigned godoc
// @Summary List department complaints
// @Description Return complaints routed to the staff member's department
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/assigned [get]
func (h *ComplaintHandler) ListAssigned(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.service.ListAssigned(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}

// ListAll godoc
// @Summary List all complaints
// @Description Return every complaint, optionally filtered by status and category
// @Tags Complaints
// @Produce json
// @Param status query string false "Status filter"
// @Param category_id query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) ListAll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var status *models.ComplaintStatus
	if raw := c.Query("status"); raw != "" {
		value := models.ComplaintStatus(raw)
		status = &value
	}
	var categoryID *string
	if raw := c.Query("category_id"); raw != "" {
		categoryID = &raw
	}

	views, err := h.service.ListAll(c.Request.Context(), claims, status, categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}

// UpdateStatus godoc
// @Summary Update complaint status
// @Description Transition a complaint between Pending, In Progress, and Resolved
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body models.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaints/{id}/status [patch]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	view, err := h.service.UpdateStatus(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Assign godoc
// @Summary Reassign complaint category
// @Description Move a complaint to a different category
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body models.AssignCategoryRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaints/assign/{id} [post]
func (h *ComplaintHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	view, err := h.service.ReassignCategory(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}
