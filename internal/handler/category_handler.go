package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/service"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/response"
)

// CategoryHandler serves the public category registry.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler creates a new handler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List complaint categories
// @Description Return all categories with display names
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /complaints/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Create godoc
// @Summary Create category
// @Description Register a new complaint category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body object true "Category payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /complaints/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var payload struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "category name required"))
		return
	}

	category, err := h.service.Create(c.Request.Context(), payload.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}
