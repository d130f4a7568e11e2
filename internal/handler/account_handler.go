package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/service"
	"github.com/uniconnect/uniconnect-api/pkg/response"
)

// AccountHandler exposes administrative account listings.
type AccountHandler struct {
	service *service.AccountService
}

// NewAccountHandler creates a new handler.
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{service: svc}
}

// List godoc
// @Summary List accounts
// @Description Return accounts filtered by role or search text
// @Tags Accounts
// @Produce json
// @Param role query string false "Role filter"
// @Param search query string false "Search by email or name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	filter := models.AccountFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.AccountRole(raw)
		filter.Role = &role
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filter.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			filter.PageSize = size
		}
	}

	accounts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, accounts, pagination)
}
