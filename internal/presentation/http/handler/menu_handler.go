package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/application/service"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/internal/presentation/http/dto/response"
)

// MenuHandler handles menu catalog HTTP requests
type MenuHandler struct {
	menuService *service.MenuService
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// menuFilters reads category_id/subcategory_id query filters. Empty and "0"
// both mean unfiltered, so POS clients can send their unset sentinel.
func menuFilters(c *gin.Context) (*repository.MenuFilterParams, bool) {
	params := &repository.MenuFilterParams{}

	if raw := c.Query("category_id"); raw != "" && raw != "0" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false
		}
		params.CategoryID = &id
	}
	if raw := c.Query("subcategory_id"); raw != "" && raw != "0" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false
		}
		params.SubcategoryID = &id
	}
	return params, true
}

// ListCategories handles listing menu categories
func (h *MenuHandler) ListCategories(c *gin.Context) {
	categories, err := h.menuService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", categories)
}

// ListItems handles listing menu items with optional filters
func (h *MenuHandler) ListItems(c *gin.Context) {
	params, ok := menuFilters(c)
	if !ok {
		response.BadRequest(c, "Invalid filter ID")
		return
	}

	items, err := h.menuService.ListItems(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Items retrieved successfully", items)
}

// ListSizes handles listing menu item sizes with optional filters
func (h *MenuHandler) ListSizes(c *gin.Context) {
	params, ok := menuFilters(c)
	if !ok {
		response.BadRequest(c, "Invalid filter ID")
		return
	}

	sizes, err := h.menuService.ListSizes(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sizes retrieved successfully", sizes)
}

// FullMenu handles retrieving the whole catalog tree
func (h *MenuHandler) FullMenu(c *gin.Context) {
	menu, err := h.menuService.FullMenu(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Menu retrieved successfully", menu)
}
