package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/service"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PATCH /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err, "update category")
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id. Tasks keep their
// dangling category reference and fall into the uncategorized bucket.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeServiceError(c, err, "delete category")
		return
	}

	c.Status(http.StatusNoContent)
}
