package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"craftopia/internal/middleware"
	"craftopia/internal/service"
)

// CategoryHandler serves category endpoints.
type CategoryHandler struct {
	svc service.CategoryService
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CreateCategoryRequest is the body of a category creation.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateCategoryRequest carries optional category fields.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"isActive"`
}

// CategoryDecorsResponse is a category with one page of its decors.
type CategoryDecorsResponse struct {
	Category interface{} `json:"category"`
	Decors   interface{} `json:"decors"`
}

// ListActive godoc
// @Summary List active categories
// @Tags categories
// @Produce json
// @Success 200 {object} Envelope{data=[]model.Category}
// @Router /categories/active [get]
func (h *CategoryHandler) ListActive(c echo.Context) error {
	categories, err := h.svc.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Active categories retrieved successfully", emptyIfNil(categories))
}

// List godoc
// @Summary List categories
// @Description Visitors and non-admin users only see active categories.
// @Tags categories
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param search query string false "Matches name and description"
// @Param isActive query bool false "Active flag (admin only)"
// @Param sortBy query string false "Sort key" Enums(name, createdAt, decorCount)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} Envelope{data=[]model.Category}
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	isActive, err := optionalBool(c, "isActive")
	if err != nil {
		return err
	}

	result, err := h.svc.List(c.Request().Context(), middleware.IsAdmin(c), service.CategoryListParams{
		Search:      q.Search,
		IsActive:    isActive,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		PageRequest: q.page(),
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Categories retrieved successfully", emptyIfNil(result.Items), result.Pagination)
}

// Get godoc
// @Summary Get category by id
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	category, err := h.svc.Get(c.Request().Context(), id, middleware.IsAdmin(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category retrieved successfully", category)
}

// Decors godoc
// @Summary List the decors of a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param sortBy query string false "Sort key" Enums(createdAt, price, name, rating, popularity, sales, stock)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} Envelope{data=CategoryDecorsResponse}
// @Failure 404 {object} Envelope
// @Router /categories/{id}/decors [get]
func (h *CategoryHandler) Decors(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}

	category, result, err := h.svc.Decors(c.Request().Context(), id, middleware.IsAdmin(c), service.DecorListParams{
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		PageRequest: q.page(),
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Category decors retrieved successfully", CategoryDecorsResponse{
		Category: category,
		Decors:   emptyIfNil(result.Items),
	}, result.Pagination)
}

// Create godoc
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} Envelope{data=model.Category}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	category, err := h.svc.Create(c.Request().Context(), actor.ID, service.CategoryInput{
		Name:        &req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Category created successfully", category)
}

// Update godoc
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body UpdateCategoryRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Category}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.svc.Update(c.Request().Context(), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category updated successfully", category)
}

// Delete godoc
// @Summary Delete category
// @Description Fails while any decor still references the category.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category deleted successfully", nil)
}

// Stats godoc
// @Summary Category statistics
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=repository.CategoryStats}
// @Failure 403 {object} Envelope
// @Router /categories/admin/stats [get]
func (h *CategoryHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category statistics retrieved successfully", stats)
}
