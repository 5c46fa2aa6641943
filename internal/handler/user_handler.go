package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"craftopia/internal/middleware"
	"craftopia/internal/service"
)

// UserHandler serves account management.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest carries optional admin edits.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=2,max=50"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	IsActive  *bool   `json:"isActive"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param role query string false "Role" Enums(user, admin, super_admin)
// @Param isActive query bool false "Active flag"
// @Param search query string false "Matches names and email"
// @Param sortBy query string false "Sort key" Enums(createdAt, email, firstName, lastName, lastLogin, role)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} Envelope{data=[]model.User}
// @Failure 401 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	isActive, err := optionalBool(c, "isActive")
	if err != nil {
		return err
	}

	result, err := h.svc.List(c.Request().Context(), service.UserListParams{
		Role:        c.QueryParam("role"),
		IsActive:    isActive,
		Search:      q.Search,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		PageRequest: q.page(),
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Users retrieved successfully", emptyIfNil(result.Items), result.Pagination)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	user, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	user, err := h.svc.Update(c.Request().Context(), actor, id, service.UserUpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

// DeactivateUser godoc
// @Summary Deactivate user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users/{id}/deactivate [patch]
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	return h.setActive(c, false, "User deactivated successfully")
}

// ActivateUser godoc
// @Summary Activate user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users/{id}/activate [patch]
func (h *UserHandler) ActivateUser(c echo.Context) error {
	return h.setActive(c, true, "User activated successfully")
}

func (h *UserHandler) setActive(c echo.Context, active bool, message string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	user, err := h.svc.SetActive(c.Request().Context(), actor, id, active)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, message, user)
}

// PromoteUser godoc
// @Summary Promote user to admin
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users/{id}/promote [patch]
func (h *UserHandler) PromoteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	user, err := h.svc.Promote(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User promoted to admin successfully", user)
}

// DemoteUser godoc
// @Summary Demote admin to user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users/{id}/demote [patch]
func (h *UserHandler) DemoteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)
	user, err := h.svc.Demote(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Admin demoted to user successfully", user)
}
