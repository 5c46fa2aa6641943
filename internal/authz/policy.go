// Package authz holds the single authorization policy consulted by the
// role middleware and by every user-management operation.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    uuid.UUID  `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// IsAdmin reports admin or super_admin.
func (i Identity) IsAdmin() bool {
	return i.Role.Rank() >= model.RoleAdmin.Rank()
}

// Action is an operation on a user account.
type Action string

const (
	ActionView       Action = "view"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionDeactivate Action = "deactivate"
	ActionActivate   Action = "activate"
	ActionPromote    Action = "promote"
	ActionDemote     Action = "demote"
)

// AdminOrAbove and SuperAdminOnly are the role sets used on routes.
var (
	AdminOrAbove   = []model.Role{model.RoleAdmin, model.RoleSuperAdmin}
	SuperAdminOnly = []model.Role{model.RoleSuperAdmin}
)

// HasAnyRole reports whether role is in allowed.
func HasAnyRole(role model.Role, allowed ...model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize decides whether actor may perform action on target.
// Failures wrap ErrForbidden (403) or are validation errors (400).
func Authorize(actor Identity, action Action, target *model.User) error {
	self := actor.ID == target.ID

	if action == ActionView && self {
		return nil
	}
	if !actor.IsAdmin() {
		return apperrors.Wrap(apperrors.ErrForbidden, "Insufficient permissions")
	}

	if (action == ActionPromote || action == ActionDemote) && actor.Role != model.RoleSuperAdmin {
		return apperrors.Wrap(apperrors.ErrForbidden, fmt.Sprintf("Only super admin can %s users", action))
	}

	if target.IsSuperAdmin() {
		switch action {
		case ActionUpdate, ActionDelete, ActionDeactivate, ActionPromote, ActionDemote:
			return apperrors.Wrap(apperrors.ErrForbidden, fmt.Sprintf("Cannot %s super admin", action))
		}
	}

	if self {
		switch action {
		case ActionDelete, ActionDeactivate, ActionDemote:
			return apperrors.Invalid("You cannot %s your own account", action)
		}
	}

	if target.Role == model.RoleAdmin && actor.Role != model.RoleSuperAdmin && !self {
		switch action {
		case ActionUpdate, ActionDelete, ActionDeactivate, ActionActivate:
			return apperrors.Wrap(apperrors.ErrForbidden, "Only super admin can manage admin accounts")
		}
	}

	return nil
}
