package authz

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
)

func identity(role model.Role) Identity {
	return Identity{ID: uuid.New(), Email: string(role) + "@example.com", Role: role}
}

func userWith(role model.Role) *model.User {
	return &model.User{ID: uuid.New(), Role: role}
}

func status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return apperrors.MapErrorToHTTP(err).StatusCode
}

func TestAuthorize_SuperAdminIsUntouchable(t *testing.T) {
	target := userWith(model.RoleSuperAdmin)
	actors := []Identity{
		identity(model.RoleAdmin),
		identity(model.RoleSuperAdmin),
		{ID: target.ID, Role: model.RoleSuperAdmin},
	}
	for _, actor := range actors {
		for _, action := range []Action{ActionDelete, ActionDeactivate, ActionDemote} {
			t.Run(string(actor.Role)+"/"+string(action), func(t *testing.T) {
				assert.Equal(t, http.StatusForbidden, status(Authorize(actor, action, target)))
			})
		}
	}
}

func TestAuthorize(t *testing.T) {
	self := identity(model.RoleAdmin)
	tests := []struct {
		name   string
		actor  Identity
		action Action
		target *model.User
		want   int
	}{
		{"user views self", Identity{ID: self.ID, Role: model.RoleUser}, ActionView, &model.User{ID: self.ID, Role: model.RoleUser}, http.StatusOK},
		{"user views other", identity(model.RoleUser), ActionView, userWith(model.RoleUser), http.StatusForbidden},
		{"admin deletes user", identity(model.RoleAdmin), ActionDelete, userWith(model.RoleUser), http.StatusOK},
		{"admin deletes admin", identity(model.RoleAdmin), ActionDelete, userWith(model.RoleAdmin), http.StatusForbidden},
		{"super admin deletes admin", identity(model.RoleSuperAdmin), ActionDelete, userWith(model.RoleAdmin), http.StatusOK},
		{"admin deletes self", self, ActionDelete, &model.User{ID: self.ID, Role: model.RoleAdmin}, http.StatusBadRequest},
		{"admin deactivates self", self, ActionDeactivate, &model.User{ID: self.ID, Role: model.RoleAdmin}, http.StatusBadRequest},
		{"admin promotes", identity(model.RoleAdmin), ActionPromote, userWith(model.RoleUser), http.StatusForbidden},
		{"super admin promotes", identity(model.RoleSuperAdmin), ActionPromote, userWith(model.RoleUser), http.StatusOK},
		{"admin demotes", identity(model.RoleAdmin), ActionDemote, userWith(model.RoleAdmin), http.StatusForbidden},
		{"super admin demotes admin", identity(model.RoleSuperAdmin), ActionDemote, userWith(model.RoleAdmin), http.StatusOK},
		{"admin activates user", identity(model.RoleAdmin), ActionActivate, userWith(model.RoleUser), http.StatusOK},
		{"admin updates super admin", identity(model.RoleAdmin), ActionUpdate, userWith(model.RoleSuperAdmin), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(Authorize(tt.actor, tt.action, tt.target)))
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, HasAnyRole(model.RoleAdmin, AdminOrAbove...))
	assert.True(t, HasAnyRole(model.RoleSuperAdmin, AdminOrAbove...))
	assert.False(t, HasAnyRole(model.RoleUser, AdminOrAbove...))
	assert.False(t, HasAnyRole(model.RoleAdmin, SuperAdminOnly...))
}
