package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"craftopia/internal/authz"
	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
	"craftopia/internal/repository"
)

func userWithRole(role model.Role) *model.User {
	return &model.User{
		ID:        uuid.New(),
		Email:     string(role) + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
}

func identityOf(u *model.User) authz.Identity {
	return authz.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

func TestUserService_List(t *testing.T) {
	mockRepo := new(MockUserRepository)
	users := []model.User{*userWithRole(model.RoleUser)}
	mockRepo.On("List", mock.Anything, repository.UserFilter{
		Role:   model.RoleUser,
		Search: "ada",
		Sort:   repository.Sort{Column: "email", Desc: false},
		Page:   repository.Page{Offset: 0, Limit: 100},
	}).Return(users, int64(1), nil)

	result, err := NewUserService(mockRepo).List(context.Background(), UserListParams{
		Role:        "user",
		Search:      "ada",
		SortBy:      "email",
		SortOrder:   "asc",
		PageRequest: PageRequest{Limit: 500},
	})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Pagination.Pages)
	mockRepo.AssertExpectations(t)

	_, err = NewUserService(mockRepo).List(context.Background(), UserListParams{Role: "root"})
	assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestUserService_Get(t *testing.T) {
	caller := userWithRole(model.RoleUser)
	other := userWithRole(model.RoleUser)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, caller.ID).Return(caller, nil)
	mockRepo.On("FindByID", mock.Anything, other.ID).Return(other, nil)
	missing := uuid.New()
	mockRepo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	service := NewUserService(mockRepo)

	got, err := service.Get(context.Background(), identityOf(caller), caller.ID)
	require.NoError(t, err)
	assert.Equal(t, caller.ID, got.ID)

	_, err = service.Get(context.Background(), identityOf(caller), other.ID)
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)

	_, err = service.Get(context.Background(), identityOf(userWithRole(model.RoleAdmin)), missing)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestUserService_SuperAdminProtection(t *testing.T) {
	super := userWithRole(model.RoleSuperAdmin)
	otherSuper := userWithRole(model.RoleSuperAdmin)
	actor := identityOf(super)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, otherSuper.ID).Return(otherSuper, nil)
	service := NewUserService(mockRepo)
	ctx := context.Background()

	err := service.Delete(ctx, actor, otherSuper.ID)
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)

	_, err = service.SetActive(ctx, actor, otherSuper.ID, false)
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)

	_, err = service.Demote(ctx, actor, otherSuper.ID)
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)

	name := "Changed"
	_, err = service.Update(ctx, actor, otherSuper.ID, UserUpdateInput{FirstName: &name})
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)

	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserService_SelfActions(t *testing.T) {
	admin := userWithRole(model.RoleAdmin)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
	service := NewUserService(mockRepo)

	err := service.Delete(context.Background(), identityOf(admin), admin.ID)
	assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)

	_, err = service.SetActive(context.Background(), identityOf(admin), admin.ID, false)
	assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestUserService_AdminCannotManageAdmins(t *testing.T) {
	actor := userWithRole(model.RoleAdmin)
	target := userWithRole(model.RoleAdmin)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

	err := NewUserService(mockRepo).Delete(context.Background(), identityOf(actor), target.ID)
	assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestUserService_PromoteDemote(t *testing.T) {
	super := identityOf(userWithRole(model.RoleSuperAdmin))
	ctx := context.Background()

	t.Run("promote user", func(t *testing.T) {
		target := userWithRole(model.RoleUser)
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		mockRepo.On("Update", mock.Anything, target).Return(nil)

		got, err := NewUserService(mockRepo).Promote(ctx, super, target.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, got.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("promote existing admin", func(t *testing.T) {
		target := userWithRole(model.RoleAdmin)
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

		_, err := NewUserService(mockRepo).Promote(ctx, super, target.ID)
		assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)
	})

	t.Run("demote plain user", func(t *testing.T) {
		target := userWithRole(model.RoleUser)
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

		_, err := NewUserService(mockRepo).Demote(ctx, super, target.ID)
		assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)
	})

	t.Run("admin cannot promote", func(t *testing.T) {
		target := userWithRole(model.RoleUser)
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

		_, err := NewUserService(mockRepo).Promote(ctx, identityOf(userWithRole(model.RoleAdmin)), target.ID)
		assert.Equal(t, 403, apperrors.MapErrorToHTTP(err).StatusCode)
	})
}

func TestUserService_UpdateDuplicateEmail(t *testing.T) {
	admin := identityOf(userWithRole(model.RoleAdmin))
	target := userWithRole(model.RoleUser)
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
	mockRepo.On("FindByEmail", mock.Anything, "taken@example.com").Return(userWithRole(model.RoleUser), nil)

	email := "Taken@Example.com"
	_, err := NewUserService(mockRepo).Update(context.Background(), admin, target.ID, UserUpdateInput{Email: &email})
	assert.Equal(t, ErrUserAlreadyExists, err)
	assert.Equal(t, 400, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestUserService_Activate(t *testing.T) {
	admin := identityOf(userWithRole(model.RoleAdmin))
	target := userWithRole(model.RoleUser)
	target.IsActive = false
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
	mockRepo.On("Update", mock.Anything, target).Return(nil)

	got, err := NewUserService(mockRepo).SetActive(context.Background(), admin, target.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}
