package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"craftopia/internal/authz"
	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
	"craftopia/internal/repository"
)

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"lastLogin": "last_login",
	"role":      "role",
}

// UserListParams are the query options of the user listing.
type UserListParams struct {
	Role      string
	IsActive  *bool
	Search    string
	SortBy    string
	SortOrder string
	PageRequest
}

// UserUpdateInput carries optional admin edits to an account.
type UserUpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	IsActive  *bool
}

// UserService exposes account management. Every operation on a specific
// account goes through authz.Authorize.
type UserService interface {
	List(ctx context.Context, params UserListParams) (*PageResult[model.User], error)
	Get(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, actor authz.Identity, id uuid.UUID, in UserUpdateInput) (*model.User, error)
	Delete(ctx context.Context, actor authz.Identity, id uuid.UUID) error
	SetActive(ctx context.Context, actor authz.Identity, id uuid.UUID, active bool) (*model.User, error)
	Promote(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error)
	Demote(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context, params UserListParams) (*PageResult[model.User], error) {
	page := params.PageRequest.Normalize(UserLimits)
	filter := repository.UserFilter{
		IsActive: params.IsActive,
		Search:   params.Search,
		Sort:     parseSort(params.SortBy, params.SortOrder, userSortColumns, "createdAt"),
		Page:     page.Window(),
	}
	if params.Role != "" {
		role := model.Role(params.Role)
		if !role.Valid() {
			return nil, apperrors.Invalid("invalid role filter %q", params.Role)
		}
		filter.Role = role
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &PageResult[model.User]{Items: users, Pagination: NewPagination(page, total)}, nil
}

func (s *userService) Get(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error) {
	return s.authorized(ctx, actor, authz.ActionView, id)
}

func (s *userService) Update(ctx context.Context, actor authz.Identity, id uuid.UUID, in UserUpdateInput) (*model.User, error) {
	user, err := s.authorized(ctx, actor, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if in.IsActive != nil && !*in.IsActive && user.IsActive {
		if err := authz.Authorize(actor, authz.ActionDeactivate, user); err != nil {
			return nil, err
		}
	}

	if in.Email != nil {
		email := model.NormalizeEmail(*in.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Phone != nil {
		if err := user.SetPhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, s.save(ctx, user)
}

func (s *userService) Delete(ctx context.Context, actor authz.Identity, id uuid.UUID) error {
	if _, err := s.authorized(ctx, actor, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userService) SetActive(ctx context.Context, actor authz.Identity, id uuid.UUID, active bool) (*model.User, error) {
	action := authz.ActionDeactivate
	if active {
		action = authz.ActionActivate
	}
	user, err := s.authorized(ctx, actor, action, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return nil, apperrors.Invalid("User is already %s", map[bool]string{true: "active", false: "deactivated"}[active])
	}
	user.IsActive = active
	return user, s.save(ctx, user)
}

func (s *userService) Promote(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error) {
	user, err := s.authorized(ctx, actor, authz.ActionPromote, id)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleUser {
		return nil, apperrors.Invalid("User is already an admin")
	}
	user.Role = model.RoleAdmin
	return user, s.save(ctx, user)
}

func (s *userService) Demote(ctx context.Context, actor authz.Identity, id uuid.UUID) (*model.User, error) {
	user, err := s.authorized(ctx, actor, authz.ActionDemote, id)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleAdmin {
		return nil, apperrors.Invalid("User is not an admin")
	}
	user.Role = model.RoleUser
	return user, s.save(ctx, user)
}

// authorized loads the target and runs it through the policy.
func (s *userService) authorized(ctx context.Context, actor authz.Identity, action authz.Action, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := authz.Authorize(actor, action, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *userService) save(ctx context.Context, user *model.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
