package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
	"craftopia/internal/repository"
)

const (
	activeCategoriesKey = "categories:active"
	activeCategoriesTTL = 5 * time.Minute
)

var (
	// ErrCategoryNotFound is returned when a category id does not resolve.
	ErrCategoryNotFound = apperrors.Wrap(apperrors.ErrNotFound, "Category not found")
	// ErrCategoryExists is returned when a name is already taken, ignoring case.
	ErrCategoryExists = apperrors.Wrap(apperrors.ErrDuplicate, "Category with this name already exists")
)

var categorySortColumns = map[string]string{
	"name":       "name",
	"createdAt":  "created_at",
	"decorCount": "decor_count",
}

// Cache is the subset of the cache client the services rely on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CategoryListParams are the query options of the category listing.
type CategoryListParams struct {
	Search    string
	IsActive  *bool
	SortBy    string
	SortOrder string
	PageRequest
}

// CategoryInput carries category fields. Nil pointers are left unchanged on update.
type CategoryInput struct {
	Name        *string
	Description *string
	Icon        *string
	IsActive    *bool
}

// CategoryService manages categories.
type CategoryService interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	List(ctx context.Context, isAdmin bool, params CategoryListParams) (*PageResult[model.Category], error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*model.Category, error)
	Decors(ctx context.Context, id uuid.UUID, isAdmin bool, params DecorListParams) (*model.Category, *PageResult[model.Decor], error)
	Create(ctx context.Context, createdBy uuid.UUID, in CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*repository.CategoryStats, error)
}

type categoryService struct {
	repo      repository.CategoryRepository
	decorRepo repository.DecorRepository
	cache     Cache
	logger    *zap.Logger
}

// NewCategoryService builds a CategoryService.
func NewCategoryService(repo repository.CategoryRepository, decorRepo repository.DecorRepository, cache Cache, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, decorRepo: decorRepo, cache: cache, logger: logger}
}

// ListActive returns active categories ordered by name, served from cache when possible.
func (s *categoryService) ListActive(ctx context.Context) ([]model.Category, error) {
	if raw, _ := s.cache.Get(ctx, activeCategoriesKey); raw != nil {
		var cached []model.Category
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("discarding unreadable category cache entry")
	}

	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	if raw, err := json.Marshal(categories); err == nil {
		_ = s.cache.Set(ctx, activeCategoriesKey, raw, activeCategoriesTTL)
	}
	return categories, nil
}

// List pages through categories. Non-admin callers only see active ones.
func (s *categoryService) List(ctx context.Context, isAdmin bool, params CategoryListParams) (*PageResult[model.Category], error) {
	page := params.PageRequest.Normalize(CategoryLimits)
	filter := repository.CategoryFilter{
		IsActive: params.IsActive,
		Search:   strings.TrimSpace(params.Search),
		Sort:     parseSort(params.SortBy, params.SortOrder, categorySortColumns, "name"),
		Page:     page.Window(),
	}
	if params.SortBy == "" {
		filter.Sort.Desc = strings.EqualFold(params.SortOrder, "desc")
	}
	if !isAdmin {
		active := true
		filter.IsActive = &active
	}

	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return &PageResult[model.Category]{Items: categories, Pagination: NewPagination(page, total)}, nil
}

// Get returns a category. Inactive ones are reported as missing unless
// includeInactive is set.
func (s *categoryService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*model.Category, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive && !includeInactive {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Decors lists the decors of a category. Non-admins only see active
// decors of active categories.
func (s *categoryService) Decors(ctx context.Context, id uuid.UUID, isAdmin bool, params DecorListParams) (*model.Category, *PageResult[model.Decor], error) {
	category, err := s.Get(ctx, id, isAdmin)
	if err != nil {
		return nil, nil, err
	}

	page := params.PageRequest.Normalize(DecorLimits)
	filter := repository.DecorFilter{
		CategoryID: &category.ID,
		Sort:       parseSort(params.SortBy, params.SortOrder, decorSortColumns, "createdAt"),
		Page:       page.Window(),
	}
	if !isAdmin {
		filter.Statuses = []model.DecorStatus{model.DecorStatusActive}
	}
	decors, total, err := s.decorRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list category decors: %w", err)
	}
	return category, &PageResult[model.Decor]{Items: decors, Pagination: NewPagination(page, total)}, nil
}

func (s *categoryService) Create(ctx context.Context, createdBy uuid.UUID, in CategoryInput) (*model.Category, error) {
	if in.Name == nil {
		return nil, apperrors.Invalid("category name is required")
	}
	if err := s.ensureNameFree(ctx, *in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	category, err := model.NewCategory(*in.Name, deref(in.Description), deref(in.Icon), active, createdBy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*model.Category, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && !strings.EqualFold(strings.TrimSpace(*in.Name), category.Name) {
		if err := s.ensureNameFree(ctx, *in.Name, category.ID); err != nil {
			return nil, err
		}
	}
	if in.Name != nil {
		category.Rename(*in.Name)
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}
	if in.Icon != nil {
		category.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

// Delete removes a category that no decor references.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountDecors(ctx, id)
	if err != nil {
		return fmt.Errorf("count category decors: %w", err)
	}
	if n > 0 {
		return apperrors.Invalid("Cannot delete category with %d decor items. Move or delete them first.", n)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *categoryService) Stats(ctx context.Context) (*repository.CategoryStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return stats, nil
}

func (s *categoryService) find(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

// ensureNameFree fails when another category already uses name, ignoring case.
func (s *categoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("check category name: %w", err)
	}
	if existing.ID != self {
		return ErrCategoryExists
	}
	return nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeCategoriesKey); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
