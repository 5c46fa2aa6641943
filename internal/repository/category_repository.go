package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"craftopia/internal/model"
)

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	IsActive *bool
	Search   string
	Sort     Sort
	Page     Page
}

// CategoryDecorCount compares the cached decor count with the real one.
type CategoryDecorCount struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	IsActive         bool      `json:"isActive"`
	DecorCount       int64     `json:"decorCount"`
	ActualDecorCount int64     `json:"actualDecorCount"`
}

// CategoryStats summarizes the category table.
type CategoryStats struct {
	Total      int64                `json:"totalCategories"`
	Active     int64                `json:"activeCategories"`
	Inactive   int64                `json:"inactiveCategories"`
	Categories []CategoryDecorCount `json:"categories"`
}

// CategoryRepository defines category persistence operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]model.Category, int64, error)
	ListActive(ctx context.Context) ([]model.Category, error)
	CountDecors(ctx context.Context, id uuid.UUID) (int64, error)
	Stats(ctx context.Context) (*CategoryStats, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update saves editable fields. decor_count is owned by the decor repository.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Omit("decor_count", "created_by").Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName matches names case-insensitively.
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]model.Category, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Category{})
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var categories []model.Category
	total, err := paginate(q, filter.Sort, filter.Page, &categories)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountDecors counts decor rows referencing the category, ignoring the cached count.
func (r *categoryRepository) CountDecors(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Decor{}).Where("category_id = ?", id).Count(&n).Error
	return n, err
}

func (r *categoryRepository) Stats(ctx context.Context) (*CategoryStats, error) {
	db := r.db.WithContext(ctx)
	stats := &CategoryStats{}

	if err := db.Model(&model.Category{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Category{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active

	err := db.Table("categories AS c").
		Select("c.id, c.name, c.slug, c.is_active, c.decor_count, COUNT(d.id) AS actual_decor_count").
		Joins("LEFT JOIN decors AS d ON d.category_id = c.id").
		Group("c.id, c.name, c.slug, c.is_active, c.decor_count").
		Order("actual_decor_count DESC, c.name ASC").
		Scan(&stats.Categories).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
