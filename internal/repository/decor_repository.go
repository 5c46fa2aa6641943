package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"craftopia/internal/model"
)

// DecorFilter narrows a decor listing or search.
type DecorFilter struct {
	Query      string
	CategoryID *uuid.UUID
	Statuses   []model.DecorStatus
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Materials  []string
	Tags       []string
	Featured   *bool
	InStock    bool
	Sort       Sort
	Page       Page
}

// DecorStats summarizes the decor table.
type DecorStats struct {
	Total          int64                       `json:"totalDecors"`
	ByStatus       map[model.DecorStatus]int64 `json:"byStatus"`
	Featured       int64                       `json:"featuredDecors"`
	LowStock       int64                       `json:"lowStockDecors"`
	InventoryValue decimal.Decimal             `json:"inventoryValue"`
	AveragePrice   decimal.Decimal             `json:"averagePrice"`
	TopViewed      []model.Decor               `json:"topViewed"`
}

// LowStockThreshold marks items that are about to sell out.
const LowStockThreshold = 5

// DecorRepository defines decor persistence operations. Writes that change
// which category owns a decor adjust categories.decor_count in the same
// transaction.
type DecorRepository interface {
	Create(ctx context.Context, decor *model.Decor) error
	Update(ctx context.Context, decor *model.Decor, previousCategoryID uuid.UUID) error
	Delete(ctx context.Context, decor *model.Decor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Decor, error)
	List(ctx context.Context, filter DecorFilter) ([]model.Decor, int64, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int, status model.DecorStatus) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*DecorStats, error)
}

type decorRepository struct {
	db *gorm.DB
}

// NewDecorRepository creates a new decor repository.
func NewDecorRepository(db *gorm.DB) DecorRepository {
	return &decorRepository{db: db}
}

func (r *decorRepository) Create(ctx context.Context, decor *model.Decor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(decor).Error; err != nil {
			return err
		}
		return adjustDecorCount(tx, decor.CategoryID, 1)
	})
}

func (r *decorRepository) Update(ctx context.Context, decor *model.Decor, previousCategoryID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations, "view_count", "sales_count", "created_by").Save(decor).Error; err != nil {
			return err
		}
		if previousCategoryID == decor.CategoryID {
			return nil
		}
		if err := adjustDecorCount(tx, previousCategoryID, -1); err != nil {
			return err
		}
		return adjustDecorCount(tx, decor.CategoryID, 1)
	})
}

func (r *decorRepository) Delete(ctx context.Context, decor *model.Decor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", decor.ID).Delete(&model.Decor{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return adjustDecorCount(tx, decor.CategoryID, -1)
	})
}

// FindByID loads a decor with its category.
func (r *decorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Decor, error) {
	var decor model.Decor
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&decor).Error; err != nil {
		return nil, err
	}
	return &decor, nil
}

func (r *decorRepository) List(ctx context.Context, filter DecorFilter) ([]model.Decor, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Decor{})

	if filter.Query != "" {
		pattern := containsPattern(filter.Query)
		q = q.Where("name LIKE ? OR description LIKE ? OR slug LIKE ?", pattern, pattern, pattern)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		q = q.Where("is_featured = ?", *filter.Featured)
	}
	if filter.InStock {
		q = q.Where("stock > 0")
	}
	if cond := r.anyContains("materials", filter.Materials); cond != nil {
		q = q.Where(cond)
	}
	if cond := r.anyContains("tags", filter.Tags); cond != nil {
		q = q.Where(cond)
	}

	var decors []model.Decor
	total, err := paginate(q.Preload("Category"), filter.Sort, filter.Page, &decors)
	if err != nil {
		return nil, 0, err
	}
	return decors, total, nil
}

// anyContains matches rows whose JSON array column holds at least one of values.
func (r *decorRepository) anyContains(column string, values []string) *gorm.DB {
	var cond *gorm.DB
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		expr := datatypes.JSONArrayQuery(column).Contains(v)
		if cond == nil {
			cond = r.db.Where(expr)
		} else {
			cond = cond.Or(expr)
		}
	}
	return cond
}

func (r *decorRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int, status model.DecorStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Decor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"stock": stock, "status": status})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *decorRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Decor{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *decorRepository) Stats(ctx context.Context) (*DecorStats, error) {
	db := r.db.WithContext(ctx)
	stats := &DecorStats{ByStatus: make(map[model.DecorStatus]int64)}

	var byStatus []struct {
		Status model.DecorStatus
		Count  int64
	}
	if err := db.Model(&model.Decor{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}

	if err := db.Model(&model.Decor{}).Where("is_featured = ?", true).Count(&stats.Featured).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Decor{}).Where("stock > 0 AND stock <= ?", LowStockThreshold).Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}

	var totals struct {
		InventoryValue decimal.NullDecimal
		AveragePrice   decimal.NullDecimal
	}
	if err := db.Model(&model.Decor{}).
		Select("SUM(price * stock) AS inventory_value, AVG(price) AS average_price").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	stats.InventoryValue = totals.InventoryValue.Decimal.Round(2)
	stats.AveragePrice = totals.AveragePrice.Decimal.Round(2)

	if err := db.Order("view_count DESC").Limit(5).Find(&stats.TopViewed).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// adjustDecorCount moves a category's cached count by delta without going below zero.
func adjustDecorCount(tx *gorm.DB, categoryID uuid.UUID, delta int) error {
	return tx.Model(&model.Category{}).
		Where("id = ?", categoryID).
		UpdateColumn("decor_count", gorm.Expr("GREATEST(decor_count + ?, 0)", delta)).Error
}
