package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/slug"
)

// Category groups decor items.
type Category struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string     `json:"name" gorm:"size:50;not null;index"`
	Slug        string     `json:"slug" gorm:"size:60;uniqueIndex;not null"`
	Description string     `json:"description,omitempty" gorm:"size:500"`
	Icon        string     `json:"icon,omitempty" gorm:"size:255"`
	IsActive    bool       `json:"isActive" gorm:"not null;index"`
	DecorCount  int        `json:"decorCount" gorm:"not null;default:0"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty" gorm:"type:char(36);index"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewCategory builds a validated category with its slug derived from name.
func NewCategory(name, description, icon string, isActive bool, createdBy uuid.UUID) (*Category, error) {
	c := &Category{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Icon:        strings.TrimSpace(icon),
		IsActive:    isActive,
	}
	if createdBy != uuid.Nil {
		c.CreatedBy = &createdBy
	}
	c.Rename(name)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename sets the name and re-derives the slug.
func (c *Category) Rename(name string) {
	c.Name = strings.TrimSpace(name)
	c.Slug = slug.Generate(c.Name)
}

// Validate checks field constraints.
func (c *Category) Validate() error {
	if n := utf8.RuneCountInString(c.Name); n < 2 || n > 50 {
		return apperrors.Invalid("category name must be between 2 and 50 characters")
	}
	if c.Slug == "" {
		return apperrors.Invalid("category name must contain letters or digits")
	}
	if utf8.RuneCountInString(c.Description) > 500 {
		return apperrors.Invalid("description cannot exceed 500 characters")
	}
	if c.DecorCount < 0 {
		return apperrors.Invalid("decor count cannot be negative")
	}
	return nil
}
