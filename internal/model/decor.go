package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/slug"
)

// DecorStatus represents the sales state of a decor item.
type DecorStatus string

const (
	DecorStatusActive       DecorStatus = "active"
	DecorStatusInactive     DecorStatus = "inactive"
	DecorStatusOutOfStock   DecorStatus = "out_of_stock"
	DecorStatusDiscontinued DecorStatus = "discontinued"
)

// Decor limits.
const (
	MaxDecorImages    = 10
	MaxDecorTags      = 20
	MaxDecorMaterials = 15
)

// Valid reports whether s is a known status.
func (s DecorStatus) Valid() bool {
	switch s {
	case DecorStatusActive, DecorStatusInactive, DecorStatusOutOfStock, DecorStatusDiscontinued:
		return true
	}
	return false
}

// Dimensions are the optional physical measurements of an item.
type Dimensions struct {
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Unit   string   `json:"unit,omitempty" gorm:"size:10"`
}

// Rating aggregates customer ratings.
type Rating struct {
	Average float64 `json:"average" gorm:"type:decimal(2,1);not null;default:0"`
	Count   int     `json:"count" gorm:"not null;default:0"`
}

// Decor is a sellable catalog listing.
type Decor struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string                      `json:"name" gorm:"size:100;not null;index"`
	Slug          string                      `json:"slug" gorm:"size:120;not null;index"`
	Description   string                      `json:"description" gorm:"type:text;not null"`
	CategoryID    uuid.UUID                   `json:"categoryId" gorm:"type:char(36);not null;index"`
	Category      *Category                   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Price         decimal.Decimal             `json:"price" gorm:"type:decimal(12,2);not null;index"`
	OriginalPrice decimal.NullDecimal         `json:"originalPrice" gorm:"type:decimal(12,2)"`
	Stock         int                         `json:"stock" gorm:"not null"`
	Status        DecorStatus                 `json:"status" gorm:"type:varchar(20);not null;index"`
	IsFeatured    bool                        `json:"isFeatured" gorm:"not null;index"`
	Images        datatypes.JSONSlice[string] `json:"images" gorm:"type:json"`
	Tags          datatypes.JSONSlice[string] `json:"tags" gorm:"type:json"`
	Materials     datatypes.JSONSlice[string] `json:"materials" gorm:"type:json"`
	Dimensions    Dimensions                  `json:"dimensions" gorm:"embedded;embeddedPrefix:dim_"`
	Rating        Rating                      `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	ViewCount     int                         `json:"viewCount" gorm:"not null;default:0"`
	SalesCount    int                         `json:"salesCount" gorm:"not null;default:0"`
	CreatedBy     *uuid.UUID                  `json:"createdBy,omitempty" gorm:"type:char(36);index"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Decor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Normalize derives the slug and brings prices and lists into canonical
// form. It must run before every write.
func (d *Decor) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Slug = slug.Generate(d.Name)

	d.Price = d.Price.Round(2)
	if d.OriginalPrice.Valid {
		d.OriginalPrice.Decimal = d.OriginalPrice.Decimal.Round(2)
		if d.OriginalPrice.Decimal.LessThanOrEqual(d.Price) {
			d.OriginalPrice = decimal.NullDecimal{}
		}
	}

	d.Tags = normalizeList(d.Tags, true)
	d.Materials = normalizeList(d.Materials, false)
	d.Images = normalizeList(d.Images, false)
	if d.Dimensions.Unit == "" && d.Dimensions.hasAny() {
		d.Dimensions.Unit = "cm"
	}
	if d.Status == "" {
		d.Status = DecorStatusActive
	}
}

// Validate checks field constraints. Call after Normalize.
func (d *Decor) Validate() error {
	nameLen := utf8.RuneCountInString(d.Name)
	descLen := utf8.RuneCountInString(d.Description)
	switch {
	case nameLen < 2 || nameLen > 100:
		return apperrors.Invalid("decor name must be between 2 and 100 characters")
	case d.Slug == "":
		return apperrors.Invalid("decor name must contain letters or digits")
	case descLen < 10 || descLen > 2000:
		return apperrors.Invalid("description must be between 10 and 2000 characters")
	case d.CategoryID == uuid.Nil:
		return apperrors.Invalid("category is required")
	case d.Price.IsNegative():
		return apperrors.Invalid("price cannot be negative")
	case d.Stock < 0:
		return apperrors.Invalid("stock cannot be negative")
	case !d.Status.Valid():
		return apperrors.Invalid("invalid status %q", d.Status)
	case len(d.Images) > MaxDecorImages:
		return apperrors.Invalid("cannot have more than %d images", MaxDecorImages)
	case len(d.Tags) > MaxDecorTags:
		return apperrors.Invalid("cannot have more than %d tags", MaxDecorTags)
	case len(d.Materials) == 0:
		return apperrors.Invalid("at least one material is required")
	case len(d.Materials) > MaxDecorMaterials:
		return apperrors.Invalid("cannot have more than %d materials", MaxDecorMaterials)
	case d.Rating.Average < 0 || d.Rating.Average > 5:
		return apperrors.Invalid("rating must be between 0 and 5")
	case d.Rating.Count < 0:
		return apperrors.Invalid("rating count cannot be negative")
	}
	return d.Dimensions.validate()
}

// SetStock updates stock and moves the status between active and
// out_of_stock. Inactive and discontinued items keep their status.
func (d *Decor) SetStock(stock int) {
	d.Stock = stock
	switch {
	case stock == 0 && d.Status == DecorStatusActive:
		d.Status = DecorStatusOutOfStock
	case stock > 0 && d.Status == DecorStatusOutOfStock:
		d.Status = DecorStatusActive
	}
}

// DiscountPercentage is the whole-percent reduction from originalPrice.
func (d *Decor) DiscountPercentage() int {
	if !d.OriginalPrice.Valid || !d.OriginalPrice.Decimal.IsPositive() {
		return 0
	}
	off := d.OriginalPrice.Decimal.Sub(d.Price).Div(d.OriginalPrice.Decimal).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// InStock reports whether the item can be purchased.
func (d *Decor) InStock() bool {
	return d.Stock > 0 && d.Status == DecorStatusActive
}

// MarshalJSON adds the derived fields to the stored ones.
func (d Decor) MarshalJSON() ([]byte, error) {
	type stored Decor
	return json.Marshal(struct {
		stored
		DiscountPercentage int  `json:"discountPercentage,omitempty"`
		InStock            bool `json:"inStock"`
	}{
		stored:             stored(d),
		DiscountPercentage: d.DiscountPercentage(),
		InStock:            d.InStock(),
	})
}

func (dim Dimensions) hasAny() bool {
	return dim.Length != nil || dim.Width != nil || dim.Height != nil || dim.Weight != nil
}

func (dim Dimensions) validate() error {
	for name, v := range map[string]*float64{
		"length": dim.Length,
		"width":  dim.Width,
		"height": dim.Height,
		"weight": dim.Weight,
	} {
		if v != nil && *v < 0 {
			return apperrors.Invalid("%s cannot be negative", name)
		}
	}
	if dim.Unit != "" && dim.Unit != "cm" && dim.Unit != "inch" {
		return apperrors.Invalid("dimension unit must be cm or inch")
	}
	return nil
}

// normalizeList trims entries and drops blanks and duplicates, keeping order.
func normalizeList(in []string, lower bool) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
