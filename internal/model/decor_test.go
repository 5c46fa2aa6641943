package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func validDecor() *Decor {
	return &Decor{
		Name:        "Rattan Wall Mirror",
		Description: "Round mirror framed in hand-woven rattan.",
		CategoryID:  uuid.New(),
		Price:       decimal.RequireFromString("49.999"),
		Stock:       5,
		Materials:   datatypes.JSONSlice[string]{"rattan", "glass"},
	}
}

func TestDecorNormalize(t *testing.T) {
	d := validDecor()
	d.Tags = datatypes.JSONSlice[string]{" Boho ", "boho", "", "Wall"}

	d.Normalize()

	assert.Equal(t, "rattan-wall-mirror", d.Slug)
	assert.True(t, d.Price.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, datatypes.JSONSlice[string]{"boho", "wall"}, d.Tags)
	assert.Equal(t, DecorStatusActive, d.Status)
	require.NoError(t, d.Validate())
}

func TestDecorNormalize_OriginalPrice(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		wantValid bool
	}{
		{"greater is kept", "80.00", true},
		{"equal is cleared", "50.00", false},
		{"lower is cleared", "20.00", false},
		{"rounds to equal and is cleared", "49.999", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDecor()
			d.OriginalPrice = decimal.NewNullDecimal(decimal.RequireFromString(tt.original))

			d.Normalize()

			assert.Equal(t, tt.wantValid, d.OriginalPrice.Valid)
		})
	}
}

func TestDecorSetStock(t *testing.T) {
	tests := []struct {
		name   string
		status DecorStatus
		stock  int
		want   DecorStatus
	}{
		{"active to out of stock", DecorStatusActive, 0, DecorStatusOutOfStock},
		{"out of stock back to active", DecorStatusOutOfStock, 3, DecorStatusActive},
		{"discontinued stays at zero", DecorStatusDiscontinued, 0, DecorStatusDiscontinued},
		{"discontinued stays when restocked", DecorStatusDiscontinued, 5, DecorStatusDiscontinued},
		{"inactive stays", DecorStatusInactive, 0, DecorStatusInactive},
		{"active stays active", DecorStatusActive, 7, DecorStatusActive},
		{"out of stock stays at zero", DecorStatusOutOfStock, 0, DecorStatusOutOfStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDecor()
			d.Status = tt.status

			d.SetStock(tt.stock)

			assert.Equal(t, tt.stock, d.Stock)
			assert.Equal(t, tt.want, d.Status)
		})
	}
}

func TestDecorValidate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name   string
		mutate func(d *Decor)
	}{
		{"short name", func(d *Decor) { d.Name = "A" }},
		{"short description", func(d *Decor) { d.Description = "tiny" }},
		{"missing category", func(d *Decor) { d.CategoryID = uuid.Nil }},
		{"negative price", func(d *Decor) { d.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(d *Decor) { d.Stock = -2 }},
		{"no materials", func(d *Decor) { d.Materials = nil }},
		{"too many images", func(d *Decor) {
			for i := 0; i <= MaxDecorImages; i++ {
				d.Images = append(d.Images, "https://cdn.example/img"+string(rune('a'+i)))
			}
		}},
		{"negative dimension", func(d *Decor) { d.Dimensions.Width = &negative }},
		{"bad status", func(d *Decor) { d.Status = "sold" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDecor()
			tt.mutate(d)
			d.Normalize()
			assert.Error(t, d.Validate())
		})
	}
}

func TestDecorValidate_CountsCharacters(t *testing.T) {
	d := validDecor()
	d.Name = "Crème Brûlée Ramekin"
	d.Description = strings.Repeat("é", 1500)
	d.Normalize()
	require.NoError(t, d.Validate())
	assert.Equal(t, "creme-brulee-ramekin", d.Slug)

	d = validDecor()
	d.Name = strings.Repeat("Ж", 100)
	d.Normalize()
	require.NoError(t, d.Validate())

	d.Name = strings.Repeat("Ж", 101)
	d.Normalize()
	assert.Error(t, d.Validate())

	d = validDecor()
	d.Description = strings.Repeat("é", 2001)
	d.Normalize()
	assert.Error(t, d.Validate())
}

func TestDecorMarshalJSON(t *testing.T) {
	d := validDecor()
	d.Price = decimal.RequireFromString("75")
	d.OriginalPrice = decimal.NewNullDecimal(decimal.RequireFromString("100"))
	d.Normalize()

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(25), out["discountPercentage"])
	assert.Equal(t, true, out["inStock"])
	assert.Equal(t, "rattan-wall-mirror", out["slug"])
}
