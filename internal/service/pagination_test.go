package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"craftopia/internal/repository"
)

func TestPagination_SecondPageOfTwentyFive(t *testing.T) {
	req := PageRequest{Page: 2, Limit: 10}.Normalize(DecorLimits)

	assert.Equal(t, repository.Page{Offset: 10, Limit: 10}, req.Window())

	p := NewPagination(req, 25)
	assert.Equal(t, Pagination{
		Page:        2,
		Limit:       10,
		Total:       25,
		Pages:       3,
		HasNextPage: true,
		HasPrevPage: true,
	}, p)
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, Limit: 10}},
		{"negative page", PageRequest{Page: -3, Limit: 5}, PageRequest{Page: 1, Limit: 5}},
		{"clamped", PageRequest{Page: 4, Limit: 1000}, PageRequest{Page: 4, Limit: 100}},
		{"huge page", PageRequest{Page: math.MaxInt, Limit: 20}, PageRequest{Page: MaxPage, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(UserLimits))
		})
	}
}

func TestPageRequestWindow_HugePage(t *testing.T) {
	req := PageRequest{Page: math.MaxInt, Limit: math.MaxInt}.Normalize(UserLimits)

	w := req.Window()
	assert.Equal(t, (MaxPage-1)*UserLimits.Max, w.Offset)
	assert.Equal(t, UserLimits.Max, w.Limit)
	assert.GreaterOrEqual(t, w.Offset, 0)

	p := NewPagination(req, 3)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}

func TestNewPagination_Edges(t *testing.T) {
	empty := NewPagination(PageRequest{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, empty.Pages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)

	last := NewPagination(PageRequest{Page: 3, Limit: 10}, 25)
	assert.False(t, last.HasNextPage)
	assert.True(t, last.HasPrevPage)
}

func TestParseSort(t *testing.T) {
	allowed := map[string]string{"createdAt": "created_at", "price": "price"}

	assert.Equal(t, repository.Sort{Column: "price", Desc: false}, parseSort("price", "ASC", allowed, "createdAt"))
	assert.Equal(t, repository.Sort{Column: "created_at", Desc: true}, parseSort("password", "", allowed, "createdAt"))
}
