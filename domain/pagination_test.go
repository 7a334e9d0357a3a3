//go:build !integration

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductQuery(t *testing.T) {
	q := NormalizeProductQuery(PageQuery{Page: 0, Limit: 500, Search: "  tomate ", Sort: "password", Order: "sideways"})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, "tomate", q.Search)
	assert.Equal(t, "created_at", q.Sort)
	assert.Equal(t, "DESC", q.Order)

	q = NormalizeProductQuery(PageQuery{Page: 3, Limit: -2, Sort: "price", Order: "asc"})
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, "price", q.Sort)
	assert.Equal(t, "ASC", q.Order)
	assert.Equal(t, 20, q.Offset())
}

func TestNormalizeHortifruitQuery(t *testing.T) {
	q := NormalizeHortifruitQuery(PageQuery{})

	assert.Equal(t, "name", q.Sort)
	assert.Equal(t, "ASC", q.Order)
	assert.Equal(t, 0, q.Offset())

	q = NormalizeHortifruitQuery(PageQuery{Sort: "rating", Order: "DESC"})
	assert.Equal(t, "rating", q.Sort)
	assert.Equal(t, "DESC", q.Order)
}

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		page       int
		limit      int
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"empty", 0, 1, 10, 0, false, false},
		{"exact fit", 20, 1, 10, 2, true, false},
		{"partial last page", 21, 3, 10, 3, false, true},
		{"middle", 50, 2, 10, 5, true, true},
		{"past the end", 5, 4, 10, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPageMeta(tt.total, tt.page, tt.limit)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
			assert.Equal(t, tt.hasNext, meta.HasNextPage)
			assert.Equal(t, tt.hasPrev, meta.HasPreviousPage)
		})
	}
}

func TestNewPageNeverReturnsNilData(t *testing.T) {
	page := NewPage[Product](nil, 0, PageQuery{Page: 1, Limit: 10})

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}
