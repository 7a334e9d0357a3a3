package domain

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery is the common listing input for catalog endpoints.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// Normalize clamps page and limit and resolves sort against the allowed
// columns, falling back to defaultSort.
func (q PageQuery) Normalize(allowedSort map[string]bool, defaultSort, defaultOrder string) PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}

	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	q.Search = strings.TrimSpace(q.Search)

	if !allowedSort[q.Sort] {
		q.Sort = defaultSort
	}

	q.Order = strings.ToUpper(q.Order)
	if q.Order != "ASC" && q.Order != "DESC" {
		q.Order = defaultOrder
	}

	return q
}

var productSortColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"updated_at": true,
}

var hortifruitSortColumns = map[string]bool{
	"name":       true,
	"rating":     true,
	"created_at": true,
}

// NormalizeProductQuery defaults product listings to newest first.
func NormalizeProductQuery(q PageQuery) PageQuery {
	return q.Normalize(productSortColumns, "created_at", "DESC")
}

// NormalizeHortifruitQuery defaults vendor listings to name order.
func NormalizeHortifruitQuery(q PageQuery) PageQuery {
	return q.Normalize(hortifruitSortColumns, "name", "ASC")
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type PageMeta struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PageMeta{
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func NewPage[T any](data []T, total int64, q PageQuery) Page[T] {
	if data == nil {
		data = []T{}
	}

	return Page[T]{
		Data: data,
		Meta: NewPageMeta(total, q.Page, q.Limit),
	}
}
