package query

import (
	"gorm.io/gorm"
)

// Pagination is the metadata returned next to every page of results.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination computes metadata from a total row count.
func NewPagination(p PageParams, totalCount int64) Pagination {
	totalPages := int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// Paginate runs the count query and the page query off the same base query
// value, reusing it through fresh gorm sessions so both see the exact same
// predicate. A page past the end comes back as an empty slice.
func Paginate(base *gorm.DB, p PageParams, order string, dest interface{}) (Pagination, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := base.Session(&gorm.Session{}).
		Order(order).
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return NewPagination(p, total), nil
}
