package services

import "github.com/samber/lo"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is the metadata returned with every paged listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one skip/take window over a fully materialised result set.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Paginate slices all into the requested window. page is 1-based; values
// below 1 select the first page, a non-positive size uses DefaultPageSize and
// size is capped at MaxPageSize.
func Paginate[T any](all []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	total := len(all)
	skip := total
	if page-1 <= total/size {
		skip = min((page-1)*size, total)
	}

	return Page[T]{
		Items: lo.Slice(all, skip, skip+size),
		Pagination: Pagination{
			Page:       page,
			PerPage:    size,
			Total:      total,
			TotalPages: (total + size - 1) / size,
		},
	}
}
