package services_test

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	all := lo.Range(250)
	tests := []struct {
		name       string
		page, size int
		first, n   int
		want       services.Pagination
	}{
		{"defaults", 0, 0, 0, 10, services.Pagination{Page: 1, PerPage: 10, Total: 250, TotalPages: 25}},
		{"last partial page", 3, 100, 200, 50, services.Pagination{Page: 3, PerPage: 100, Total: 250, TotalPages: 3}},
		{"past the end", 9, 50, 0, 0, services.Pagination{Page: 9, PerPage: 50, Total: 250, TotalPages: 5}},
		{"size capped", 3, math.MaxInt, 200, 50, services.Pagination{Page: 3, PerPage: services.MaxPageSize, Total: 250, TotalPages: 3}},
		{"huge page", math.MaxInt, math.MaxInt, 0, 0, services.Pagination{Page: math.MaxInt, PerPage: services.MaxPageSize, Total: 250, TotalPages: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.Paginate(all, tt.page, tt.size)
			assert.Equal(t, tt.want, got.Pagination)
			assert.Len(t, got.Items, tt.n)
			if tt.n > 0 {
				assert.Equal(t, tt.first, got.Items[0])
			}
		})
	}
}
