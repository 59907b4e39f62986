package domain

// CurrencyKES is the currency all SwiftWash prices are quoted in.
const CurrencyKES = "KES"

// PaginatedResult is a page of items plus the paging metadata.
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult builds a PaginatedResult and computes the page count.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
