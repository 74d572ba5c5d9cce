package utils

import "strconv"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination is the listing envelope returned to clients.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NormalizePage clamps page/limit to sane values.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// ParsePage reads page/limit query values, falling back to defaults.
func ParsePage(pageRaw, limitRaw string) (int, int) {
	page, _ := strconv.Atoi(pageRaw)
	limit, _ := strconv.Atoi(limitRaw)
	return NormalizePage(page, limit)
}

// NewPagination computes the page count for total rows.
func NewPagination(total int64, page, limit int) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}
