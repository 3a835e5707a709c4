package pagination

import "math"

const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// PageRequest is a 1-based offset page.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize replaces non-positive values with the defaults and caps the page size.
func (r PageRequest) Normalize() PageRequest {
	if r.Page <= 0 {
		r.Page = DefaultPage
	}
	if r.PageSize <= 0 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Offset saturates at math.MaxInt, which addresses an empty page.
func (r PageRequest) Offset() int {
	n := r.Normalize()
	if n.Page-1 > math.MaxInt/n.PageSize {
		return math.MaxInt
	}
	return (n.Page - 1) * n.PageSize
}

func (r PageRequest) Limit() int {
	return r.Normalize().PageSize
}
