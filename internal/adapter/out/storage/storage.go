package storage

import (
	"errors"
	"fmt"
	"strings"
)

type SortField int

const (
	SortByID SortField = iota
	SortByTitle
	SortByContent
)

var (
	ErrBuildingQuery = errors.New("error building sql-query")
)

// ParseSortField resolves a user supplied sort key. Unknown keys sort by id.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return SortByTitle
	case "content":
		return SortByContent
	default:
		return SortByID
	}
}

func (f SortField) String() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortByContent:
		return "content"
	default:
		return "id"
	}
}

type ListPostsParams struct {
	// Search is matched case-insensitively against title or content. Empty disables filtering.
	Search     string
	SortBy     SortField
	Descending bool
	Offset     int
	Limit      int
}

// CacheKey identifies the result set of a normalized listing query.
func (p ListPostsParams) CacheKey() string {
	order := "asc"
	if p.Descending {
		order = "desc"
	}
	return fmt.Sprintf("search=%q:sort=%s:order=%s:offset=%d:limit=%d",
		strings.ToLower(p.Search), p.SortBy, order, p.Offset, p.Limit)
}
