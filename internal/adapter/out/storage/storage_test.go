package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSortField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want SortField
	}{
		{in: "", want: SortByID},
		{in: "id", want: SortByID},
		{in: "Title", want: SortByTitle},
		{in: " CONTENT ", want: SortByContent},
		{in: "created_at", want: SortByID},
		{in: "image_path", want: SortByID},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ParseSortField(tt.in))
		})
	}
}

func TestListPostsParams_CacheKey(t *testing.T) {
	t.Parallel()

	a := ListPostsParams{Search: "Go", SortBy: SortByTitle, Descending: true, Offset: 0, Limit: 10}
	b := ListPostsParams{Search: "go", SortBy: SortByTitle, Descending: true, Offset: 0, Limit: 10}
	c := ListPostsParams{Search: "go", SortBy: SortByTitle, Descending: false, Offset: 0, Limit: 10}

	require.Equal(t, a.CacheKey(), b.CacheKey())
	require.NotEqual(t, b.CacheKey(), c.CacheKey())
	require.Contains(t, a.CacheKey(), "sort=title")
}
