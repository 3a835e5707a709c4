package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveRemove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s, err := NewLocalStore(root, "/images/")
	require.NoError(t, err)

	ctx := context.Background()

	p, err := s.Save(ctx, "posts/7-hello.png", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, "images/posts/7-hello.png", p)

	got, err := os.ReadFile(filepath.Join(root, "posts", "7-hello.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("data"), got)

	p2, err := s.Save(ctx, "posts/7-hello.png", []byte("new"))
	require.NoError(t, err)
	require.Equal(t, p, p2)
	got, err = os.ReadFile(filepath.Join(root, "posts", "7-hello.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)

	require.NoError(t, s.Remove(ctx, p))
	_, err = os.Stat(filepath.Join(root, "posts", "7-hello.png"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Remove(ctx, p))

	entries, err := os.ReadDir(filepath.Join(root, "posts"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLocalStore_RejectsEscapes(t *testing.T) {
	t.Parallel()

	s, err := NewLocalStore(t.TempDir(), "images")
	require.NoError(t, err)

	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{name: "save parent", fn: func() error { _, err := s.Save(ctx, "../x.png", nil); return err }},
		{name: "save absolute", fn: func() error { _, err := s.Save(ctx, "/etc/x.png", nil); return err }},
		{name: "remove outside prefix", fn: func() error { return s.Remove(ctx, "Post.jfif") }},
		{name: "remove traversal", fn: func() error { return s.Remove(ctx, "images/../../etc/passwd") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.fn(), ErrInvalidPath)
		})
	}
}
