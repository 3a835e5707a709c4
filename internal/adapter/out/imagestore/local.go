package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidPath = errors.New("invalid image path")

// LocalStore keeps uploaded images on disk under root. Paths handed back to
// callers are rooted at publicPrefix, which is also the URL prefix they are served from.
type LocalStore struct {
	root         string
	publicPrefix string
}

func NewLocalStore(root, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating image root: %w", err)
	}
	return &LocalStore{
		root:         root,
		publicPrefix: strings.Trim(publicPrefix, "/"),
	}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	rel, err := cleanRelative(name)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating image dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod image: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("renaming image: %w", err)
	}

	return path.Join(s.publicPrefix, rel), nil
}

// Remove deletes a file previously returned by Save. Missing files are not an error.
func (s *LocalStore) Remove(_ context.Context, p string) error {
	prefix := s.publicPrefix + "/"
	if !strings.HasPrefix(p, prefix) {
		return fmt.Errorf("%w: %q is outside %q", ErrInvalidPath, p, s.publicPrefix)
	}

	rel, err := cleanRelative(strings.TrimPrefix(p, prefix))
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}

func cleanRelative(name string) (string, error) {
	if name == "" || strings.Contains(name, `\`) || !fs.ValidPath(name) || name == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return name, nil
}
