package inmemory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"barefoot/internal/adapter/out/storage"
	"barefoot/internal/model"
	"barefoot/internal/service"
)

type PostStorage struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.Post
	now    func() time.Time
}

func NewPostStorage() *PostStorage {
	return &PostStorage{
		byID: make(map[int64]model.Post),
		now:  time.Now,
	}
}

func (s *PostStorage) CreatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	in.ID = s.lastID
	in.CreatedAt = s.now().UTC()
	if in.ImagePath == "" {
		in.ImagePath = model.DefaultImagePath
	}
	s.byID[in.ID] = in
	return in, nil
}

func (s *PostStorage) GetPostByID(_ context.Context, postID int64) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if post, ok := s.byID[postID]; ok {
		return post, nil
	}
	return model.Post{}, service.ErrNotFound
}

func (s *PostStorage) ListPosts(_ context.Context, params storage.ListPostsParams) ([]model.Post, error) {
	s.mu.RLock()
	matched := make([]model.Post, 0, len(s.byID))
	for _, p := range s.byID {
		if matchesSearch(p, params.Search) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Post) int {
		c := compareBy(params.SortBy, a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if params.Descending {
			return -c
		}
		return c
	})

	offset := max(params.Offset, 0)
	if params.Limit <= 0 || offset >= len(matched) {
		return []model.Post{}, nil
	}
	end := offset + min(params.Limit, len(matched)-offset)
	return matched[offset:end], nil
}

func (s *PostStorage) UpdatePost(_ context.Context, in model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[in.ID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	cur.Title = in.Title
	cur.Content = in.Content
	cur.ImagePath = in.ImagePath
	if cur.ImagePath == "" {
		cur.ImagePath = model.DefaultImagePath
	}
	s.byID[cur.ID] = cur
	return cur, nil
}

func (s *PostStorage) SetPostImage(_ context.Context, postID int64, imagePath string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	p.ImagePath = imagePath
	s.byID[postID] = p
	return p, nil
}

func (s *PostStorage) DeletePost(_ context.Context, postID int64) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[postID]
	if !ok {
		return model.Post{}, service.ErrNotFound
	}
	delete(s.byID, postID)
	return p, nil
}

func matchesSearch(p model.Post, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle)
}

func compareBy(field storage.SortField, a, b model.Post) int {
	switch field {
	case storage.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case storage.SortByContent:
		return strings.Compare(a.Content, b.Content)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
