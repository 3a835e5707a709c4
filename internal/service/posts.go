package service

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"barefoot/internal/adapter/out/storage"
	"barefoot/internal/model"
	"barefoot/pkg/logger"

	"github.com/gosimple/slug"
)

//go:generate mockgen -source=posts.go -destination=./posts_mock.go -package=service
type PostStorage interface {
	CreatePost(ctx context.Context, post model.Post) (model.Post, error)
	GetPostByID(ctx context.Context, postID int64) (model.Post, error)
	ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, error)
	UpdatePost(ctx context.Context, post model.Post) (model.Post, error)
	SetPostImage(ctx context.Context, postID int64, imagePath string) (model.Post, error)
	DeletePost(ctx context.Context, postID int64) (model.Post, error)
}

// TxManager runs fn inside a transaction carried by ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostListCache holds listing results. Keys are scoped to a generation and
// Invalidate moves to the next one, so pages computed before a mutation are
// never served after it.
type PostListCache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, key string) ([]model.Post, bool, error)
	Set(ctx context.Context, key string, posts []model.Post) error
	Invalidate(ctx context.Context) error
}

type ImageStorage interface {
	// Save writes data under name and returns the path recorded on the post.
	Save(ctx context.Context, name string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}

type PostEventPublisher interface {
	PublishPostEvent(ctx context.Context, event model.PostEvent) error
}

type PostService struct {
	posts         PostStorage
	tx            TxManager
	cache         PostListCache
	images        ImageStorage
	events        []PostEventPublisher
	maxImageBytes int64
	now           func() time.Time
}

type PostServiceOption func(*PostService)

func WithTxManager(tx TxManager) PostServiceOption {
	return func(s *PostService) { s.tx = tx }
}

func WithListCache(c PostListCache) PostServiceOption {
	return func(s *PostService) { s.cache = c }
}

func WithImageStorage(images ImageStorage, maxBytes int64) PostServiceOption {
	return func(s *PostService) {
		s.images = images
		if maxBytes > 0 {
			s.maxImageBytes = maxBytes
		}
	}
}

// WithEventPublisher adds a sink for post lifecycle events. Every sink gets every event.
func WithEventPublisher(p PostEventPublisher) PostServiceOption {
	return func(s *PostService) { s.events = append(s.events, p) }
}

func NewPostService(posts PostStorage, opts ...PostServiceOption) *PostService {
	s := &PostService{
		posts:         posts,
		tx:            noopTx{},
		cache:         noopCache{},
		maxImageBytes: DefaultMaxImageBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPosts filters, sorts and pages posts. The result is never nil.
func (s *PostService) ListPosts(ctx context.Context, req ListPostsRequest) ([]model.Post, error) {
	log := logger.FromContext(ctx)
	params := req.toParams()

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		log.Warn("post list cache unavailable", "error", err)
		return s.listFromStorage(ctx, params)
	}
	key := listCacheKey(gen, params)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("post list cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	posts, err := s.listFromStorage(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, posts); err != nil {
		log.Warn("post list cache write failed", "key", key, "error", err)
	}
	return posts, nil
}

func (s *PostService) listFromStorage(ctx context.Context, params storage.ListPostsParams) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx, params)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func listCacheKey(gen uint64, params storage.ListPostsParams) string {
	return fmt.Sprintf("g%d:%s", gen, params.CacheKey())
}

func (s *PostService) GetPost(ctx context.Context, postID int64) (model.Post, error) {
	if postID <= 0 {
		return model.Post{}, ErrNotFound
	}
	return s.posts.GetPostByID(ctx, postID)
}

func (s *PostService) CreatePost(ctx context.Context, req CreatePostRequest) (model.Post, error) {
	ext, err := s.validateMutation(req, req.Image)
	if err != nil {
		return model.Post{}, err
	}

	var (
		out       model.Post
		savedPath string
	)
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		p, err := s.posts.CreatePost(ctx, model.Post{
			Title:     req.Title,
			Content:   req.Content,
			ImagePath: imagePathOrDefault(req.ImagePath),
		})
		if err != nil {
			return err
		}

		if req.Image != nil {
			savedPath, err = s.images.Save(ctx, imageName(p.ID, p.Title, ext), req.Image.Data)
			if err != nil {
				return fmt.Errorf("saving post image: %w", err)
			}
			if p, err = s.posts.SetPostImage(ctx, p.ID, savedPath); err != nil {
				return err
			}
		}

		out = p
		return nil
	})
	if err != nil {
		if savedPath != "" {
			s.removeImage(ctx, savedPath)
		}
		return model.Post{}, err
	}

	s.afterMutation(ctx, model.PostCreated, out)
	return out, nil
}

// UpdatePost replaces title, content and image path. ID and creation time are kept.
func (s *PostService) UpdatePost(ctx context.Context, postID int64, req UpdatePostRequest) (model.Post, error) {
	ext, err := s.validateMutation(req, req.Image)
	if err != nil {
		return model.Post{}, err
	}
	if postID <= 0 {
		return model.Post{}, ErrNotFound
	}

	var (
		out, prev model.Post
		savedPath string
	)
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		cur, err := s.posts.GetPostByID(ctx, postID)
		if err != nil {
			return err
		}
		prev = cur

		cur.Title = req.Title
		cur.Content = req.Content
		cur.ImagePath = imagePathOrDefault(req.ImagePath)

		if req.Image != nil {
			savedPath, err = s.images.Save(ctx, imageName(cur.ID, cur.Title, ext), req.Image.Data)
			if err != nil {
				return fmt.Errorf("saving post image: %w", err)
			}
			cur.ImagePath = savedPath
		}

		out, err = s.posts.UpdatePost(ctx, cur)
		return err
	})
	if err != nil {
		if savedPath != "" && savedPath != prev.ImagePath {
			s.removeImage(ctx, savedPath)
		}
		return model.Post{}, err
	}

	if ownsImage(prev) && prev.ImagePath != out.ImagePath {
		s.removeImage(ctx, prev.ImagePath)
	}

	s.afterMutation(ctx, model.PostUpdated, out)
	return out, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return ErrNotFound
	}

	p, err := s.posts.DeletePost(ctx, postID)
	if err != nil {
		return err
	}

	if ownsImage(p) {
		s.removeImage(ctx, p.ImagePath)
	}

	s.afterMutation(ctx, model.PostDeleted, p)
	return nil
}

func (s *PostService) validateMutation(req any, img *ImageUpload) (string, error) {
	verr := validateStruct(req)
	if img != nil && s.images == nil {
		verr.Add("image", "uploads are disabled")
		return "", verr
	}
	ext := validateImage(img, s.maxImageBytes, verr)
	if !verr.empty() {
		return "", verr
	}
	return ext, nil
}

func (s *PostService) afterMutation(ctx context.Context, typ model.PostEventType, p model.Post) {
	log := logger.FromContext(ctx)

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Error("post list cache invalidation failed", "error", err)
	}

	event := model.PostEvent{Type: typ, Post: p, OccurredAt: s.now().UTC()}
	for _, pub := range s.events {
		if err := pub.PublishPostEvent(ctx, event); err != nil {
			log.Warn("post event not published", "type", typ, "post_id", p.ID, "error", err)
		}
	}
}

func (s *PostService) removeImage(ctx context.Context, path string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, path); err != nil {
		logger.FromContext(ctx).Warn("post image not removed", "path", path, "error", err)
	}
}

func imagePathOrDefault(path string) string {
	if path == "" {
		return model.DefaultImagePath
	}
	return path
}

// ownsImage reports whether the post's image path names a file stored for
// this post. Client supplied paths pointing at other posts' files are never removed.
func ownsImage(p model.Post) bool {
	if !p.HasCustomImage() {
		return false
	}
	dir, file := path.Split(p.ImagePath)
	return path.Base(dir) == imageDir && strings.HasPrefix(file, strconv.FormatInt(p.ID, 10)+"-")
}

// imageName derives the stored file name from the post id and title.
func imageName(postID int64, title, ext string) string {
	s := slug.Make(title)
	if s == "" {
		s = "post"
	}
	return fmt.Sprintf("%s/%d-%s%s", imageDir, postID, s, ext)
}

const imageDir = "posts"

type noopTx struct{}

func (noopTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopCache struct{}

func (noopCache) Generation(context.Context) (uint64, error)              { return 0, nil }
func (noopCache) Get(context.Context, string) ([]model.Post, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []model.Post) error         { return nil }
func (noopCache) Invalidate(context.Context) error                        { return nil }
