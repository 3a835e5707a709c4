package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	memcache "barefoot/internal/adapter/out/cache/inmemory"
	"barefoot/internal/adapter/out/storage"
	"barefoot/internal/model"
	"barefoot/pkg/pagination"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	fixedNow = time.Date(2025, 9, 24, 12, 0, 0, 0, time.UTC)
	pngImage = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
)

type postMocks struct {
	storage *MockPostStorage
	cache   *MockPostListCache
	images  *MockImageStorage
	events  *MockPostEventPublisher
	tx      *MockTxManager
}

func newPostService(t *testing.T) (*postMocks, *PostService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := &postMocks{
		storage: NewMockPostStorage(ctrl),
		cache:   NewMockPostListCache(ctrl),
		images:  NewMockImageStorage(ctrl),
		events:  NewMockPostEventPublisher(ctrl),
		tx:      NewMockTxManager(ctrl),
	}
	m.tx.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()

	svc := NewPostService(m.storage,
		WithTxManager(m.tx),
		WithListCache(m.cache),
		WithImageStorage(m.images, 1024),
		WithEventPublisher(m.events),
	)
	svc.now = func() time.Time { return fixedNow }
	return m, svc
}

func (m *postMocks) expectMutation(typ model.PostEventType, p model.Post) {
	m.cache.EXPECT().Invalidate(gomock.Any()).Return(nil)
	m.events.EXPECT().
		PublishPostEvent(gomock.Any(), model.PostEvent{Type: typ, Post: p, OccurredAt: fixedNow}).
		Return(nil)
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()

	require.ErrorIs(t, err, ErrInvalidRequest)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, field)
}

func TestPostService_ListPosts(t *testing.T) {
	t.Parallel()

	posts := []model.Post{
		{ID: 1, Title: "Go news", Content: "x", ImagePath: model.DefaultImagePath, CreatedAt: fixedNow},
	}

	tests := []struct {
		name    string
		req     ListPostsRequest
		setup   func(m *postMocks)
		want    []model.Post
		wantErr error
	}{
		{
			name: "normalizes query and clamps paging",
			req:  ListPostsRequest{Search: "go", Sort: "TITLE", Order: "DESC", Page: 0, PageSize: -1},
			setup: func(m *postMocks) {
				params := storage.ListPostsParams{Search: "go", SortBy: storage.SortByTitle, Descending: true, Offset: 0, Limit: 50}
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(4), nil)
				m.cache.EXPECT().Get(gomock.Any(), "g4:"+params.CacheKey()).Return(nil, false, nil)
				m.storage.EXPECT().ListPosts(gomock.Any(), params).Return(posts, nil)
				m.cache.EXPECT().Set(gomock.Any(), "g4:"+params.CacheKey(), posts).Return(nil)
			},
			want: posts,
		},
		{
			name: "unknown sort falls back to id ascending",
			req:  ListPostsRequest{Sort: "created_at", Order: "descending", Page: 3, PageSize: 10},
			setup: func(m *postMocks) {
				params := storage.ListPostsParams{SortBy: storage.SortByID, Offset: 20, Limit: 10}
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
				m.storage.EXPECT().ListPosts(gomock.Any(), params).Return(posts, nil)
				m.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			want: posts,
		},
		{
			name: "blank search disables filter",
			req:  ListPostsRequest{Search: "   "},
			setup: func(m *postMocks) {
				params := storage.ListPostsParams{SortBy: storage.SortByID, Offset: 0, Limit: 50}
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
				m.storage.EXPECT().ListPosts(gomock.Any(), params).Return(nil, nil)
				m.cache.EXPECT().Set(gomock.Any(), gomock.Any(), []model.Post{}).Return(nil)
			},
			want: []model.Post{},
		},
		{
			name: "huge paging values yield a capped empty page",
			req:  ListPostsRequest{Page: 1 << 62, PageSize: 1 << 50},
			setup: func(m *postMocks) {
				params := storage.ListPostsParams{SortBy: storage.SortByID, Offset: math.MaxInt, Limit: pagination.MaxPageSize}
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
				m.storage.EXPECT().ListPosts(gomock.Any(), params).Return([]model.Post{}, nil)
				m.cache.EXPECT().Set(gomock.Any(), gomock.Any(), []model.Post{}).Return(nil)
			},
			want: []model.Post{},
		},
		{
			name: "cache hit skips storage",
			req:  ListPostsRequest{},
			setup: func(m *postMocks) {
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(posts, true, nil)
			},
			want: posts,
		},
		{
			name: "cache failures are not fatal",
			req:  ListPostsRequest{},
			setup: func(m *postMocks) {
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))
				m.storage.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return(posts, nil)
				m.cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			want: posts,
		},
		{
			name: "unknown generation bypasses the cache",
			req:  ListPostsRequest{},
			setup: func(m *postMocks) {
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), errors.New("breaker open"))
				m.storage.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return(posts, nil)
			},
			want: posts,
		},
		{
			name: "storage error",
			req:  ListPostsRequest{},
			setup: func(m *postMocks) {
				m.cache.EXPECT().Generation(gomock.Any()).Return(uint64(0), nil)
				m.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
				m.storage.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, svc := newPostService(t)
			tt.setup(m)

			got, err := svc.ListPosts(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.EqualError(t, err, tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPostService_GetPost(t *testing.T) {
	t.Parallel()

	t.Run("non-positive id is not found", func(t *testing.T) {
		t.Parallel()
		_, svc := newPostService(t)
		_, err := svc.GetPost(context.Background(), 0)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		m, svc := newPostService(t)
		want := model.Post{ID: 5, Title: "t", ImagePath: model.DefaultImagePath, CreatedAt: fixedNow}
		m.storage.EXPECT().GetPostByID(gomock.Any(), int64(5)).Return(want, nil)

		got, err := svc.GetPost(context.Background(), 5)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		m, svc := newPostService(t)
		m.storage.EXPECT().GetPostByID(gomock.Any(), int64(9)).Return(model.Post{}, ErrNotFound)

		_, err := svc.GetPost(context.Background(), 9)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	created := model.Post{ID: 7, Title: "Hello World", Content: "B", ImagePath: model.DefaultImagePath, CreatedAt: fixedNow}
	withImage := created
	withImage.ImagePath = "images/posts/7-hello-world.png"

	tests := []struct {
		name      string
		req       CreatePostRequest
		setup     func(m *postMocks)
		want      model.Post
		wantField string
		wantErr   error
	}{
		{
			name:      "missing title",
			req:       CreatePostRequest{Content: "B"},
			setup:     func(*postMocks) {},
			wantField: "title",
		},
		{
			name:      "blank title",
			req:       CreatePostRequest{Title: "   "},
			setup:     func(*postMocks) {},
			wantField: "title",
		},
		{
			name:      "title of 26 characters",
			req:       CreatePostRequest{Title: strings.Repeat("a", 26)},
			setup:     func(*postMocks) {},
			wantField: "title",
		},
		{
			name:      "image is not an image",
			req:       CreatePostRequest{Title: "ok", Image: &ImageUpload{Filename: "a.txt", Data: []byte("plain text")}},
			setup:     func(*postMocks) {},
			wantField: "image",
		},
		{
			name:      "image too large",
			req:       CreatePostRequest{Title: "ok", Image: &ImageUpload{Filename: "a.png", Data: append(append([]byte{}, pngImage...), make([]byte, 2048)...)}},
			setup:     func(*postMocks) {},
			wantField: "image",
		},
		{
			name: "title of 25 multibyte characters",
			req:  CreatePostRequest{Title: strings.Repeat("ж", 25)},
			setup: func(m *postMocks) {
				p := model.Post{ID: 1, Title: strings.Repeat("ж", 25), ImagePath: model.DefaultImagePath, CreatedAt: fixedNow}
				m.storage.EXPECT().
					CreatePost(gomock.Any(), model.Post{Title: strings.Repeat("ж", 25), ImagePath: model.DefaultImagePath}).
					Return(p, nil)
				m.expectMutation(model.PostCreated, p)
			},
			want: model.Post{ID: 1, Title: strings.Repeat("ж", 25), ImagePath: model.DefaultImagePath, CreatedAt: fixedNow},
		},
		{
			name: "default image sentinel",
			req:  CreatePostRequest{Title: "Hello World", Content: "B"},
			setup: func(m *postMocks) {
				m.storage.EXPECT().
					CreatePost(gomock.Any(), model.Post{Title: "Hello World", Content: "B", ImagePath: model.DefaultImagePath}).
					Return(created, nil)
				m.expectMutation(model.PostCreated, created)
			},
			want: created,
		},
		{
			name: "stores uploaded image",
			req:  CreatePostRequest{Title: "Hello World", Content: "B", Image: &ImageUpload{Filename: "x.png", Data: pngImage}},
			setup: func(m *postMocks) {
				m.storage.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(created, nil)
				m.images.EXPECT().Save(gomock.Any(), "posts/7-hello-world.png", pngImage).Return(withImage.ImagePath, nil)
				m.storage.EXPECT().SetPostImage(gomock.Any(), int64(7), withImage.ImagePath).Return(withImage, nil)
				m.expectMutation(model.PostCreated, withImage)
			},
			want: withImage,
		},
		{
			name: "storage error",
			req:  CreatePostRequest{Title: "Hello World"},
			setup: func(m *postMocks) {
				m.storage.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(model.Post{}, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
		{
			name: "failed image update removes saved file",
			req:  CreatePostRequest{Title: "Hello World", Image: &ImageUpload{Filename: "x.png", Data: pngImage}},
			setup: func(m *postMocks) {
				m.storage.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(created, nil)
				m.images.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(withImage.ImagePath, nil)
				m.storage.EXPECT().SetPostImage(gomock.Any(), int64(7), gomock.Any()).Return(model.Post{}, errors.New("db fail"))
				m.images.EXPECT().Remove(gomock.Any(), withImage.ImagePath).Return(nil)
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, svc := newPostService(t)
			tt.setup(m)

			got, err := svc.CreatePost(context.Background(), tt.req)
			switch {
			case tt.wantField != "":
				requireFieldError(t, err, tt.wantField)
			case tt.wantErr != nil:
				require.EqualError(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPostService_CreatePost_UploadsDisabled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := NewPostService(NewMockPostStorage(ctrl))

	_, err := svc.CreatePost(context.Background(), CreatePostRequest{
		Title: "ok",
		Image: &ImageUpload{Filename: "x.png", Data: pngImage},
	})
	requireFieldError(t, err, "image")
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	existing := model.Post{ID: 3, Title: "old", Content: "old", ImagePath: "images/posts/3-old.png", CreatedAt: fixedNow.Add(-time.Hour)}

	tests := []struct {
		name      string
		id        int64
		req       UpdatePostRequest
		setup     func(m *postMocks)
		want      model.Post
		wantField string
		wantErr   error
	}{
		{
			name:      "validation before lookup",
			id:        3,
			req:       UpdatePostRequest{Title: ""},
			setup:     func(*postMocks) {},
			wantField: "title",
		},
		{
			name:    "non-positive id",
			id:      -1,
			req:     UpdatePostRequest{Title: "new"},
			setup:   func(*postMocks) {},
			wantErr: ErrNotFound,
		},
		{
			name: "missing post",
			id:   42,
			req:  UpdatePostRequest{Title: "new"},
			setup: func(m *postMocks) {
				m.storage.EXPECT().GetPostByID(gomock.Any(), int64(42)).Return(model.Post{}, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "overwrites fields and drops old image",
			id:   3,
			req:  UpdatePostRequest{Title: "new", Content: "body"},
			setup: func(m *postMocks) {
				updated := model.Post{ID: 3, Title: "new", Content: "body", ImagePath: model.DefaultImagePath, CreatedAt: existing.CreatedAt}
				m.storage.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(existing, nil)
				m.storage.EXPECT().UpdatePost(gomock.Any(), updated).Return(updated, nil)
				m.images.EXPECT().Remove(gomock.Any(), existing.ImagePath).Return(nil)
				m.expectMutation(model.PostUpdated, updated)
			},
			want: model.Post{ID: 3, Title: "new", Content: "body", ImagePath: model.DefaultImagePath, CreatedAt: existing.CreatedAt},
		},
		{
			name: "keeps image path supplied by caller",
			id:   3,
			req:  UpdatePostRequest{Title: "new", ImagePath: existing.ImagePath},
			setup: func(m *postMocks) {
				updated := model.Post{ID: 3, Title: "new", ImagePath: existing.ImagePath, CreatedAt: existing.CreatedAt}
				m.storage.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(existing, nil)
				m.storage.EXPECT().UpdatePost(gomock.Any(), updated).Return(updated, nil)
				m.expectMutation(model.PostUpdated, updated)
			},
			want: model.Post{ID: 3, Title: "new", ImagePath: existing.ImagePath, CreatedAt: existing.CreatedAt},
		},
		{
			name: "foreign image path is not removed on update",
			id:   3,
			req:  UpdatePostRequest{Title: "new"},
			setup: func(m *postMocks) {
				foreign := existing
				foreign.ImagePath = "images/posts/1-victim.png"
				updated := model.Post{ID: 3, Title: "new", ImagePath: model.DefaultImagePath, CreatedAt: existing.CreatedAt}
				m.storage.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(foreign, nil)
				m.storage.EXPECT().UpdatePost(gomock.Any(), updated).Return(updated, nil)
				m.expectMutation(model.PostUpdated, updated)
			},
			want: model.Post{ID: 3, Title: "new", ImagePath: model.DefaultImagePath, CreatedAt: existing.CreatedAt},
		},
		{
			name: "new upload replaces image",
			id:   3,
			req:  UpdatePostRequest{Title: "New Title", Image: &ImageUpload{Filename: "n.png", Data: pngImage}},
			setup: func(m *postMocks) {
				updated := model.Post{ID: 3, Title: "New Title", ImagePath: "images/posts/3-new-title.png", CreatedAt: existing.CreatedAt}
				m.storage.EXPECT().GetPostByID(gomock.Any(), int64(3)).Return(existing, nil)
				m.images.EXPECT().Save(gomock.Any(), "posts/3-new-title.png", pngImage).Return(updated.ImagePath, nil)
				m.storage.EXPECT().UpdatePost(gomock.Any(), updated).Return(updated, nil)
				m.images.EXPECT().Remove(gomock.Any(), existing.ImagePath).Return(errors.New("gone"))
				m.expectMutation(model.PostUpdated, updated)
			},
			want: model.Post{ID: 3, Title: "New Title", ImagePath: "images/posts/3-new-title.png", CreatedAt: existing.CreatedAt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, svc := newPostService(t)
			tt.setup(m)

			got, err := svc.UpdatePost(context.Background(), tt.id, tt.req)
			switch {
			case tt.wantField != "":
				requireFieldError(t, err, tt.wantField)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      int64
		setup   func(m *postMocks)
		wantErr error
	}{
		{
			name:    "non-positive id",
			id:      0,
			setup:   func(*postMocks) {},
			wantErr: ErrNotFound,
		},
		{
			name: "missing post",
			id:   8,
			setup: func(m *postMocks) {
				m.storage.EXPECT().DeletePost(gomock.Any(), int64(8)).Return(model.Post{}, ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "default image is left alone",
			id:   8,
			setup: func(m *postMocks) {
				p := model.Post{ID: 8, Title: "t", ImagePath: model.DefaultImagePath}
				m.storage.EXPECT().DeletePost(gomock.Any(), int64(8)).Return(p, nil)
				m.expectMutation(model.PostDeleted, p)
			},
		},
		{
			name: "image of another post is left alone",
			id:   8,
			setup: func(m *postMocks) {
				p := model.Post{ID: 8, Title: "t", ImagePath: "images/posts/1-victim.png"}
				m.storage.EXPECT().DeletePost(gomock.Any(), int64(8)).Return(p, nil)
				m.expectMutation(model.PostDeleted, p)
			},
		},
		{
			name: "uploaded image removed",
			id:   8,
			setup: func(m *postMocks) {
				p := model.Post{ID: 8, Title: "t", ImagePath: "images/posts/8-t.png"}
				m.storage.EXPECT().DeletePost(gomock.Any(), int64(8)).Return(p, nil)
				m.images.EXPECT().Remove(gomock.Any(), p.ImagePath).Return(nil)
				m.cache.EXPECT().Invalidate(gomock.Any()).Return(errors.New("redis down"))
				m.events.EXPECT().PublishPostEvent(gomock.Any(), gomock.Any()).Return(errors.New("nats down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, svc := newPostService(t)
			tt.setup(m)

			err := svc.DeletePost(context.Background(), tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOwnsImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		post model.Post
		want bool
	}{
		{name: "own upload", post: model.Post{ID: 12, ImagePath: "images/posts/12-hello.png"}, want: true},
		{name: "default image", post: model.Post{ID: 12, ImagePath: model.DefaultImagePath}},
		{name: "other post upload", post: model.Post{ID: 12, ImagePath: "images/posts/1-victim.png"}},
		{name: "id prefix of another id", post: model.Post{ID: 1, ImagePath: "images/posts/12-hello.png"}},
		{name: "outside the posts dir", post: model.Post{ID: 12, ImagePath: "images/12-hello.png"}},
		{name: "external url", post: model.Post{ID: 12, ImagePath: "https://cdn.example.com/x.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ownsImage(tt.post))
		})
	}
}

func TestPostService_ListPosts_MutationDuringRead(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := NewMockPostStorage(ctrl)
	svc := NewPostService(st, WithListCache(memcache.NewPostListCache(time.Minute)))
	svc.now = func() time.Time { return fixedNow }

	created := model.Post{ID: 1, Title: "A", Content: "B", ImagePath: model.DefaultImagePath, CreatedAt: fixedNow}

	gomock.InOrder(
		st.EXPECT().
			ListPosts(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ storage.ListPostsParams) ([]model.Post, error) {
				// The store was read before the post below is committed.
				st.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(created, nil)
				_, err := svc.CreatePost(ctx, CreatePostRequest{Title: "A", Content: "B"})
				require.NoError(t, err)
				return []model.Post{}, nil
			}),
		st.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return([]model.Post{created}, nil),
	)

	got, err := svc.ListPosts(context.Background(), ListPostsRequest{})
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = svc.ListPosts(context.Background(), ListPostsRequest{})
	require.NoError(t, err)
	require.Equal(t, []model.Post{created}, got)

	// Served from the cache now.
	got, err = svc.ListPosts(context.Background(), ListPostsRequest{})
	require.NoError(t, err)
	require.Equal(t, []model.Post{created}, got)
}

func TestImageName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "posts/12-hello-world.jpg", imageName(12, "Hello, World!", ".jpg"))
	require.Equal(t, "posts/3-post.png", imageName(3, "!!!", ".png"))
}

func TestPostService_EventSinks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := NewMockPostStorage(ctrl)
	failing := NewMockPostEventPublisher(ctrl)
	healthy := NewMockPostEventPublisher(ctrl)

	svc := NewPostService(st, WithEventPublisher(failing), WithEventPublisher(healthy))
	svc.now = func() time.Time { return fixedNow }

	p := model.Post{ID: 3, Title: "t", ImagePath: model.DefaultImagePath}
	want := model.PostEvent{Type: model.PostDeleted, Post: p, OccurredAt: fixedNow}

	st.EXPECT().DeletePost(gomock.Any(), int64(3)).Return(p, nil)
	failing.EXPECT().PublishPostEvent(gomock.Any(), want).Return(errors.New("nats down"))
	healthy.EXPECT().PublishPostEvent(gomock.Any(), want).Return(nil)

	require.NoError(t, svc.DeletePost(context.Background(), 3))
}
