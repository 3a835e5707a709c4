package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"barefoot/internal/adapter/out/security"
	"barefoot/internal/model"
	"barefoot/internal/service"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=handler.go -destination=./handler_mock.go -package=httpapi
type PostService interface {
	ListPosts(ctx context.Context, req service.ListPostsRequest) ([]model.Post, error)
	GetPost(ctx context.Context, postID int64) (model.Post, error)
	CreatePost(ctx context.Context, req service.CreatePostRequest) (model.Post, error)
	UpdatePost(ctx context.Context, postID int64, req service.UpdatePostRequest) (model.Post, error)
	DeletePost(ctx context.Context, postID int64) error
}

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.AuthResult, error)
	Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error)
	DevToken(ctx context.Context, req service.DevTokenRequest) (service.AuthResult, error)
}

type TokenValidator interface {
	Validate(token string) (*security.UserClaims, error)
}

type Handler struct {
	posts          PostService
	auth           AuthService
	tokens         TokenValidator
	maxUploadBytes int64
}

func NewHandler(posts PostService, auth AuthService, tokens TokenValidator, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxImageBytes
	}
	return &Handler{
		posts:          posts,
		auth:           auth,
		tokens:         tokens,
		maxUploadBytes: maxUploadBytes,
	}
}

// RouterConfig controls the parts of the router that depend on deployment.
type RouterConfig struct {
	// ImagesDir is served under /images. Empty disables static images.
	ImagesDir string
}

// NewRouter builds the gin engine with logging, recovery and all routes.
func NewRouter(log *slog.Logger, h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = h.maxUploadBytes + 1<<20
	r.Use(requestLogger(log), recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if cfg.ImagesDir != "" {
		r.Static("/images", cfg.ImagesDir)
	}

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	posts := r.Group("/posts")
	posts.GET("", h.listPosts)
	posts.GET("/:id", h.getPost)

	authed := posts.Group("", requireAuth(h.tokens))
	authed.POST("", h.createPost)
	authed.PUT("/:id", h.updatePost)
	authed.DELETE("/:id", h.deletePost)

	auth := r.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/dev-token", h.devToken)
}
