package service

import (
	"strings"
	"time"

	"barefoot/internal/adapter/out/storage"
	"barefoot/pkg/pagination"
)

type ListPostsRequest struct {
	Search   string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// ImageUpload is a raw uploaded file.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreatePostRequest struct {
	Title     string       `json:"title" validate:"required,notblank,max=25"`
	Content   string       `json:"content"`
	ImagePath string       `json:"image_path" validate:"max=512"`
	Image     *ImageUpload `json:"-"`
}

type UpdatePostRequest struct {
	Title     string       `json:"title" validate:"required,notblank,max=25"`
	Content   string       `json:"content"`
	ImagePath string       `json:"image_path" validate:"max=512"`
	Image     *ImageUpload `json:"-"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DevTokenRequest struct {
	Secret string `json:"secret"`
}

type AuthResult struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r ListPostsRequest) toParams() storage.ListPostsParams {
	page := pagination.PageRequest{Page: r.Page, PageSize: r.PageSize}

	search := r.Search
	if strings.TrimSpace(search) == "" {
		search = ""
	}

	return storage.ListPostsParams{
		Search:     search,
		SortBy:     storage.ParseSortField(r.Sort),
		Descending: strings.EqualFold(strings.TrimSpace(r.Order), "desc"),
		Offset:     page.Offset(),
		Limit:      page.Limit(),
	}
}
