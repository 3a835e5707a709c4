package grpcapi

import (
	"time"

	"barefoot/internal/model"
)

type PostModel struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path"`
	CreatedOn string `json:"created_on"`
}

type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
}

type ReadPostRequest struct {
	ID int64 `json:"id"`
}

type UpdatePostRequest struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
}

type DeletePostRequest struct {
	ID int64 `json:"id"`
}

type DeletePostReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListPostsRequest struct {
	Search   string `json:"search,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

type ListPostsReply struct {
	Posts []*PostModel `json:"posts"`
}

type WatchPostsRequest struct {
	// Types limits the stream to these event types. Empty means all.
	Types []string `json:"types,omitempty"`
}

type PostEventModel struct {
	Type       string     `json:"type"`
	Post       *PostModel `json:"post"`
	OccurredAt string     `json:"occurred_at"`
}

func toPostEventModel(e model.PostEvent) *PostEventModel {
	return &PostEventModel{
		Type:       string(e.Type),
		Post:       toPostModel(e.Post),
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func toPostModel(p model.Post) *PostModel {
	return &PostModel{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImagePath: p.ImagePath,
		CreatedOn: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
