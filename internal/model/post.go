package model

import "time"

const (
	// DefaultImagePath is recorded for posts without an uploaded image.
	DefaultImagePath = "Post.jfif"

	MaxTitleLength = 25
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImagePath string    `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}

// HasCustomImage reports whether the post points at an uploaded file.
func (p Post) HasCustomImage() bool {
	return p.ImagePath != "" && p.ImagePath != DefaultImagePath
}
