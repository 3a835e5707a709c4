package model

import "time"

type PostEventType string

const (
	PostCreated PostEventType = "posts.created"
	PostUpdated PostEventType = "posts.updated"
	PostDeleted PostEventType = "posts.deleted"
)

type PostEvent struct {
	Type       PostEventType `json:"type"`
	Post       Post          `json:"post"`
	OccurredAt time.Time     `json:"occurred_at"`
}
