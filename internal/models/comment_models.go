package models

import "time"

// CommentRecord is a single extracted comment. It is owned by the caller and
// read-only to the analysis pipeline.
type CommentRecord struct {
	ID              string     `json:"id"`
	AuthorName      string     `json:"author_name"`
	AuthorThumbnail string     `json:"author_thumbnail,omitempty"`
	Text            string     `json:"text"`
	LikeCount       int        `json:"like_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ParentID        string     `json:"parent_id,omitempty"`
}

type VideoMetadata struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	ChannelID    string     `json:"channel_id"`
	ChannelTitle string     `json:"channel_title"`
	Description  string     `json:"description,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}
