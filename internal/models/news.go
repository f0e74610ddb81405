package models

import "time"

// News is an admin-authored announcement.
type News struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AddNewsRequest is the body for POST /admin/add-news.
type AddNewsRequest struct {
	Title   string `json:"title"   form:"title"   validate:"max=300"`
	Content string `json:"content" form:"content"`
	Image   string `json:"image"   form:"image"   validate:"max=500"`
}
