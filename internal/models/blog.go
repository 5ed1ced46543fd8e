package models

import (
	"time"

	"github.com/google/uuid"
)

type BlogCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Img         string    `json:"img,omitempty"`
}

type Blog struct {
	ID        uuid.UUID         `json:"id"`
	Category  *BlogCategory     `json:"category,omitempty"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"created_at"`
	Owner     *TherapistSummary `json:"owner,omitempty"`
	Images    []BlogImage       `json:"images"`
}

type BlogImage struct {
	ID     uuid.UUID `json:"id"`
	BlogID uuid.UUID `json:"blog_id"`
	Image  string    `json:"image"`
}
