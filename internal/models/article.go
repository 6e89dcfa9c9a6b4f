package models

import (
	"time"

	"github.com/google/uuid"
)

// NewArticle creates a new article with generated UUID and timestamps
func NewArticle() *Article {
	now := time.Now()
	return &Article{
		ID:          uuid.New(),
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SameCategory reports whether a and b are filed under the same category.
func (a *Article) SameCategory(b *Article) bool {
	return a.CategoryID == b.CategoryID
}

// Link returns the navigation link for a, or nil when a is nil.
func (a *Article) Link() *ArticleLink {
	if a == nil {
		return nil
	}
	return &ArticleLink{
		ID:          a.ID,
		Name:        a.Name,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
	}
}
