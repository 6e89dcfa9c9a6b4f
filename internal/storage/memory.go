package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/romangod6/kb-nav/internal/models"
)

// MemoryStore keeps articles and categories in maps. Records are copied in
// and out so callers cannot mutate stored state.
type MemoryStore struct {
	mutex      sync.RWMutex
	categories map[uuid.UUID]*models.Category
	articles   map[uuid.UUID]*models.Article
	urls       map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[uuid.UUID]*models.Category),
		articles:   make(map[uuid.UUID]*models.Article),
		urls:       make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Initialize() error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := *category
	s.categories[c.ID] = &c
	return nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out := *c
		categories = append(categories, &out)
	}
	slices.SortFunc(categories, func(a, b *models.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories, nil
}

// CreateArticle upserts on URL like the SQL stores: an existing article
// with the same URL keeps its ID and is overwritten.
func (s *MemoryStore) CreateArticle(ctx context.Context, article *models.Article) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	a := copyArticle(article)
	if existing, ok := s.urls[a.URL]; ok {
		// The URL owner absorbs the write; the article under a.ID, if any,
		// keeps its own row and URL.
		a.ID = existing
		a.CreatedAt = s.articles[existing].CreatedAt
	} else if old, ok := s.articles[a.ID]; ok {
		delete(s.urls, old.URL)
	}
	s.articles[a.ID] = a
	s.urls[a.URL] = a.ID
	return nil
}

func (s *MemoryStore) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	return copyArticle(a), nil
}

func (s *MemoryStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.query(func(*models.Article) bool { return true }, true, limit, offset), nil
}

func (s *MemoryStore) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*models.Article, error) {
	q := strings.ToLower(query)
	return s.query(func(a *models.Article) bool {
		return strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.Body), q)
	}, true, limit, offset), nil
}

func (s *MemoryStore) GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error) {
	return s.query(func(a *models.Article) bool { return a.CategoryID == categoryID }, true, limit, offset), nil
}

func (s *MemoryStore) ListArticlesByDate(ctx context.Context) ([]*models.Article, error) {
	return s.query(func(*models.Article) bool { return true }, false, -1, 0), nil
}

// query filters, orders by publication date and pages. A negative limit
// returns everything after offset.
func (s *MemoryStore) query(keep func(*models.Article) bool, newestFirst bool, limit, offset int) []*models.Article {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var articles []*models.Article
	for _, a := range s.articles {
		if keep(a) {
			articles = append(articles, copyArticle(a))
		}
	}

	slices.SortFunc(articles, func(a, b *models.Article) int {
		c := a.PublishedAt.Compare(b.PublishedAt)
		if c == 0 {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if newestFirst {
			return -c
		}
		return c
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(articles) {
		return nil
	}
	articles = articles[offset:]
	if limit >= 0 && limit < len(articles) {
		articles = articles[:limit]
	}
	return articles
}

func copyArticle(a *models.Article) *models.Article {
	out := *a
	out.Tags = slices.Clone(a.Tags)
	if a.Metadata != nil {
		raw := slices.Clone(*a.Metadata)
		out.Metadata = &raw
	}
	return &out
}
