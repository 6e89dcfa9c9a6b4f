package navigation

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/romangod6/kb-nav/internal/models"
)

type OrderPolicy string

const (
	// OrderStrict rejects a collection that is not ascending by date.
	OrderStrict OrderPolicy = "strict"
	// OrderResort works on a stably sorted copy of the collection.
	OrderResort OrderPolicy = "resort"
)

func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch p := OrderPolicy(s); p {
	case OrderStrict, OrderResort:
		return p, nil
	case "":
		return OrderStrict, nil
	default:
		return "", fmt.Errorf("unknown order policy %q", s)
	}
}

// Neighbors holds the previous and next article in a category. Either may
// be nil, meaning the link should be omitted.
type Neighbors struct {
	Previous *models.Article
	Next     *models.Article
}

// Scope binds one article collection to a single render pass and memoizes
// lookups by article ID. A Scope is not safe for concurrent use; build one
// per render.
type Scope struct {
	articles []*models.Article
	previous map[uuid.UUID]*models.Article
	next     map[uuid.UUID]*models.Article
}

// NewScope validates or repairs the order of articles according to policy.
// The caller's slice is never modified.
func NewScope(articles []*models.Article, policy OrderPolicy) (*Scope, error) {
	switch policy {
	case OrderStrict:
		if err := CheckOrder(articles); err != nil {
			return nil, err
		}
	case OrderResort:
		if CheckOrder(articles) != nil {
			articles = slices.Clone(articles)
			slices.SortStableFunc(articles, func(a, b *models.Article) int {
				return compareDates(a, b)
			})
		}
	default:
		return nil, fmt.Errorf("unknown order policy %q", policy)
	}

	return &Scope{
		articles: articles,
		previous: make(map[uuid.UUID]*models.Article),
		next:     make(map[uuid.UUID]*models.Article),
	}, nil
}

func (s *Scope) Previous(current *models.Article) *models.Article {
	return s.memo(s.previous, current, PreviousInCategory)
}

func (s *Scope) Next(current *models.Article) *models.Article {
	return s.memo(s.next, current, NextInCategory)
}

func (s *Scope) Neighbors(current *models.Article) Neighbors {
	return Neighbors{
		Previous: s.Previous(current),
		Next:     s.Next(current),
	}
}

// InCategory returns the scope's articles filed under categoryID, in date
// order.
func (s *Scope) InCategory(categoryID uuid.UUID) []*models.Article {
	var out []*models.Article
	for _, a := range s.articles {
		if a != nil && a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out
}

func (s *Scope) memo(cache map[uuid.UUID]*models.Article, current *models.Article,
	resolve func(*models.Article, []*models.Article) *models.Article) *models.Article {
	if current == nil {
		return nil
	}
	// Articles without an identity cannot be keyed.
	if current.ID == uuid.Nil {
		return resolve(current, s.articles)
	}
	if found, ok := cache[current.ID]; ok {
		return found
	}
	found := resolve(current, s.articles)
	cache[current.ID] = found
	return found
}

// nil entries sort first
func compareDates(a, b *models.Article) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.PublishedAt.Compare(b.PublishedAt)
}
