// Package navigation finds the chronologically adjacent article within the
// same category as a current article, for previous/next links on a page.
//
// Collections are expected in ascending PublishedAt order. The lookups scan
// for the nearest date instead of taking the first filtered match, so they
// stay correct on an unordered slice; Scope enforces the order anyway so a
// broken repository is noticed.
package navigation

import (
	"errors"
	"fmt"
	"time"

	"github.com/romangod6/kb-nav/internal/models"
)

// ErrUnordered is returned when a collection is not ascending by PublishedAt.
var ErrUnordered = errors.New("articles are not in ascending publication order")

// PreviousInCategory returns the latest article in current's category that
// was published strictly before current. Ties on the date go to the article
// that comes first in all. Returns nil if current is nil or nothing
// qualifies.
func PreviousInCategory(current *models.Article, all []*models.Article) *models.Article {
	if current == nil {
		return nil
	}

	var best *models.Article
	for _, a := range all {
		if a == nil || !a.SameCategory(current) || !a.PublishedAt.Before(current.PublishedAt) {
			continue
		}
		if best == nil || a.PublishedAt.After(best.PublishedAt) {
			best = a
		}
	}
	return best
}

// NextInCategory returns the earliest article in current's category that
// was published strictly after current, with the same tie-break and nil
// rules as PreviousInCategory.
func NextInCategory(current *models.Article, all []*models.Article) *models.Article {
	if current == nil {
		return nil
	}

	var best *models.Article
	for _, a := range all {
		if a == nil || !a.SameCategory(current) || !a.PublishedAt.After(current.PublishedAt) {
			continue
		}
		if best == nil || a.PublishedAt.Before(best.PublishedAt) {
			best = a
		}
	}
	return best
}

// CheckOrder returns an error wrapping ErrUnordered at the first article
// published before its predecessor. Equal dates are allowed. Nil entries
// are ignored.
func CheckOrder(all []*models.Article) error {
	var prev *models.Article
	for i, a := range all {
		if a == nil {
			continue
		}
		if prev != nil && a.PublishedAt.Before(prev.PublishedAt) {
			return fmt.Errorf("%w: article %s at position %d (%s) precedes %s (%s)",
				ErrUnordered,
				a.ID, i, a.PublishedAt.Format(time.RFC3339),
				prev.ID, prev.PublishedAt.Format(time.RFC3339),
			)
		}
		prev = a
	}
	return nil
}
