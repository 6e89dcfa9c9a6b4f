package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/kb-nav/internal/models"
)

// Store is the article repository. Lookups of a single record return
// (nil, nil) when the record does not exist.
type Store interface {
	Initialize() error
	Close() error

	// Category operations
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)

	// Article operations
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error)
	SearchArticles(ctx context.Context, query string, limit, offset int) ([]*models.Article, error)
	GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error)

	// ListArticlesByDate returns every article ascending by publication
	// date, then creation time. This is the collection navigation resolves
	// against.
	ListArticlesByDate(ctx context.Context) ([]*models.Article, error)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Open returns an initialized store for driver.
func Open(driver, url string) (Store, error) {
	var (
		store Store
		err   error
	)

	switch driver {
	case DriverPostgres:
		store, err = NewPostgresStore(url)
	case DriverSQLite:
		store, err = NewSQLiteStore(url)
	case DriverMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}

	return store, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func metadataValue(article *models.Article) interface{} {
	if article.Metadata == nil {
		return nil
	}
	return string(*article.Metadata)
}

func setMetadata(article *models.Article, raw []byte) {
	if len(raw) == 0 {
		article.Metadata = nil
		return
	}
	msg := json.RawMessage(raw)
	article.Metadata = &msg
}
