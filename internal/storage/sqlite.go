package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/kb-nav/internal/models"
)

const sqliteArticleColumns = `id, category_id, name, body, url, tags, author, metadata, published_at, created_at, updated_at`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT,
            parent_id TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(parent_id) REFERENCES categories(id)
        )`,
		`CREATE TABLE IF NOT EXISTS articles (
            id TEXT PRIMARY KEY,
            category_id TEXT NOT NULL,
            name TEXT NOT NULL,
            body TEXT,
            url TEXT UNIQUE NOT NULL,
            tags TEXT,
            author TEXT,
            metadata TEXT,
            published_at DATETIME NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(category_id) REFERENCES categories(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at, created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
        INSERT INTO categories (id, name, description, parent_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            description = excluded.description,
            parent_id = excluded.parent_id,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		category.ID.String(),
		category.Name,
		category.Description,
		nilIfEmpty(category.ParentID),
		category.CreatedAt.UTC(),
		category.UpdatedAt.UTC(),
	)

	return err
}

// CreateArticle stores times in UTC so the text ordering sqlite applies to
// DATETIME columns matches chronological order.
func (s *SQLiteStore) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
        INSERT INTO articles (` + sqliteArticleColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(url) DO UPDATE SET
            category_id = excluded.category_id,
            name = excluded.name,
            body = excluded.body,
            tags = excluded.tags,
            author = excluded.author,
            metadata = excluded.metadata,
            published_at = excluded.published_at,
            updated_at = excluded.updated_at
    `

	tagsJSON, err := json.Marshal(article.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		article.ID.String(),
		article.CategoryID.String(),
		article.Name,
		article.Body,
		article.URL,
		string(tagsJSON),
		article.Author,
		metadataValue(article),
		article.PublishedAt.UTC(),
		article.CreatedAt.UTC(),
		article.UpdatedAt.UTC(),
	)

	return err
}

func (s *SQLiteStore) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	query := `
        SELECT ` + sqliteArticleColumns + `
        FROM articles
        WHERE id = ?
    `

	article, err := scanSQLiteArticle(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return article, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
        SELECT id, name, COALESCE(description, ''), parent_id, created_at, updated_at
        FROM categories
        WHERE id = ?
    `

	category, err := scanSQLiteCategory(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return category, nil
}

func (s *SQLiteStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + sqliteArticleColumns + `
        FROM articles
        ORDER BY published_at DESC, created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryArticles(ctx, query, limit, offset)
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
        SELECT id, name, COALESCE(description, ''), parent_id, created_at, updated_at
        FROM categories
        ORDER BY name
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanSQLiteCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (s *SQLiteStore) SearchArticles(ctx context.Context, searchTerm string, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + sqliteArticleColumns + `
        FROM articles
        WHERE name LIKE ? OR body LIKE ?
        ORDER BY published_at DESC, created_at DESC
        LIMIT ? OFFSET ?
    `

	searchPattern := "%" + searchTerm + "%"
	return s.queryArticles(ctx, query, searchPattern, searchPattern, limit, offset)
}

func (s *SQLiteStore) GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + sqliteArticleColumns + `
        FROM articles
        WHERE category_id = ?
        ORDER BY published_at DESC, created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryArticles(ctx, query, categoryID.String(), limit, offset)
}

func (s *SQLiteStore) ListArticlesByDate(ctx context.Context) ([]*models.Article, error) {
	query := `
        SELECT ` + sqliteArticleColumns + `
        FROM articles
        ORDER BY published_at ASC, created_at ASC, id ASC
    `

	return s.queryArticles(ctx, query)
}

func (s *SQLiteStore) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanSQLiteArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteArticle(row rowScanner) (*models.Article, error) {
	var (
		article                models.Article
		idStr, categoryIDStr   string
		body, tagsJSON, author sql.NullString
		metadata               []byte
	)

	err := row.Scan(
		&idStr,
		&categoryIDStr,
		&article.Name,
		&body,
		&article.URL,
		&tagsJSON,
		&author,
		&metadata,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if article.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid article id %q: %w", idStr, err)
	}
	if article.CategoryID, err = uuid.Parse(categoryIDStr); err != nil {
		return nil, fmt.Errorf("invalid category id %q for article %s: %w", categoryIDStr, idStr, err)
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &article.Tags); err != nil {
			return nil, fmt.Errorf("invalid tags for article %s: %w", idStr, err)
		}
	}
	article.Body = body.String
	article.Author = author.String
	setMetadata(&article, metadata)

	return &article, nil
}

func scanSQLiteCategory(row rowScanner) (*models.Category, error) {
	var (
		category    models.Category
		idStr       string
		parentIDStr sql.NullString
	)

	err := row.Scan(
		&idStr,
		&category.Name,
		&category.Description,
		&parentIDStr,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("invalid category id %q: %w", idStr, err)
	}
	if parentIDStr.Valid {
		parentID, err := uuid.Parse(parentIDStr.String)
		if err == nil {
			category.ParentID = &parentID
		}
	}

	return &category, nil
}

func nilIfEmpty(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
