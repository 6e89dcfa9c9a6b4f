package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/kb-nav/internal/models"
)

const postgresArticleColumns = `id, category_id, name, body, url, tags, author, metadata, published_at, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            id UUID PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            description TEXT,
            parent_id UUID REFERENCES categories(id),
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS articles (
            id UUID PRIMARY KEY,
            category_id UUID NOT NULL REFERENCES categories(id),
            name VARCHAR(255) NOT NULL,
            body TEXT,
            url VARCHAR(2048) UNIQUE NOT NULL,
            tags TEXT[],
            author VARCHAR(255),
            metadata JSONB,
            published_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_tags ON articles USING GIN(tags)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_body_fts ON articles USING GIN (to_tsvector('english', body))`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
        INSERT INTO categories (id, name, description, parent_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            parent_id = EXCLUDED.parent_id,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		category.ParentID,
		category.CreatedAt,
		category.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) CreateArticle(ctx context.Context, article *models.Article) error {
	query := `
        INSERT INTO articles (` + postgresArticleColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (url) DO UPDATE SET
            category_id = EXCLUDED.category_id,
            name = EXCLUDED.name,
            body = EXCLUDED.body,
            tags = EXCLUDED.tags,
            author = EXCLUDED.author,
            metadata = EXCLUDED.metadata,
            published_at = EXCLUDED.published_at,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		article.ID,
		article.CategoryID,
		article.Name,
		article.Body,
		article.URL,
		pq.Array(article.Tags),
		article.Author,
		metadataValue(article),
		article.PublishedAt,
		article.CreatedAt,
		article.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	query := `
        SELECT ` + postgresArticleColumns + `
        FROM articles
        WHERE id = $1
    `

	article, err := scanPostgresArticle(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return article, nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
        SELECT id, name, COALESCE(description, ''), parent_id, created_at, updated_at
        FROM categories
        WHERE id = $1
    `

	category := &models.Category{}
	var parentID uuid.NullUUID
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&parentID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		category.ParentID = &parentID.UUID
	}
	return category, nil
}

func (s *PostgresStore) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + postgresArticleColumns + `
        FROM articles
        ORDER BY published_at DESC, created_at DESC
        LIMIT $1 OFFSET $2
    `

	return s.queryArticles(ctx, query, limit, offset)
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
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
		category := &models.Category{}
		var parentID uuid.NullUUID
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&parentID,
			&category.CreatedAt,
			&category.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		if parentID.Valid {
			category.ParentID = &parentID.UUID
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (s *PostgresStore) GetArticlesByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]*models.Article, error) {
	query := `
        SELECT ` + postgresArticleColumns + `
        FROM articles
        WHERE category_id = $1
        ORDER BY published_at DESC, created_at DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryArticles(ctx, query, categoryID, limit, offset)
}

func (s *PostgresStore) SearchArticles(ctx context.Context, query string, limit, offset int) ([]*models.Article, error) {
	sqlQuery := `
        SELECT ` + postgresArticleColumns + `
        FROM articles
        WHERE to_tsvector('english', body) @@ plainto_tsquery('english', $1)
        ORDER BY ts_rank(to_tsvector('english', body), plainto_tsquery('english', $1)) DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryArticles(ctx, sqlQuery, query, limit, offset)
}

func (s *PostgresStore) ListArticlesByDate(ctx context.Context) ([]*models.Article, error) {
	query := `
        SELECT ` + postgresArticleColumns + `
        FROM articles
        ORDER BY published_at ASC, created_at ASC, id ASC
    `

	return s.queryArticles(ctx, query)
}

func (s *PostgresStore) queryArticles(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanPostgresArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanPostgresArticle(row rowScanner) (*models.Article, error) {
	article := &models.Article{}
	var (
		tags     []string
		body     sql.NullString
		author   sql.NullString
		metadata []byte
	)

	err := row.Scan(
		&article.ID,
		&article.CategoryID,
		&article.Name,
		&body,
		&article.URL,
		pq.Array(&tags),
		&author,
		&metadata,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Body = body.String
	article.Author = author.String
	article.Tags = tags
	setMetadata(article, metadata)
	return article, nil
}
