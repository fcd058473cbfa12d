package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rango/internal/domain"
)

type PageRepository interface {
	Create(ctx context.Context, page domain.Page) error
	ListByCategoryID(ctx context.Context, categoryID string) ([]domain.Page, error)
	ListTopByViews(ctx context.Context, limit int) ([]domain.Page, error)
}

type PgPageRepository struct {
	pool *pgxpool.Pool
}

func NewPgPageRepository(pool *pgxpool.Pool) *PgPageRepository {
	return &PgPageRepository{pool: pool}
}

func (r *PgPageRepository) Create(ctx context.Context, page domain.Page) error {
	const query = `
		INSERT INTO pages (id, category_id, title, url, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		page.ID,
		page.CategoryID,
		page.Title,
		page.URL,
		page.Views,
		page.CreatedAt,
	)
	return mapWriteError(err)
}

func (r *PgPageRepository) ListByCategoryID(ctx context.Context, categoryID string) ([]domain.Page, error) {
	const query = `
		SELECT id, category_id, title, url, views, created_at
		FROM pages
		WHERE category_id = $1
		ORDER BY views DESC, title
	`
	return r.list(ctx, query, categoryID)
}

func (r *PgPageRepository) ListTopByViews(ctx context.Context, limit int) ([]domain.Page, error) {
	const query = `
		SELECT id, category_id, title, url, views, created_at
		FROM pages
		ORDER BY views DESC, title
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *PgPageRepository) list(ctx context.Context, query string, args ...any) ([]domain.Page, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Title, &p.URL, &p.Views, &p.CreatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
