package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rango/internal/domain"
)

// CategoryRepository define el contrato de persistencia para categorías.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	GetBySlug(ctx context.Context, slug string) (domain.Category, error)
	ListTopByLikes(ctx context.Context, limit int) ([]domain.Category, error)
}

// PgCategoryRepository implementa CategoryRepository usando pgxpool.
type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	const query = `
		INSERT INTO categories (id, name, slug, views, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Slug,
		category.Views,
		category.Likes,
		category.CreatedAt,
	)
	return mapWriteError(err)
}

func (r *PgCategoryRepository) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	const query = `
		SELECT id, name, slug, views, likes, created_at
		FROM categories
		WHERE slug = $1
	`
	var c domain.Category
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Views,
		&c.Likes,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, err
	}
	return c, err
}

func (r *PgCategoryRepository) ListTopByLikes(ctx context.Context, limit int) ([]domain.Category, error) {
	const query = `
		SELECT id, name, slug, views, likes, created_at
		FROM categories
		ORDER BY likes DESC, name
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Views, &c.Likes, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
