package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"rango/internal/domain"
	"rango/internal/repository"
)

const maxNameLength = 128

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name already exists")
	ErrCategoryName     = errors.New("category name is invalid")
)

// CategoryService coordina reglas de negocio para categorías.
type CategoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Top devuelve las n categorías con más likes.
func (s *CategoryService) Top(ctx context.Context, n int) ([]domain.Category, error) {
	return s.categories.ListTopByLikes(ctx, n)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, ErrCategoryNotFound
		}
		return domain.Category{}, err
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return domain.Category{}, ErrCategoryName
	}
	slug := Slugify(name)
	if slug == "" {
		return domain.Category{}, ErrCategoryName
	}

	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Category{}, ErrCategoryExists
		}
		return domain.Category{}, err
	}
	return category, nil
}
