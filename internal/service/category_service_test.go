package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"rango/internal/domain"
	"rango/internal/repository"
)

type mockCategoryRepo struct {
	created   []domain.Category
	bySlug    map[string]domain.Category
	top       []domain.Category
	lastLimit int
	createErr error
	getErr    error
}

func (m *mockCategoryRepo) Create(_ context.Context, category domain.Category) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, category)
	return nil
}

func (m *mockCategoryRepo) GetBySlug(_ context.Context, slug string) (domain.Category, error) {
	if m.getErr != nil {
		return domain.Category{}, m.getErr
	}
	c, ok := m.bySlug[slug]
	if !ok {
		return domain.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCategoryRepo) ListTopByLikes(_ context.Context, limit int) ([]domain.Category, error) {
	m.lastLimit = limit
	return m.top, nil
}

func TestCategoryService_Create(t *testing.T) {
	repo := &mockCategoryRepo{}
	svc := NewCategoryService(repo)

	got, err := svc.Create(context.Background(), "  Other Frameworks ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Other Frameworks" || got.Slug != "other-frameworks" {
		t.Fatalf("unexpected category %+v", got)
	}
	if got.ID == "" || got.Views != 0 || got.Likes != 0 {
		t.Fatalf("expected new id and zero counters, got %+v", got)
	}
	if len(repo.created) != 1 || repo.created[0].ID != got.ID {
		t.Fatalf("expected category to be persisted")
	}
}

func TestCategoryService_CreateValidation(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{})
	for _, name := range []string{"", "   ", "!!!", strings.Repeat("a", 129)} {
		if _, err := svc.Create(context.Background(), name); !errors.Is(err, ErrCategoryName) {
			t.Fatalf("%q: expected ErrCategoryName, got %v", name, err)
		}
	}
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{createErr: repository.ErrDuplicate})
	if _, err := svc.Create(context.Background(), "Python"); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}

func TestCategoryService_GetBySlug(t *testing.T) {
	repo := &mockCategoryRepo{bySlug: map[string]domain.Category{
		"python": {ID: "c1", Name: "Python", Slug: "python"},
	}}
	svc := NewCategoryService(repo)

	got, err := svc.GetBySlug(context.Background(), "python")
	if err != nil || got.ID != "c1" {
		t.Fatalf("expected python category, got %+v, %v", got, err)
	}
	if _, err := svc.GetBySlug(context.Background(), "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}

	boom := errors.New("db down")
	repo.getErr = boom
	if _, err := svc.GetBySlug(context.Background(), "python"); !errors.Is(err, boom) {
		t.Fatalf("expected db error to surface, got %v", err)
	}
}

func TestCategoryService_Top(t *testing.T) {
	repo := &mockCategoryRepo{top: []domain.Category{{Name: "Python", Likes: 64}}}
	svc := NewCategoryService(repo)
	got, err := svc.Top(context.Background(), 5)
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected result %v, %v", got, err)
	}
	if repo.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", repo.lastLimit)
	}
}
