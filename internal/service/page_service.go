package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"rango/internal/domain"
	"rango/internal/repository"
)

const maxURLLength = 200

var (
	ErrPageTitle = errors.New("page title is invalid")
	ErrPageURL   = errors.New("page url is invalid")
)

type PageService struct {
	pages repository.PageRepository
}

func NewPageService(pages repository.PageRepository) *PageService {
	return &PageService{pages: pages}
}

// Top devuelve las n páginas más vistas.
func (s *PageService) Top(ctx context.Context, n int) ([]domain.Page, error) {
	return s.pages.ListTopByViews(ctx, n)
}

func (s *PageService) ListByCategory(ctx context.Context, categoryID string) ([]domain.Page, error) {
	return s.pages.ListByCategoryID(ctx, categoryID)
}

func (s *PageService) Create(ctx context.Context, categoryID, title, rawURL string) (domain.Page, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxNameLength {
		return domain.Page{}, ErrPageTitle
	}
	url := NormalizePageURL(rawURL)
	if url == "" || len(url) > maxURLLength {
		return domain.Page{}, ErrPageURL
	}

	page := domain.Page{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Title:      title,
		URL:        url,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.pages.Create(ctx, page); err != nil {
		return domain.Page{}, err
	}
	return page, nil
}

// NormalizePageURL antepone http:// cuando falta el esquema.
func NormalizePageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "http://" + raw
}
