package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rango/internal/domain"
	"rango/internal/media"
	"rango/internal/repository"
	"rango/internal/service"
)

type memCategoryRepo struct {
	mu         sync.Mutex
	categories []domain.Category
}

func (m *memCategoryRepo) Create(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == category.Name || c.Slug == category.Slug {
			return repository.ErrDuplicate
		}
	}
	m.categories = append(m.categories, category)
	return nil
}

func (m *memCategoryRepo) GetBySlug(_ context.Context, slug string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, pgx.ErrNoRows
}

func (m *memCategoryRepo) ListTopByLikes(_ context.Context, limit int) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Category(nil), m.categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPageRepo struct {
	mu    sync.Mutex
	pages []domain.Page
}

func (m *memPageRepo) Create(_ context.Context, page domain.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, page)
	return nil
}

func (m *memPageRepo) ListByCategoryID(_ context.Context, categoryID string) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Page
	for _, p := range m.pages {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPageRepo) ListTopByViews(_ context.Context, limit int) ([]domain.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Page(nil), m.pages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUserRepo struct {
	mu       sync.Mutex
	users    map[string]domain.User
	profiles map[string]domain.UserProfile
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:    map[string]domain.User{},
		profiles: map[string]domain.UserProfile{},
	}
}

func (m *memUserRepo) CreateWithProfile(_ context.Context, user domain.User, profile domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.LastLogin = &at
	m.users[id] = u
	return nil
}

func (m *memUserRepo) GetByUserID(_ context.Context, userID string) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.UserProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

type testApp struct {
	router     *gin.Engine
	rango      *RangoHandler
	categories *memCategoryRepo
	pages      *memPageRepo
	users      *memUserRepo
	store      service.SessionStore
	tokens     *service.SessionTokenService
	sessions   *service.SessionManager
	mediaDir   string
	tokenNow   func() time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	app := &testApp{
		categories: &memCategoryRepo{},
		pages:      &memPageRepo{},
		users:      newMemUserRepo(),
		store:      service.NewMemorySessionStore(),
		tokenNow:   time.Now,
	}
	app.tokens = service.NewSessionTokenService("test-secret", time.Hour).WithClock(func() time.Time {
		return app.tokenNow()
	})
	app.sessions = service.NewSessionManager(logger, app.store, app.tokens)

	tmpl, err := ParseTemplates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	app.mediaDir = t.TempDir()
	storage, err := media.NewLocalStorage(app.mediaDir)
	if err != nil {
		t.Fatalf("media storage: %v", err)
	}

	users := service.NewUserService(logger, app.users, app.users, storage, nil)
	app.rango = NewRangoHandler(logger, service.NewCategoryService(app.categories), service.NewPageService(app.pages), users)
	authH := NewAuthHandler(logger, users, app.sessions)

	app.router = NewRouter(logger, RouterOptions{
		Templates: tmpl,
		Sessions:  app.sessions,
		Users:     users,
		MediaDir:  app.mediaDir,
	}, app.rango, authH)
	return app
}

func (a *testApp) do(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// addUser guarda un usuario con password hasheado directamente en el repo.
func (a *testApp) addUser(t *testing.T, username, password string, active bool) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := domain.User{ID: "u-" + username, Username: username, PasswordHash: string(hash), IsActive: active}
	if err := a.users.CreateWithProfile(context.Background(), u, domain.UserProfile{UserID: u.ID}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/rango/login/", url.Values{
		"username": {username},
		"password": {password},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatalf("login: expected session cookie")
	}
	return cookie
}

// sessionValues devuelve lo guardado en el store para la cookie dada.
func (a *testApp) sessionValues(t *testing.T, cookie *http.Cookie) (string, map[string]string) {
	t.Helper()
	id, err := a.tokens.Parse(cookie.Value)
	if err != nil {
		t.Fatalf("parse session cookie: %v", err)
	}
	values, err := a.store.Load(context.Background(), id)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return id, values
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			found = c
		}
	}
	return found
}
