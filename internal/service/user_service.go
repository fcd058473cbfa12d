package service

import (
	"context"
	"errors"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rango/internal/domain"
	"rango/internal/media"
	"rango/internal/repository"
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	profiles repository.ProfileRepository
	media    media.Storage
	limiter  LoginRateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, profiles repository.ProfileRepository, storage media.Storage, limiter LoginRateLimiter) *UserService {
	if limiter == nil {
		limiter = NewLoginRateLimiter(loginWindow, loginMaxAttempts)
	}
	return &UserService{
		logger:   logger,
		users:    users,
		profiles: profiles,
		media:    storage,
		limiter:  limiter,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Website  string
	Picture  *multipart.FileHeader
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrInvalidUsername    = errors.New("enter a valid username")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrRateLimited        = errors.New("rate limited")
)

const (
	loginWindow      = 10 * time.Minute
	loginMaxAttempts = 5
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, domain.UserProfile, error) {
	if s.users == nil {
		return domain.User{}, domain.UserProfile{}, errors.New("user service not configured")
	}

	username := strings.TrimSpace(input.Username)
	if !usernamePattern.MatchString(username) {
		return domain.User{}, domain.UserProfile{}, ErrInvalidUsername
	}
	if input.Password == "" {
		return domain.User{}, domain.UserProfile{}, ErrPasswordRequired
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, domain.UserProfile{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashBytes),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	profile := domain.UserProfile{
		UserID:  user.ID,
		Website: NormalizeWebsite(input.Website),
	}

	if input.Picture != nil && s.media != nil {
		path, err := s.media.SaveProfilePicture(ctx, input.Picture)
		if err != nil {
			return domain.User{}, domain.UserProfile{}, err
		}
		profile.Picture = path
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		s.discardPicture(ctx, profile.Picture)
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, domain.UserProfile{}, ErrUsernameTaken
		}
		return domain.User{}, domain.UserProfile{}, err
	}
	return user, profile, nil
}

// discardPicture borra una foto subida cuyo usuario no llegó a guardarse.
func (s *UserService) discardPicture(ctx context.Context, path string) {
	if path == "" || s.media == nil {
		return
	}
	if err := s.media.Remove(ctx, path); err != nil && s.logger != nil {
		s.logger.Warn("remove orphan picture failed", zap.Error(err), zap.String("path", path))
	}
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if s.limiter != nil && !s.limiter.Allow(username) {
		return domain.User{}, ErrRateLimited
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.User{}, ErrAccountDisabled
	}
	if s.limiter != nil {
		s.limiter.Reset(username)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		if s.logger != nil {
			s.logger.Warn("update last login failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetProfile devuelve un perfil vacío si el usuario no tiene uno.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	if s.profiles == nil {
		return domain.UserProfile{UserID: userID}, nil
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{UserID: userID}, nil
		}
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// NormalizeWebsite aplica la misma regla que las URLs de páginas.
func NormalizeWebsite(raw string) string {
	return NormalizePageURL(raw)
}
