package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claves de sesión conocidas.
const (
	SessionKeyVisits    = "visits"
	SessionKeyLastVisit = "last_visit"
	SessionKeyUserID    = "_auth_user_id"
)

// Session es el estado de un cliente durante una petición.
type Session struct {
	id       string
	values   map[string]string
	isNew    bool
	modified bool
}

func newSession() *Session {
	return &Session{
		id:     uuid.NewString(),
		values: map[string]string{},
		isNew:  true,
	}
}

func (s *Session) ID() string {
	return s.id
}

// IsNew indica que el cliente todavía no tiene cookie para este id.
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Modified() bool {
	return s.modified
}

// Get devuelve def si la clave no existe o está vacía.
func (s *Session) Get(key, def string) string {
	if v := s.values[key]; v != "" {
		return v
	}
	return def
}

func (s *Session) Set(key, value string) {
	if cur, ok := s.values[key]; ok && cur == value {
		return
	}
	s.values[key] = value
	s.modified = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.modified = true
}

// SessionManager une el store del servidor con el token de la cookie.
type SessionManager struct {
	logger *zap.Logger
	store  SessionStore
	tokens *SessionTokenService
}

func NewSessionManager(logger *zap.Logger, store SessionStore, tokens *SessionTokenService) *SessionManager {
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &SessionManager{
		logger: logger,
		store:  store,
		tokens: tokens,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.tokens.TTL()
}

// Load resuelve la sesión a partir del valor de la cookie. Un token ausente o
// inválido produce una sesión nueva.
func (m *SessionManager) Load(ctx context.Context, cookieValue string) (*Session, error) {
	if cookieValue == "" {
		return newSession(), nil
	}
	id, err := m.tokens.Parse(cookieValue)
	if err != nil {
		if m.logger != nil && !errors.Is(err, ErrSessionTokenExpired) {
			m.logger.Debug("discarding session token", zap.Error(err))
		}
		return newSession(), nil
	}
	values, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Session{id: id, values: values}, nil
}

// Save persiste la sesión si cambió.
func (m *SessionManager) Save(ctx context.Context, s *Session) error {
	if s == nil || !s.modified {
		return nil
	}
	if err := m.store.Save(ctx, s.id, s.values, m.TTL()); err != nil {
		return err
	}
	s.modified = false
	return nil
}

// Token firma el id actual para la cookie. Cada token nuevo extiende la
// expiración un TTL completo desde ahora.
func (m *SessionManager) Token(s *Session) (string, error) {
	return m.tokens.Sign(s.id, m.tokens.Now())
}

// Rotate cambia el id conservando los valores.
func (m *SessionManager) Rotate(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, s.id); err != nil {
		return err
	}
	s.id = uuid.NewString()
	s.isNew = true
	s.modified = true
	return nil
}

// Flush borra los valores y asigna un id nuevo.
func (m *SessionManager) Flush(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, s.id); err != nil {
		return err
	}
	s.id = uuid.NewString()
	s.values = map[string]string{}
	s.isNew = true
	s.modified = false
	return nil
}
