package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenService firma el id de sesión que viaja en la cookie.
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
)

func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &SessionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "rango",
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj usado para emitir y validar tokens.
func (s *SessionTokenService) WithClock(now func() time.Time) *SessionTokenService {
	if now != nil {
		s.now = now
	}
	return s
}

// Now devuelve la hora del reloj del servicio.
func (s *SessionTokenService) Now() time.Time {
	return s.now()
}

func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionTokenService) Sign(sessionID string, now time.Time) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida el token y devuelve el id de sesión.
func (s *SessionTokenService) Parse(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrSessionTokenInvalid
	}
	var claims sessionClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionTokenExpired
		}
		return "", ErrSessionTokenInvalid
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	return claims.SessionID, nil
}
